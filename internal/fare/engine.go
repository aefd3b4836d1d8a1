package fare

// Components are the operator-editable monetary and percentage fields that
// together determine a trip's price. They are owned by the editing session:
// created with zeroes or server-seeded values, mutated by explicit edits or a
// pricing recalculation, and discarded with the session. Discounts are
// magnitudes to subtract; everything else is added.
type Components struct {
	BasePrice            float64 `json:"base_price"`
	BookingFee           float64 `json:"booking_fee"`
	ChildSeatsCharge     float64 `json:"child_seats_charge"`
	DiscountPercent      float64 `json:"discount_percent"`
	DiscountFixed        float64 `json:"discount_fixed"`
	RoundTripDiscount    float64 `json:"round_trip_discount"`
	GratuityPercent      float64 `json:"gratuity_percent"`
	GratuityFixed        float64 `json:"gratuity_fixed"`
	TaxesPercent         float64 `json:"taxes_percent"`
	TaxesFixed           float64 `json:"taxes_fixed"`
	CreditCardFeePercent float64 `json:"credit_card_fee_percent"`
	CreditCardFeeFixed   float64 `json:"credit_card_fee_fixed"`
}

// Breakdown is the derived price for a set of components and a payment
// method. It is never stored independently of its inputs: any edit to a
// component re-runs the full computation from scratch so the displayed total
// can never drift from a fresh recomputation.
type Breakdown struct {
	Subtotal      float64 `json:"subtotal"`
	CreditCardFee float64 `json:"credit_card_fee"`
	Total         float64 `json:"total"`
}

// Compute derives the fare breakdown. The step order is fixed; every
// percentage except the card fee is taken against the original base price,
// not the running total, and the card fee percentage is taken against the
// subtotal. For non-card payment methods the card fee is reported as zero but
// the fee fields stay on the components untouched. The total is clamped at
// zero.
func Compute(c Components, method PaymentMethod) Breakdown {
	adjusted := c.BasePrice
	adjusted += c.BookingFee
	adjusted += c.ChildSeatsCharge
	adjusted -= c.BasePrice * c.DiscountPercent / 100
	adjusted -= c.DiscountFixed
	adjusted -= c.RoundTripDiscount
	adjusted += c.BasePrice * c.GratuityPercent / 100
	adjusted += c.GratuityFixed
	adjusted += c.BasePrice * c.TaxesPercent / 100
	adjusted += c.TaxesFixed

	subtotal := adjusted

	var cardFee float64
	if method == PaymentCreditCard {
		cardFee = subtotal*c.CreditCardFeePercent/100 + c.CreditCardFeeFixed
	}

	total := subtotal + cardFee
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Subtotal:      subtotal,
		CreditCardFee: cardFee,
		Total:         total,
	}
}

// SplitOutboundLeg prices the outbound leg when a round trip is split into
// two independently confirmed legs. legSubtotal is the leg's share of the
// pre-discount subtotal (base + distance + stops + child seats, excluding the
// return component); combinedSubtotal is the round trip's full pre-discount
// subtotal. Any payment-method discount the combined trip received is
// distributed pro rata by the leg's share, so it is neither applied twice nor
// dropped.
func SplitOutboundLeg(legSubtotal, combinedSubtotal, paymentDiscount float64) float64 {
	if legSubtotal <= 0 || combinedSubtotal <= 0 {
		return 0
	}

	share := legSubtotal / combinedSubtotal
	price := legSubtotal - paymentDiscount*share
	if price < 0 {
		return 0
	}
	return price
}
