package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_CashTripHasNoCardFee(t *testing.T) {
	c := Components{
		BasePrice:            50,
		BookingFee:           5,
		ChildSeatsCharge:     10,
		CreditCardFeePercent: 3,
		CreditCardFeeFixed:   1,
	}

	b := Compute(c, PaymentCash)

	assert.InDelta(t, 65.0, b.Subtotal, 1e-9)
	assert.Zero(t, b.CreditCardFee)
	assert.InDelta(t, 65.0, b.Total, 1e-9)
}

func TestCompute_CreditCardFeeOnSubtotal(t *testing.T) {
	c := Components{
		BasePrice:            50,
		BookingFee:           5,
		ChildSeatsCharge:     10,
		CreditCardFeePercent: 3,
		CreditCardFeeFixed:   1,
	}

	b := Compute(c, PaymentCreditCard)

	// 65 * 3% + 1 = 2.95 on top of the 65 subtotal.
	assert.InDelta(t, 65.0, b.Subtotal, 1e-9)
	assert.InDelta(t, 2.95, b.CreditCardFee, 1e-9)
	assert.InDelta(t, 67.95, b.Total, 1e-9)
}

func TestCompute_PercentagesKeyedToBasePrice(t *testing.T) {
	// Discount, gratuity and tax percentages all apply to the original base
	// price, never to the running total.
	c := Components{
		BasePrice:       100,
		BookingFee:      50,
		DiscountPercent: 10,
		GratuityPercent: 20,
		TaxesPercent:    5,
	}

	b := Compute(c, PaymentCash)

	// 100 + 50 - 10 + 20 + 5 = 165
	assert.InDelta(t, 165.0, b.Subtotal, 1e-9)
}

func TestCompute_DiscountsAreSubtractedMagnitudes(t *testing.T) {
	c := Components{
		BasePrice:         200,
		DiscountFixed:     15,
		RoundTripDiscount: 25,
	}

	b := Compute(c, PaymentInvoice)

	assert.InDelta(t, 160.0, b.Subtotal, 1e-9)
	assert.InDelta(t, 160.0, b.Total, 1e-9)
}

func TestCompute_TotalClampedAtZero(t *testing.T) {
	c := Components{
		BasePrice:     10,
		DiscountFixed: 100,
	}

	b := Compute(c, PaymentCash)

	assert.InDelta(t, -90.0, b.Subtotal, 1e-9)
	assert.Zero(t, b.Total)
}

func TestCompute_ZeroComponents(t *testing.T) {
	b := Compute(Components{}, PaymentCreditCard)

	assert.Zero(t, b.Subtotal)
	assert.Zero(t, b.CreditCardFee)
	assert.Zero(t, b.Total)
}

func TestCompute_Deterministic(t *testing.T) {
	c := Components{
		BasePrice:            123.45,
		BookingFee:           9.99,
		ChildSeatsCharge:     15,
		DiscountPercent:      7.5,
		GratuityFixed:        12,
		TaxesPercent:         8.25,
		CreditCardFeePercent: 2.9,
		CreditCardFeeFixed:   0.30,
	}

	first := Compute(c, PaymentCreditCard)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compute(c, PaymentCreditCard))
	}
}

func TestCompute_PaymentMethodSwitchIsReversible(t *testing.T) {
	c := Components{
		BasePrice:            80,
		CreditCardFeePercent: 3,
		CreditCardFeeFixed:   1,
	}

	cash := Compute(c, PaymentCash)
	card := Compute(c, PaymentCreditCard)
	cashAgain := Compute(c, PaymentCash)

	assert.Equal(t, cash, cashAgain)
	assert.Greater(t, card.Total, cash.Total)
	// Switching back recovers the original total exactly: the fee fields stay
	// on the components and the breakdown is always re-derived from scratch.
	assert.Equal(t, cash.Total, cashAgain.Total)
}

func TestCompute_ZelleTreatedAsNonCard(t *testing.T) {
	c := Components{
		BasePrice:            100,
		CreditCardFeePercent: 3,
	}

	b := Compute(c, PaymentZelle)

	assert.Zero(t, b.CreditCardFee)
	assert.InDelta(t, 100.0, b.Total, 1e-9)
}

func TestSplitOutboundLeg_ProRataDiscount(t *testing.T) {
	// Leg is half of the combined subtotal, so it absorbs half the discount.
	price := SplitOutboundLeg(100, 200, 20)
	assert.InDelta(t, 90.0, price, 1e-9)
}

func TestSplitOutboundLeg_FullShare(t *testing.T) {
	price := SplitOutboundLeg(150, 150, 30)
	assert.InDelta(t, 120.0, price, 1e-9)
}

func TestSplitOutboundLeg_NoDiscount(t *testing.T) {
	price := SplitOutboundLeg(100, 250, 0)
	assert.InDelta(t, 100.0, price, 1e-9)
}

func TestSplitOutboundLeg_ClampsAtZero(t *testing.T) {
	assert.Zero(t, SplitOutboundLeg(10, 20, 100))
}

func TestSplitOutboundLeg_DegenerateInputs(t *testing.T) {
	assert.Zero(t, SplitOutboundLeg(0, 100, 10))
	assert.Zero(t, SplitOutboundLeg(-5, 100, 10))
	assert.Zero(t, SplitOutboundLeg(100, 0, 10))
}

func TestParsePaymentMethod(t *testing.T) {
	for _, valid := range []string{"cash", "invoice", "credit_card", "zelle"} {
		m, err := ParsePaymentMethod(valid)
		assert.NoError(t, err)
		assert.Equal(t, valid, m.String())
	}

	_, err := ParsePaymentMethod("bitcoin")
	assert.Error(t, err)

	_, err = ParsePaymentMethod("")
	assert.Error(t, err)
}
