package fare

import "fmt"

// PaymentMethod is the closed set of ways a trip can be paid for. Only
// credit-card payments attract the card surcharge; the dispatch lives in a
// single place (Compute) so the ordering invariant of the fare steps cannot
// be bypassed by scattered conditionals.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentInvoice    PaymentMethod = "invoice"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentZelle      PaymentMethod = "zelle"
)

// IsValid reports whether the payment method is recognized.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentInvoice, PaymentCreditCard, PaymentZelle:
		return true
	}
	return false
}

// String returns the wire representation of the payment method.
func (m PaymentMethod) String() string { return string(m) }

// ParsePaymentMethod converts a string to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid payment method: %s", s)
	}
	return m, nil
}
