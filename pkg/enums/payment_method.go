package enums

import "fmt"

// PaymentMethod names the tender combination used to settle an order.
// Mixed is derived when both cash and online tenders are positive.
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "Cash"
	PaymentMethodOnlineBDO   PaymentMethod = "Online-BDO"
	PaymentMethodOnlineGCash PaymentMethod = "Online-GCASH"
	PaymentMethodMixed       PaymentMethod = "Mixed"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodOnlineBDO,
	PaymentMethodOnlineGCash,
	PaymentMethodMixed,
}

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMethod.
func (m PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsOnline reports whether the method settles through the payment gateway.
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodOnlineBDO || m == PaymentMethodOnlineGCash
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
