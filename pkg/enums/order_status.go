package enums

import "fmt"

// OrderStatus tracks the kitchen/service lifecycle of an order. It is an
// independent axis from PaymentStatus.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Older clients still send statuses from earlier schema revisions. They are
// accepted at the parse boundary only and never stored.
var legacyOrderStatusAliases = map[string]OrderStatus{
	"processing":  OrderStatusPreparing,
	"in-progress": OrderStatusPreparing,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus, mapping legacy
// aliases onto their canonical value.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if alias, ok := legacyOrderStatusAliases[value]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
