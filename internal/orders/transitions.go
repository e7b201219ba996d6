package orders

import (
	"fmt"

	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
)

// orderStatusAdjacency is the explicit transition table for the service
// lifecycle. Cancellation is handled separately: it is legal from any
// non-terminal state.
var orderStatusAdjacency = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed},
	enums.OrderStatusConfirmed: {enums.OrderStatusPreparing},
	enums.OrderStatusPreparing: {enums.OrderStatusReady},
	enums.OrderStatusReady:     {enums.OrderStatusServed},
	enums.OrderStatusServed:    {enums.OrderStatusCompleted},
	enums.OrderStatusCompleted: nil,
	enums.OrderStatusCancelled: nil,
}

// ValidateTransition checks whether order may move to next. Completion
// additionally requires the bill to be fully settled.
func ValidateTransition(order *models.Order, next enums.OrderStatus) error {
	if !next.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next))
	}

	current := order.Status
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and accepts no further transitions", current))
	}

	if next == enums.OrderStatusCancelled {
		return nil
	}

	if next == enums.OrderStatusCompleted {
		if order.PaymentStatus != enums.PaymentStatusCompleted || order.Bills.RemainingBalance.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot complete order with outstanding balance %s", order.Bills.RemainingBalance))
		}
	}

	for _, allowed := range orderStatusAdjacency[current] {
		if allowed == next {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("transition %s -> %s is not allowed", current, next))
}
