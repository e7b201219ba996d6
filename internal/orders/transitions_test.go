package orders

import (
	"testing"

	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
)

func orderIn(status enums.OrderStatus, paymentStatus enums.PaymentStatus) *models.Order {
	return &models.Order{Status: status, PaymentStatus: paymentStatus}
}

func TestValidateTransitionForwardChain(t *testing.T) {
	chain := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusServed,
		enums.OrderStatusCompleted,
	}
	for i := 0; i < len(chain)-1; i++ {
		order := orderIn(chain[i], enums.PaymentStatusCompleted)
		if err := ValidateTransition(order, chain[i+1]); err != nil {
			t.Fatalf("%s -> %s should be legal: %v", chain[i], chain[i+1], err)
		}
	}
}

func TestValidateTransitionRejectsSkipsAndBackwards(t *testing.T) {
	cases := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusPending, enums.OrderStatusReady},
		{enums.OrderStatusConfirmed, enums.OrderStatusServed},
		{enums.OrderStatusServed, enums.OrderStatusPending},
		{enums.OrderStatusReady, enums.OrderStatusConfirmed},
	}
	for _, tc := range cases {
		order := orderIn(tc.from, enums.PaymentStatusCompleted)
		if err := ValidateTransition(order, tc.to); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("%s -> %s should be rejected, got %v", tc.from, tc.to, err)
		}
	}
}

func TestValidateTransitionCancellableFromAnyNonTerminal(t *testing.T) {
	for _, from := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusServed,
	} {
		if err := ValidateTransition(orderIn(from, enums.PaymentStatusPending), enums.OrderStatusCancelled); err != nil {
			t.Fatalf("%s -> cancelled should be legal: %v", from, err)
		}
	}
}

func TestValidateTransitionTerminalStatesFrozen(t *testing.T) {
	for _, terminal := range []enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusCancelled} {
		order := orderIn(terminal, enums.PaymentStatusCompleted)
		if err := ValidateTransition(order, enums.OrderStatusPending); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("terminal %s should reject transitions, got %v", terminal, err)
		}
	}
}

func TestValidateTransitionCompletionRequiresSettledPayment(t *testing.T) {
	order := orderIn(enums.OrderStatusServed, enums.PaymentStatusPartial)
	order.Bills.RemainingBalance = money("218")
	if err := ValidateTransition(order, enums.OrderStatusCompleted); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected completion guard, got %v", err)
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	order := orderIn(enums.OrderStatusPending, enums.PaymentStatusPending)
	if err := ValidateTransition(order, enums.OrderStatus("shipped")); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
