package billing

import (
	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
)

// Tender is the cash and/or online amount handed over against an order.
// OnlineMethod is required whenever OnlineAmount is positive.
type Tender struct {
	CashAmount   decimal.Decimal
	OnlineAmount decimal.Decimal
	OnlineMethod enums.PaymentMethod
}

// PaymentOutcome is the fully derived payment state after applying a tender.
type PaymentOutcome struct {
	Bill          models.BillSummary
	PaymentStatus enums.PaymentStatus
	PaymentMethod enums.PaymentMethod
}

// ApplyPayment recomputes every payment-derived field from scratch against the
// bill totals. It never applies incrementally, so re-invoking with the same
// tender is idempotent and a tender update after an item change cannot drift.
func ApplyPayment(bill models.BillSummary, tender Tender) (PaymentOutcome, error) {
	if tender.CashAmount.IsNegative() {
		return PaymentOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "cash amount must not be negative")
	}
	if tender.OnlineAmount.IsNegative() {
		return PaymentOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "online amount must not be negative")
	}
	if tender.OnlineAmount.IsPositive() && !tender.OnlineMethod.IsOnline() {
		return PaymentOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "online payment requires a valid online method")
	}

	bill.CashAmount = tender.CashAmount.Round(moneyPlaces)
	bill.OnlineAmount = tender.OnlineAmount.Round(moneyPlaces)
	bill.AmountPaid = bill.CashAmount.Add(bill.OnlineAmount)

	change := bill.AmountPaid.Sub(bill.TotalWithTax)
	if change.IsNegative() {
		change = decimal.Zero
	}
	bill.ChangeDue = change

	outcome := PaymentOutcome{PaymentMethod: deriveMethod(bill, tender)}

	switch {
	case bill.AmountPaid.GreaterThanOrEqual(bill.TotalWithTax):
		outcome.PaymentStatus = enums.PaymentStatusCompleted
		bill.IsPartialPayment = false
		bill.RemainingBalance = decimal.Zero
	case bill.AmountPaid.IsPositive():
		outcome.PaymentStatus = enums.PaymentStatusPartial
		bill.IsPartialPayment = true
		bill.RemainingBalance = bill.TotalWithTax.Sub(bill.AmountPaid)
	default:
		outcome.PaymentStatus = enums.PaymentStatusPending
		bill.IsPartialPayment = false
		bill.RemainingBalance = bill.TotalWithTax
	}

	outcome.Bill = bill
	return outcome, nil
}

func deriveMethod(bill models.BillSummary, tender Tender) enums.PaymentMethod {
	switch {
	case bill.CashAmount.IsPositive() && bill.OnlineAmount.IsPositive():
		return enums.PaymentMethodMixed
	case bill.OnlineAmount.IsPositive():
		return tender.OnlineMethod
	default:
		return enums.PaymentMethodCash
	}
}
