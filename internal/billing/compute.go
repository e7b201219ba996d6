package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/pkg/config"
	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
)

// DiscountInputs are the client-declared discount selections for one order.
// The rates themselves come from configuration; clients only flag eligibility.
// RedemptionAmount is a flat loyalty-redemption value, distinct from redeemed
// line items which never enter the subtotal in the first place.
type DiscountInputs struct {
	ApplyPwdSenior   bool
	ApplyEmployee    bool
	ApplyShareholder bool
	RedemptionAmount decimal.Decimal
}

// Rates carries the configured discount percentages as decimals in [0,1].
type Rates struct {
	PwdSenior   decimal.Decimal
	Employee    decimal.Decimal
	Shareholder decimal.Decimal
}

// RatesFromConfig builds the rate set from billing configuration.
func RatesFromConfig(cfg config.BillingConfig) Rates {
	return Rates{
		PwdSenior:   cfg.PwdSenior(),
		Employee:    cfg.Employee(),
		Shareholder: cfg.Shareholder(),
	}
}

const moneyPlaces = 2

// ComputeBills derives the financial summary for the given line items. It is a
// pure function: the tender fields of the returned summary are zeroed and must
// be filled by ApplyPayment afterwards.
//
// The subtotal covers non-redeemed lines only. The PWD/Senior discount applies
// to the subtotal of flagged lines; the employee and shareholder discounts
// apply to the full subtotal. Tax is a flat additive amount.
func ComputeBills(items []models.OrderLineItem, inputs DiscountInputs, rates Rates, tax decimal.Decimal) (models.BillSummary, error) {
	if len(items) == 0 {
		return models.BillSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	if tax.IsNegative() {
		return models.BillSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "tax must not be negative")
	}
	if inputs.RedemptionAmount.IsNegative() {
		return models.BillSummary{}, pkgerrors.New(pkgerrors.CodeValidation, "redemption amount must not be negative")
	}

	subtotal := decimal.Zero
	flaggedSubtotal := decimal.Zero
	for i, item := range items {
		if err := validateLineItem(i, item); err != nil {
			return models.BillSummary{}, err
		}
		if item.IsRedeemed {
			continue
		}
		lineTotal := LineTotal(item)
		subtotal = subtotal.Add(lineTotal)
		if item.IsPwdSeniorDiscounted {
			flaggedSubtotal = flaggedSubtotal.Add(lineTotal)
		}
	}

	bill := models.BillSummary{
		Subtotal: subtotal.Round(moneyPlaces),
		Tax:      tax.Round(moneyPlaces),
	}
	if inputs.ApplyPwdSenior {
		bill.PwdSeniorDiscount = flaggedSubtotal.Mul(rates.PwdSenior).Round(moneyPlaces)
	}
	if inputs.ApplyEmployee {
		bill.EmployeeDiscount = subtotal.Mul(rates.Employee).Round(moneyPlaces)
	}
	if inputs.ApplyShareholder {
		bill.ShareholderDiscount = subtotal.Mul(rates.Shareholder).Round(moneyPlaces)
	}
	bill.RedemptionDiscount = inputs.RedemptionAmount.Round(moneyPlaces)

	discounts := bill.Discounts()
	total := bill.Subtotal.Add(bill.Tax).Sub(discounts)
	if total.IsNegative() {
		total = decimal.Zero
	}
	bill.TotalWithTax = total
	bill.NetSales = bill.Subtotal.Sub(discounts)
	bill.RemainingBalance = total

	return bill, nil
}

// LineTotal returns the retail value of a line, redeemed or not. Redeemed
// lines keep this value for audit even though they contribute nothing to the
// payable subtotal.
func LineTotal(item models.OrderLineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func validateLineItem(index int, item models.OrderLineItem) error {
	if item.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line item %d: name is required", index))
	}
	if item.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line item %d: quantity must be at least 1", index))
	}
	if item.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line item %d: unit price must not be negative", index))
	}
	return nil
}
