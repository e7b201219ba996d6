package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	"github.com/kainanhq/kainan-pos-backend/pkg/pagination"
)

// Actor identifies the authenticated staff account behind a request. The
// auth service vouches for it; this package only scopes access with it.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor may see orders owned by other accounts.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// LineItemInput is one cart line supplied by the client.
type LineItemInput struct {
	Name                  string
	Category              enums.ItemCategory
	Quantity              int
	UnitPrice             decimal.Decimal
	IsRedeemed            bool
	IsPwdSeniorDiscounted bool
}

// CustomerInput carries optional walk-in customer details.
type CustomerInput struct {
	Name   string
	Phone  string
	Guests int
}

// DiscountInput is the client-declared discount selection.
type DiscountInput struct {
	PwdSenior        bool
	Employee         bool
	Shareholder      bool
	RedemptionAmount decimal.Decimal
}

// TenderInput is the payment handed over with a request.
type TenderInput struct {
	CashAmount   decimal.Decimal
	OnlineAmount decimal.Decimal
	OnlineMethod enums.PaymentMethod
}

// CreateOrderInput carries everything needed to open an order.
type CreateOrderInput struct {
	Actor     Actor
	Items     []LineItemInput
	Customer  CustomerInput
	Discounts DiscountInput
	Tax       decimal.Decimal
	Tender    TenderInput
	Notes     string
}

// AddItemInput appends one line to an existing order.
type AddItemInput struct {
	Actor   Actor
	OrderID uuid.UUID
	Item    LineItemInput
}

// RecordPaymentInput replaces the tender on an existing order.
type RecordPaymentInput struct {
	Actor   Actor
	OrderID uuid.UUID
	Tender  TenderInput
}

// SettlementInput is the verified payment-gateway event mapped onto an order.
type SettlementInput struct {
	ReferenceID   string
	AmountSettled decimal.Decimal
	Method        enums.PaymentMethod
}

// SetStatusInput moves an order through the lifecycle.
type SetStatusInput struct {
	Actor   Actor
	OrderID uuid.UUID
	Status  enums.OrderStatus
}

// ListInput filters and paginates order listings.
type ListInput struct {
	Actor         Actor
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Pagination    pagination.Params
}
