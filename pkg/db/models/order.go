package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
)

// BillSummary holds the derived financial fields of one order. It is owned
// exclusively by the order and recomputed as a whole on every mutation; no
// field in it is ever client-writable.
type BillSummary struct {
	Subtotal            decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Tax                 decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	PwdSeniorDiscount   decimal.Decimal `gorm:"column:pwd_senior_discount;type:numeric(12,2);not null;default:0"`
	EmployeeDiscount    decimal.Decimal `gorm:"column:employee_discount;type:numeric(12,2);not null;default:0"`
	ShareholderDiscount decimal.Decimal `gorm:"column:shareholder_discount;type:numeric(12,2);not null;default:0"`
	RedemptionDiscount  decimal.Decimal `gorm:"column:redemption_discount;type:numeric(12,2);not null;default:0"`
	TotalWithTax        decimal.Decimal `gorm:"column:total_with_tax;type:numeric(12,2);not null;default:0"`
	NetSales            decimal.Decimal `gorm:"column:net_sales;type:numeric(12,2);not null;default:0"`
	CashAmount          decimal.Decimal `gorm:"column:cash_amount;type:numeric(12,2);not null;default:0"`
	OnlineAmount        decimal.Decimal `gorm:"column:online_amount;type:numeric(12,2);not null;default:0"`
	AmountPaid          decimal.Decimal `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	ChangeDue           decimal.Decimal `gorm:"column:change_due;type:numeric(12,2);not null;default:0"`
	RemainingBalance    decimal.Decimal `gorm:"column:remaining_balance;type:numeric(12,2);not null;default:0"`
	IsPartialPayment    bool            `gorm:"column:is_partial_payment;not null;default:false"`
}

// Discounts returns the sum of all discount fields.
func (b BillSummary) Discounts() decimal.Decimal {
	return b.PwdSeniorDiscount.
		Add(b.EmployeeDiscount).
		Add(b.ShareholderDiscount).
		Add(b.RedemptionDiscount)
}

// Order is the aggregate root for a point-of-sale ticket. ReferenceID is the
// system-facing unique id handed to external collaborators; OrderNumber is the
// human-facing daily sequence. Both are assigned once at creation.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	ReferenceID   string              `gorm:"column:reference_id;not null;uniqueIndex"`
	OwnerUserID   uuid.UUID           `gorm:"column:owner_user_id;type:uuid;not null;index"`
	CustomerName  string              `gorm:"column:customer_name;not null;default:'Walk-in Customer'"`
	CustomerPhone string              `gorm:"column:customer_phone;not null;default:'N/A'"`
	Guests        int                 `gorm:"column:guests;not null;default:1"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null;default:'Cash'"`
	// OnlineMethod keeps the online tender channel even when PaymentMethod
	// collapses to Mixed, so recomputation can rebuild the same tender.
	OnlineMethod       enums.PaymentMethod `gorm:"column:online_method;not null;default:''"`
	PwdSeniorApplied   bool                `gorm:"column:pwd_senior_applied;not null;default:false"`
	EmployeeApplied    bool                `gorm:"column:employee_applied;not null;default:false"`
	ShareholderApplied bool                `gorm:"column:shareholder_applied;not null;default:false"`
	Bills              BillSummary         `gorm:"embedded"`
	Notes              string              `gorm:"column:notes;not null;default:''"`
	Version            int                 `gorm:"column:version;not null;default:1"`
	Items              []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
