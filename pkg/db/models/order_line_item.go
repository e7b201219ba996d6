package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
)

// OrderLineItem is the immutable snapshot of one cart line within an order.
// Position preserves insertion order for receipts; computation never depends
// on it. Redeemed lines keep their retail value for audit but contribute
// nothing to the payable subtotal.
type OrderLineItem struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID               uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	Name                  string             `gorm:"column:name;not null"`
	Category              enums.ItemCategory `gorm:"column:category;not null;default:'other'"`
	Quantity              int                `gorm:"column:quantity;not null"`
	UnitPrice             decimal.Decimal    `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal             decimal.Decimal    `gorm:"column:line_total;type:numeric(12,2);not null"`
	IsRedeemed            bool               `gorm:"column:is_redeemed;not null;default:false"`
	IsPwdSeniorDiscounted bool               `gorm:"column:is_pwd_senior_discounted;not null;default:false"`
	Position              int                `gorm:"column:position;not null"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
