package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	"github.com/kainanhq/kainan-pos-backend/pkg/pagination"
)

// ListFilter narrows repository listings. Cursor pagination orders by
// created_at descending with id as tie-breaker.
type ListFilter struct {
	OwnerUserID   *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Limit         int
	Cursor        *pagination.Cursor
}

// Repository is the persistence surface for order aggregates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderByReferenceID(ctx context.Context, referenceID string) (*models.Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error)

	// UpdateOrder persists the aggregate with an optimistic version check and
	// returns a conflict error when another writer got there first.
	UpdateOrder(ctx context.Context, order *models.Order) error
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error

	// NextDailySequence atomically increments and returns the per-day counter
	// backing order numbers.
	NextDailySequence(ctx context.Context, day string) (int64, error)
}
