package orders

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
	"github.com/kainanhq/kainan-pos-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByReferenceID(ctx context.Context, referenceID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("reference_id = ?", referenceID).
		First(&order).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC, id DESC")

	if filter.OwnerUserID != nil {
		q = q.Where("owner_user_id = ?", *filter.OwnerUserID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.Cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}
	if filter.Limit <= 0 {
		filter.Limit = pagination.DefaultLimit
	}

	var orders []models.Order
	if err := q.Limit(filter.Limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateOrder(ctx context.Context, order *models.Order) error {
	expected := order.Version
	order.Version = expected + 1

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, expected).
		Select("*").
		Omit("id", "created_at", "Items").
		Updates(order)
	if res.Error != nil {
		order.Version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		order.Version = expected
		return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
	}
	return nil
}

func (r *repository) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) NextDailySequence(ctx context.Context, day string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO daily_counters (day, value) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET value = daily_counters.value + 1
		 RETURNING value`,
		day,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
