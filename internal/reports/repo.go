package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
)

// Repository reads aggregates over already-computed order records. It applies
// no business logic of its own.
type Repository interface {
	Aggregate(ctx context.Context, owner *uuid.UUID, since *time.Time) (AggregateRow, error)
	StatusCounts(ctx context.Context, owner *uuid.UUID) (map[string]int64, error)
}

// AggregateRow is one revenue aggregation result.
type AggregateRow struct {
	Orders   int64           `gorm:"column:orders"`
	Revenue  decimal.Decimal `gorm:"column:revenue"`
	NetSales decimal.Decimal `gorm:"column:net_sales"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reports repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Aggregate(ctx context.Context, owner *uuid.UUID, since *time.Time) (AggregateRow, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(`COUNT(*) AS orders,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN total_with_tax ELSE 0 END), 0) AS revenue,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN net_sales ELSE 0 END), 0) AS net_sales`,
			enums.PaymentStatusCompleted, enums.PaymentStatusCompleted)
	if owner != nil {
		q = q.Where("owner_user_id = ?", *owner)
	}
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}

	var row AggregateRow
	if err := q.Scan(&row).Error; err != nil {
		return AggregateRow{}, err
	}
	return row, nil
}

func (r *repository) StatusCounts(ctx context.Context, owner *uuid.UUID) (map[string]int64, error) {
	type statusRow struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}

	q := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if owner != nil {
		q = q.Where("owner_user_id = ?", *owner)
	}

	var rows []statusRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
