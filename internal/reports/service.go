package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kainanhq/kainan-pos-backend/internal/orders"
)

// Service exposes the reporting reads. Admins see the whole store; cashiers
// see only their own orders.
type Service interface {
	Sales(ctx context.Context, actor orders.Actor) (*SalesStats, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the reports service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Sales(ctx context.Context, actor orders.Actor) (*SalesStats, error) {
	var owner *uuid.UUID
	if !actor.IsAdmin() {
		scoped := actor.UserID
		owner = &scoped
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total, err := s.repo.Aggregate(ctx, owner, nil)
	if err != nil {
		return nil, err
	}
	today, err := s.repo.Aggregate(ctx, owner, &dayStart)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.StatusCounts(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &SalesStats{
		TodayOrders:   today.Orders,
		TodayRevenue:  today.Revenue,
		TodayNetSales: today.NetSales,
		TotalOrders:   total.Orders,
		TotalRevenue:  total.Revenue,
		TotalNetSales: total.NetSales,
		StatusCounts:  counts,
	}, nil
}
