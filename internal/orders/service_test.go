package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kainanhq/kainan-pos-backend/internal/billing"
	"github.com/kainanhq/kainan-pos-backend/pkg/config"
	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
	"github.com/kainanhq/kainan-pos-backend/pkg/metrics"
)

type stubRepo struct {
	orders     map[uuid.UUID]*models.Order
	seq        map[string]int64
	lastFilter ListFilter

	createOrder func(ctx context.Context, order *models.Order) (*models.Order, error)
	updateOrder func(ctx context.Context, order *models.Order) error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		orders: make(map[uuid.UUID]*models.Order),
		seq:    make(map[string]int64),
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createOrder != nil {
		return s.createOrder(ctx, order)
	}
	s.store(order)
	return order, nil
}

func (s *stubRepo) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return cloneOrder(order), nil
}

func (s *stubRepo) FindOrderByReferenceID(ctx context.Context, referenceID string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.ReferenceID == referenceID {
			return cloneOrder(order), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubRepo) ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	s.lastFilter = filter
	var out []models.Order
	for _, order := range s.orders {
		if filter.OwnerUserID != nil && order.OwnerUserID != *filter.OwnerUserID {
			continue
		}
		out = append(out, *cloneOrder(order))
	}
	return out, nil
}

func (s *stubRepo) UpdateOrder(ctx context.Context, order *models.Order) error {
	if s.updateOrder != nil {
		return s.updateOrder(ctx, order)
	}
	current, ok := s.orders[order.ID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if current.Version != order.Version {
		return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
	}
	order.Version++
	s.store(order)
	return nil
}

func (s *stubRepo) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	return nil
}

func (s *stubRepo) NextDailySequence(ctx context.Context, day string) (int64, error) {
	s.seq[day]++
	return s.seq[day], nil
}

func (s *stubRepo) store(order *models.Order) {
	s.orders[order.ID] = cloneOrder(order)
}

func cloneOrder(order *models.Order) *models.Order {
	clone := *order
	clone.Items = append([]models.OrderLineItem(nil), order.Items...)
	return &clone
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	rates := billing.Rates{
		PwdSenior:   money("0.20"),
		Employee:    money("0.10"),
		Shareholder: money("0.05"),
	}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, stubTx{}, rates, config.OrdersConfig{CreateRetries: 3, WriteRetries: 3}, metrics.NewOrderMetrics(nil), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func cashier() Actor {
	return Actor{UserID: uuid.New(), Role: enums.UserRoleCashier}
}

func createInput(actor Actor) CreateOrderInput {
	return CreateOrderInput{
		Actor: actor,
		Items: []LineItemInput{
			{Name: "Sisig", Quantity: 2, UnitPrice: money("150")},
			{Name: "Iced Tea", Quantity: 1, UnitPrice: money("80")},
		},
		Tax:    money("38"),
		Tender: TenderInput{CashAmount: money("418")},
	}
}

func TestCreateOrderComputesBillAndIdentity(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !order.Bills.Subtotal.Equal(money("380")) {
		t.Fatalf("expected subtotal 380, got %s", order.Bills.Subtotal)
	}
	if !order.Bills.TotalWithTax.Equal(money("418")) {
		t.Fatalf("expected total 418, got %s", order.Bills.TotalWithTax)
	}
	if order.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %s", order.PaymentStatus)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	want := FormatOrderNumber(time.Now(), 1)
	if order.OrderNumber != want {
		t.Fatalf("expected order number %s, got %s", want, order.OrderNumber)
	}
	if order.ReferenceID == "" {
		t.Fatal("expected reference id")
	}
	if order.CustomerName != "Walk-in Customer" || order.CustomerPhone != "N/A" || order.Guests != 1 {
		t.Fatalf("expected customer defaults, got %q %q %d", order.CustomerName, order.CustomerPhone, order.Guests)
	}

	second, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.OrderNumber != FormatOrderNumber(time.Now(), 2) {
		t.Fatalf("expected second daily sequence, got %s", second.OrderNumber)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc := newTestService(t, newStubRepo())
	input := createInput(cashier())
	input.Items = nil

	if _, err := svc.Create(context.Background(), input); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderRetriesOnIdentityCollision(t *testing.T) {
	repo := newStubRepo()
	attempts := 0
	repo.createOrder = func(ctx context.Context, order *models.Order) (*models.Order, error) {
		attempts++
		if attempts == 1 {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_reference_id"}
		}
		repo.store(order)
		return order, nil
	}
	svc := newTestService(t, repo)

	order, err := svc.Create(context.Background(), createInput(cashier()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if order == nil {
		t.Fatal("expected order")
	}
}

func TestCreateOrderExhaustsIdentityRetries(t *testing.T) {
	repo := newStubRepo()
	repo.createOrder = func(ctx context.Context, order *models.Order) (*models.Order, error) {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	svc := newTestService(t, repo)

	if _, err := svc.Create(context.Background(), createInput(cashier())); !pkgerrors.HasCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error after retries, got %v", err)
	}
}

func TestAddItemTurnsCompletedPaymentPartial(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.AddItem(context.Background(), AddItemInput{
		Actor:   actor,
		OrderID: order.ID,
		Item:    LineItemInput{Name: "Halo-Halo", Quantity: 1, UnitPrice: money("120")},
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if updated.PaymentStatus != enums.PaymentStatusPartial {
		t.Fatalf("expected partial after new item, got %s", updated.PaymentStatus)
	}
	if !updated.Bills.RemainingBalance.Equal(money("120")) {
		t.Fatalf("expected remaining 120, got %s", updated.Bills.RemainingBalance)
	}
	if len(updated.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(updated.Items))
	}
	if updated.Items[2].Position != 2 {
		t.Fatalf("expected appended position 2, got %d", updated.Items[2].Position)
	}
}

func TestAddItemRejectedOnTerminalOrder(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored := repo.orders[order.ID]
	stored.Status = enums.OrderStatusCancelled

	_, err = svc.AddItem(context.Background(), AddItemInput{
		Actor:   actor,
		OrderID: order.ID,
		Item:    LineItemInput{Name: "Rice", Quantity: 1, UnitPrice: money("30")},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRecordPaymentPartialThenComplete(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	input := createInput(actor)
	input.Tender = TenderInput{}
	order, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %s", order.PaymentStatus)
	}

	partial, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		Actor:   actor,
		OrderID: order.ID,
		Tender:  TenderInput{CashAmount: money("200")},
	})
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if partial.PaymentStatus != enums.PaymentStatusPartial || !partial.Bills.RemainingBalance.Equal(money("218")) {
		t.Fatalf("expected partial/218, got %s/%s", partial.PaymentStatus, partial.Bills.RemainingBalance)
	}

	full, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		Actor:   actor,
		OrderID: order.ID,
		Tender: TenderInput{
			CashAmount:   money("200"),
			OnlineAmount: money("218"),
			OnlineMethod: enums.PaymentMethodOnlineGCash,
		},
	})
	if err != nil {
		t.Fatalf("full payment: %v", err)
	}
	if full.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", full.PaymentStatus)
	}
	if full.PaymentMethod != enums.PaymentMethodMixed {
		t.Fatalf("expected mixed method, got %s", full.PaymentMethod)
	}
}

func TestRecordPaymentRejectedOnCancelledOrder(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.orders[order.ID].Status = enums.OrderStatusCancelled

	_, err = svc.RecordPayment(context.Background(), RecordPaymentInput{
		Actor:   actor,
		OrderID: order.ID,
		Tender:  TenderInput{CashAmount: money("10")},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSetStatusLifecycle(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, next := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusServed,
		enums.OrderStatusCompleted,
	} {
		order, err = svc.SetStatus(context.Background(), SetStatusInput{Actor: actor, OrderID: order.ID, Status: next})
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	if _, err := svc.SetStatus(context.Background(), SetStatusInput{
		Actor: actor, OrderID: order.ID, Status: enums.OrderStatusCancelled,
	}); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected terminal order frozen, got %v", err)
	}
}

func TestSetStatusCompletedRequiresSettledBill(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	input := createInput(actor)
	input.Tender = TenderInput{CashAmount: money("200")}
	order, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.orders[order.ID].Status = enums.OrderStatusServed

	_, err = svc.SetStatus(context.Background(), SetStatusInput{
		Actor: actor, OrderID: order.ID, Status: enums.OrderStatusCompleted,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict with outstanding balance, got %v", err)
	}
}

func TestSetStatusRejectsSkippedStates(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.SetStatus(context.Background(), SetStatusInput{
		Actor: actor, OrderID: order.ID, Status: enums.OrderStatusServed,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for skipped transition, got %v", err)
	}
}

func TestSetStatusCancelKeepsBill(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := svc.SetStatus(context.Background(), SetStatusInput{
		Actor: actor, OrderID: order.ID, Status: enums.OrderStatusCancelled,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if !cancelled.Bills.AmountPaid.Equal(order.Bills.AmountPaid) || !cancelled.Bills.TotalWithTax.Equal(order.Bills.TotalWithTax) {
		t.Fatal("expected bill untouched by cancellation")
	}
}

func TestSetStatusRetriesOnWriteConflict(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	order, err := svc.Create(context.Background(), createInput(actor))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	conflicts := 0
	repo.updateOrder = func(ctx context.Context, updated *models.Order) error {
		if conflicts < 2 {
			conflicts++
			return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
		}
		repo.store(updated)
		return nil
	}

	if _, err := svc.SetStatus(context.Background(), SetStatusInput{
		Actor: actor, OrderID: order.ID, Status: enums.OrderStatusConfirmed,
	}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if conflicts != 2 {
		t.Fatalf("expected 2 conflicts before success, got %d", conflicts)
	}
}

func TestGetScopedToOwner(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	owner := cashier()

	order, err := svc.Create(context.Background(), createInput(owner))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), cashier(), order.ID); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for other cashier, got %v", err)
	}
	if _, err := svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, order.ID); err != nil {
		t.Fatalf("expected admin access, got %v", err)
	}
}

func TestListScopesCashierToOwnOrders(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	if _, _, err := svc.List(context.Background(), ListInput{Actor: actor}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.lastFilter.OwnerUserID == nil || *repo.lastFilter.OwnerUserID != actor.UserID {
		t.Fatal("expected cashier listing scoped to owner")
	}

	admin := Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}
	if _, _, err := svc.List(context.Background(), ListInput{Actor: admin}); err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if repo.lastFilter.OwnerUserID != nil {
		t.Fatal("expected admin listing unscoped")
	}
}

func TestApplySettlementCompletesOrder(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)
	actor := cashier()

	input := createInput(actor)
	input.Tender = TenderInput{CashAmount: money("200")}
	order, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	settled, err := svc.ApplySettlement(context.Background(), SettlementInput{
		ReferenceID:   order.ReferenceID,
		AmountSettled: money("218"),
		Method:        enums.PaymentMethodOnlineGCash,
	})
	if err != nil {
		t.Fatalf("settlement: %v", err)
	}
	if settled.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed after settlement, got %s", settled.PaymentStatus)
	}
	if settled.PaymentMethod != enums.PaymentMethodMixed {
		t.Fatalf("expected mixed method, got %s", settled.PaymentMethod)
	}
}

func TestApplySettlementRejectsNonOnlineMethod(t *testing.T) {
	svc := newTestService(t, newStubRepo())
	_, err := svc.ApplySettlement(context.Background(), SettlementInput{
		ReferenceID:   "whatever",
		AmountSettled: money("10"),
		Method:        enums.PaymentMethodCash,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
