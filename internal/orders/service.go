package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kainanhq/kainan-pos-backend/internal/billing"
	"github.com/kainanhq/kainan-pos-backend/pkg/config"
	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
	"github.com/kainanhq/kainan-pos-backend/pkg/metrics"
	"github.com/kainanhq/kainan-pos-backend/pkg/pagination"
)

const (
	defaultCustomerName  = "Walk-in Customer"
	defaultCustomerPhone = "N/A"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the order aggregate: every mutation recomputes the bill and
// payment state as a whole inside one transaction, so no partially-derived
// order is ever persisted.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListInput) ([]models.Order, string, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.Order, error)
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Order, error)
	ApplySettlement(ctx context.Context, input SettlementInput) (*models.Order, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*models.Order, error)
}

type service struct {
	repo          Repository
	tx            txRunner
	rates         billing.Rates
	createRetries int
	writeRetries  int
	metrics       *metrics.OrderMetrics
	logg          *logger.Logger
	now           func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	rates billing.Rates,
	cfg config.OrdersConfig,
	m *metrics.OrderMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	createRetries := cfg.CreateRetries
	if createRetries < 1 {
		createRetries = 1
	}
	writeRetries := cfg.WriteRetries
	if writeRetries < 1 {
		writeRetries = 1
	}
	return &service{
		repo:          repo,
		tx:            tx,
		rates:         rates,
		createRetries: createRetries,
		writeRetries:  writeRetries,
		metrics:       m,
		logg:          logg,
		now:           time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	items := buildLineItems(input.Items)

	bill, err := billing.ComputeBills(items, discountInputs(input.Discounts), s.rates, input.Tax)
	if err != nil {
		return nil, err
	}
	outcome, err := billing.ApplyPayment(bill, tenderFromInput(input.Tender))
	if err != nil {
		return nil, err
	}

	customer := input.Customer
	if customer.Name == "" {
		customer.Name = defaultCustomerName
	}
	if customer.Phone == "" {
		customer.Phone = defaultCustomerPhone
	}
	if customer.Guests < 1 {
		customer.Guests = 1
	}

	var created *models.Order
	for attempt := 1; attempt <= s.createRetries; attempt++ {
		now := s.now()
		order := &models.Order{
			ID:                 uuid.New(),
			ReferenceID:        NewReferenceID(now),
			OwnerUserID:        input.Actor.UserID,
			CustomerName:       customer.Name,
			CustomerPhone:      customer.Phone,
			Guests:             customer.Guests,
			Status:             enums.OrderStatusPending,
			PaymentStatus:      outcome.PaymentStatus,
			PaymentMethod:      outcome.PaymentMethod,
			OnlineMethod:       onlineMethodFor(input.Tender),
			PwdSeniorApplied:   input.Discounts.PwdSenior,
			EmployeeApplied:    input.Discounts.Employee,
			ShareholderApplied: input.Discounts.Shareholder,
			Bills:              outcome.Bill,
			Notes:              input.Notes,
			Version:            1,
			Items:              items,
		}
		for i := range order.Items {
			order.Items[i].ID = uuid.New()
			order.Items[i].OrderID = order.ID
		}

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			sequence, seqErr := repo.NextDailySequence(ctx, DayKey(now))
			if seqErr != nil {
				return seqErr
			}
			order.OrderNumber = FormatOrderNumber(now, sequence)
			_, createErr := repo.CreateOrder(ctx, order)
			return createErr
		})
		if err == nil {
			created = order
			break
		}
		if pkgerrors.IsUniqueViolation(err) {
			s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "order identity collision, regenerating")
			continue
		}
		return nil, err
	}
	if created == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "exhausted order identity retries")
	}

	s.metrics.IncCreated(discountLabel(input.Discounts))
	s.metrics.IncPaymentRecorded(created.PaymentStatus.String())

	ctx = s.logg.WithOrderNumber(ctx, created.OrderNumber)
	s.logg.Info(ctx, "order created")
	return created, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	filter := ListFilter{
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
		Limit:         limit + 1,
		Cursor:        cursor,
	}
	if !input.Actor.IsAdmin() {
		owner := input.Actor.UserID
		filter.OwnerUserID = &owner
	}

	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return orders, next, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.Order, error) {
	start := s.now()
	order, err := s.mutate(ctx, input.OrderID, input.Actor, func(order *models.Order, repo Repository) error {
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot add items to a %s order", order.Status))
		}

		item := buildLineItem(input.Item, len(order.Items))
		item.ID = uuid.New()
		item.OrderID = order.ID
		order.Items = append(order.Items, item)

		if err := s.recompute(order); err != nil {
			return err
		}
		return repo.CreateLineItems(ctx, []models.OrderLineItem{item})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCompute("addItem", s.now().Sub(start))
	return order, nil
}

func (s *service) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.Order, error) {
	start := s.now()
	order, err := s.mutate(ctx, input.OrderID, input.Actor, func(order *models.Order, _ Repository) error {
		return s.applyTender(order, input.Tender)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncPaymentRecorded(order.PaymentStatus.String())
	s.metrics.ObserveCompute("recordPayment", s.now().Sub(start))
	return order, nil
}

// ApplySettlement maps a verified gateway settlement event onto a payment.
// The settled amount is added to the order's online tender and everything is
// recomputed from scratch.
func (s *service) ApplySettlement(ctx context.Context, input SettlementInput) (*models.Order, error) {
	if !input.Method.IsOnline() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("settlement method %q is not an online method", input.Method))
	}
	if input.AmountSettled.IsNegative() || input.AmountSettled.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settled amount must be positive")
	}

	existing, err := s.repo.FindOrderByReferenceID(ctx, input.ReferenceID)
	if err != nil {
		return nil, err
	}

	order, err := s.mutate(ctx, existing.ID, Actor{Role: enums.UserRoleAdmin}, func(order *models.Order, _ Repository) error {
		tender := TenderInput{
			CashAmount:   order.Bills.CashAmount,
			OnlineAmount: order.Bills.OnlineAmount.Add(input.AmountSettled),
			OnlineMethod: input.Method,
		}
		return s.applyTender(order, tender)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncPaymentRecorded(order.PaymentStatus.String())
	return order, nil
}

func (s *service) SetStatus(ctx context.Context, input SetStatusInput) (*models.Order, error) {
	order, err := s.mutate(ctx, input.OrderID, input.Actor, func(order *models.Order, _ Repository) error {
		if err := ValidateTransition(order, input.Status); err != nil {
			s.metrics.IncTransitionRejected(order.Status.String(), input.Status.String())
			return err
		}
		// Cancellation records status only; the settled bill stays untouched.
		order.Status = input.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(s.logg.WithField(ctx, "status", order.Status.String()), "order status changed")
	return order, nil
}

// mutate runs a read-modify-write cycle under optimistic concurrency,
// retrying the whole transaction on version conflicts up to the configured
// bound.
func (s *service) mutate(ctx context.Context, orderID uuid.UUID, actor Actor, fn func(order *models.Order, repo Repository) error) (*models.Order, error) {
	var lastErr error
	for attempt := 1; attempt <= s.writeRetries; attempt++ {
		var result *models.Order
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			order, err := repo.FindOrderByID(ctx, orderID)
			if err != nil {
				return err
			}
			if err := authorize(actor, order); err != nil {
				return err
			}
			if err := fn(order, repo); err != nil {
				return err
			}
			if err := repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			result = order
			return nil
		})
		if err == nil {
			return result, nil
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "exhausted optimistic write retries")
}

// recompute re-derives the bill from the full item list and re-applies the
// existing tender. A newly added item can turn a completed payment back into
// a partial one.
func (s *service) recompute(order *models.Order) error {
	inputs := billing.DiscountInputs{
		ApplyPwdSenior:   order.PwdSeniorApplied,
		ApplyEmployee:    order.EmployeeApplied,
		ApplyShareholder: order.ShareholderApplied,
		RedemptionAmount: order.Bills.RedemptionDiscount,
	}
	bill, err := billing.ComputeBills(order.Items, inputs, s.rates, order.Bills.Tax)
	if err != nil {
		return err
	}
	outcome, err := billing.ApplyPayment(bill, billing.Tender{
		CashAmount:   order.Bills.CashAmount,
		OnlineAmount: order.Bills.OnlineAmount,
		OnlineMethod: order.OnlineMethod,
	})
	if err != nil {
		return err
	}
	order.Bills = outcome.Bill
	order.PaymentStatus = outcome.PaymentStatus
	order.PaymentMethod = outcome.PaymentMethod
	return nil
}

func (s *service) applyTender(order *models.Order, tender TenderInput) error {
	if order.Status == enums.OrderStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot record payment on a cancelled order")
	}
	outcome, err := billing.ApplyPayment(order.Bills, tenderFromInput(tender))
	if err != nil {
		return err
	}
	order.Bills = outcome.Bill
	order.PaymentStatus = outcome.PaymentStatus
	order.PaymentMethod = outcome.PaymentMethod
	order.OnlineMethod = onlineMethodFor(tender)
	return nil
}

func authorize(actor Actor, order *models.Order) error {
	if actor.IsAdmin() {
		return nil
	}
	if order.OwnerUserID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return nil
}

func buildLineItems(inputs []LineItemInput) []models.OrderLineItem {
	items := make([]models.OrderLineItem, 0, len(inputs))
	for i, input := range inputs {
		items = append(items, buildLineItem(input, i))
	}
	return items
}

func buildLineItem(input LineItemInput, position int) models.OrderLineItem {
	category := input.Category
	if category == "" {
		category = enums.ItemCategoryOther
	}
	item := models.OrderLineItem{
		Name:                  input.Name,
		Category:              category,
		Quantity:              input.Quantity,
		UnitPrice:             input.UnitPrice,
		IsRedeemed:            input.IsRedeemed,
		IsPwdSeniorDiscounted: input.IsPwdSeniorDiscounted,
		Position:              position,
	}
	item.LineTotal = billing.LineTotal(item)
	return item
}

func discountInputs(input DiscountInput) billing.DiscountInputs {
	return billing.DiscountInputs{
		ApplyPwdSenior:   input.PwdSenior,
		ApplyEmployee:    input.Employee,
		ApplyShareholder: input.Shareholder,
		RedemptionAmount: input.RedemptionAmount,
	}
}

func tenderFromInput(input TenderInput) billing.Tender {
	return billing.Tender{
		CashAmount:   input.CashAmount,
		OnlineAmount: input.OnlineAmount,
		OnlineMethod: input.OnlineMethod,
	}
}

func onlineMethodFor(tender TenderInput) enums.PaymentMethod {
	if tender.OnlineAmount.IsPositive() {
		return tender.OnlineMethod
	}
	return ""
}

func discountLabel(input DiscountInput) string {
	switch {
	case input.PwdSenior:
		return "pwdSenior"
	case input.Employee:
		return "employee"
	case input.Shareholder:
		return "shareholder"
	case input.RedemptionAmount.IsPositive():
		return "redemption"
	default:
		return "none"
	}
}
