package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/api/middleware"
	"github.com/kainanhq/kainan-pos-backend/api/responses"
	"github.com/kainanhq/kainan-pos-backend/api/validators"
	internalorders "github.com/kainanhq/kainan-pos-backend/internal/orders"
	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
	"github.com/kainanhq/kainan-pos-backend/pkg/pagination"
)

type lineItemRequest struct {
	Name                  string          `json:"name" validate:"required"`
	Category              string          `json:"category,omitempty"`
	Quantity              int             `json:"quantity" validate:"required,min=1"`
	UnitPrice             decimal.Decimal `json:"unitPrice"`
	IsRedeemed            bool            `json:"isRedeemed,omitempty"`
	IsPwdSeniorDiscounted bool            `json:"isPwdSeniorDiscounted,omitempty"`
}

type customerRequest struct {
	Name   string `json:"name,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Guests int    `json:"guests,omitempty" validate:"omitempty,min=1"`
}

type discountsRequest struct {
	PwdSenior        bool            `json:"pwdSenior,omitempty"`
	Employee         bool            `json:"employee,omitempty"`
	Shareholder      bool            `json:"shareholder,omitempty"`
	RedemptionAmount decimal.Decimal `json:"redemptionAmount,omitempty"`
}

type tenderRequest struct {
	CashAmount   decimal.Decimal `json:"cashAmount,omitempty"`
	OnlineAmount decimal.Decimal `json:"onlineAmount,omitempty"`
	OnlineMethod string          `json:"onlineMethod,omitempty"`
}

type createOrderRequest struct {
	Items     []lineItemRequest `json:"items" validate:"required,min=1,dive"`
	Customer  customerRequest   `json:"customer,omitempty"`
	Discounts discountsRequest  `json:"discounts,omitempty"`
	Tax       decimal.Decimal   `json:"tax,omitempty"`
	Tender    tenderRequest     `json:"tender,omitempty"`
	Notes     string            `json:"notes,omitempty"`

	// Legacy client aliases, accepted at the boundary only. Totals are always
	// recomputed server-side, so totalAmount is ignored.
	CustomerDetails *customerRequest `json:"customerDetails,omitempty"`
	TotalAmount     decimal.Decimal  `json:"totalAmount,omitempty"`
}

func (req createOrderRequest) customer() customerRequest {
	if req.CustomerDetails != nil {
		return *req.CustomerDetails
	}
	return req.Customer
}

type recordPaymentRequest struct {
	CashAmount   decimal.Decimal `json:"cashAmount,omitempty"`
	OnlineAmount decimal.Decimal `json:"onlineAmount,omitempty"`
	OnlineMethod string          `json:"onlineMethod,omitempty"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateOrder opens a new order from the submitted cart.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := lineItemInputs(req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tender, err := tenderInput(req.Tender)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer := req.customer()
		order, err := svc.Create(r.Context(), internalorders.CreateOrderInput{
			Actor: actor,
			Items: items,
			Customer: internalorders.CustomerInput{
				Name:   strings.TrimSpace(customer.Name),
				Phone:  strings.TrimSpace(customer.Phone),
				Guests: customer.Guests,
			},
			Discounts: internalorders.DiscountInput{
				PwdSenior:        req.Discounts.PwdSenior,
				Employee:         req.Discounts.Employee,
				Shareholder:      req.Discounts.Shareholder,
				RedemptionAmount: req.Discounts.RedemptionAmount,
			},
			Tax:    req.Tax,
			Tender: tender,
			Notes:  strings.TrimSpace(req.Notes),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderResponseFrom(order))
	}
}

// GetOrder returns one order scoped to the caller.
func GetOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderResponseFrom(order))
	}
}

// ListOrders pages through orders, newest first.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.ListInput{
			Actor: actor,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			input.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("paymentStatus")); raw != "" {
			status, parseErr := enums.ParsePaymentStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment status filter"))
				return
			}
			input.PaymentStatus = &status
		}

		orders, next, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, orderResponseFrom(&orders[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":     out,
			"nextCursor": next,
		})
	}
}

// AddOrderItem appends one line item and recomputes the bill.
func AddOrderItem(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req lineItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := lineItemInputs([]lineItemRequest{req})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddItem(r.Context(), internalorders.AddItemInput{
			Actor:   actor,
			OrderID: orderID,
			Item:    items[0],
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderResponseFrom(order))
	}
}

// RecordOrderPayment replaces the tender against the order.
func RecordOrderPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req recordPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tender, err := tenderInput(tenderRequest(req))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RecordPayment(r.Context(), internalorders.RecordPaymentInput{
			Actor:   actor,
			OrderID: orderID,
			Tender:  tender,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderResponseFrom(order))
	}
}

// SetOrderStatus moves the order through its lifecycle.
func SetOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req setStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, parseErr := enums.ParseOrderStatus(strings.TrimSpace(req.Status))
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid order status"))
			return
		}

		order, err := svc.SetStatus(r.Context(), internalorders.SetStatusInput{
			Actor:   actor,
			OrderID: orderID,
			Status:  status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderResponseFrom(order))
	}
}

func actorFromRequest(r *http.Request) (internalorders.Actor, error) {
	rawID := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user identity")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing role")
	}
	return internalorders.Actor{UserID: userID, Role: role}, nil
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func lineItemInputs(reqs []lineItemRequest) ([]internalorders.LineItemInput, error) {
	items := make([]internalorders.LineItemInput, 0, len(reqs))
	for _, req := range reqs {
		category, err := enums.ParseItemCategory(strings.TrimSpace(req.Category))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item category")
		}
		items = append(items, internalorders.LineItemInput{
			Name:                  strings.TrimSpace(req.Name),
			Category:              category,
			Quantity:              req.Quantity,
			UnitPrice:             req.UnitPrice,
			IsRedeemed:            req.IsRedeemed,
			IsPwdSeniorDiscounted: req.IsPwdSeniorDiscounted,
		})
	}
	return items, nil
}

func tenderInput(req tenderRequest) (internalorders.TenderInput, error) {
	input := internalorders.TenderInput{
		CashAmount:   req.CashAmount,
		OnlineAmount: req.OnlineAmount,
	}
	if raw := strings.TrimSpace(req.OnlineMethod); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return internalorders.TenderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid online method")
		}
		input.OnlineMethod = method
	}
	return input, nil
}

type lineItemResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Category              string          `json:"category"`
	Quantity              int             `json:"quantity"`
	UnitPrice             decimal.Decimal `json:"unitPrice"`
	LineTotal             decimal.Decimal `json:"lineTotal"`
	IsRedeemed            bool            `json:"isRedeemed"`
	IsPwdSeniorDiscounted bool            `json:"isPwdSeniorDiscounted"`
}

type billsResponse struct {
	Subtotal            decimal.Decimal `json:"subtotal"`
	Tax                 decimal.Decimal `json:"tax"`
	PwdSeniorDiscount   decimal.Decimal `json:"pwdSeniorDiscount"`
	EmployeeDiscount    decimal.Decimal `json:"employeeDiscount"`
	ShareholderDiscount decimal.Decimal `json:"shareholderDiscount"`
	RedemptionDiscount  decimal.Decimal `json:"redemptionDiscount"`
	TotalWithTax        decimal.Decimal `json:"totalWithTax"`
	NetSales            decimal.Decimal `json:"netSales"`
	CashAmount          decimal.Decimal `json:"cashAmount"`
	OnlineAmount        decimal.Decimal `json:"onlineAmount"`
	AmountPaid          decimal.Decimal `json:"amountPaid"`
	Change              decimal.Decimal `json:"change"`
	RemainingBalance    decimal.Decimal `json:"remainingBalance"`
	IsPartialPayment    bool            `json:"isPartialPayment"`
}

type customerResponse struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Guests int    `json:"guests"`
}

type orderResponse struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"orderNumber"`
	OrderID       string             `json:"orderId"`
	Items         []lineItemResponse `json:"items"`
	Bills         billsResponse      `json:"bills"`
	PaymentMethod string             `json:"paymentMethod"`
	PaymentStatus string             `json:"paymentStatus"`
	OrderStatus   string             `json:"orderStatus"`
	OwnerUserID   string             `json:"ownerUserId"`
	Customer      customerResponse   `json:"customer"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func orderResponseFrom(order *models.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemResponse{
			ID:                    item.ID.String(),
			Name:                  item.Name,
			Category:              item.Category.String(),
			Quantity:              item.Quantity,
			UnitPrice:             item.UnitPrice,
			LineTotal:             item.LineTotal,
			IsRedeemed:            item.IsRedeemed,
			IsPwdSeniorDiscounted: item.IsPwdSeniorDiscounted,
		})
	}
	return orderResponse{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		OrderID:     order.ReferenceID,
		Items:       items,
		Bills: billsResponse{
			Subtotal:            order.Bills.Subtotal,
			Tax:                 order.Bills.Tax,
			PwdSeniorDiscount:   order.Bills.PwdSeniorDiscount,
			EmployeeDiscount:    order.Bills.EmployeeDiscount,
			ShareholderDiscount: order.Bills.ShareholderDiscount,
			RedemptionDiscount:  order.Bills.RedemptionDiscount,
			TotalWithTax:        order.Bills.TotalWithTax,
			NetSales:            order.Bills.NetSales,
			CashAmount:          order.Bills.CashAmount,
			OnlineAmount:        order.Bills.OnlineAmount,
			AmountPaid:          order.Bills.AmountPaid,
			Change:              order.Bills.ChangeDue,
			RemainingBalance:    order.Bills.RemainingBalance,
			IsPartialPayment:    order.Bills.IsPartialPayment,
		},
		PaymentMethod: order.PaymentMethod.String(),
		PaymentStatus: order.PaymentStatus.String(),
		OrderStatus:   order.Status.String(),
		OwnerUserID:   order.OwnerUserID.String(),
		Customer: customerResponse{
			Name:   order.CustomerName,
			Phone:  order.CustomerPhone,
			Guests: order.Guests,
		},
		Notes:     order.Notes,
		CreatedAt: order.CreatedAt,
	}
}
