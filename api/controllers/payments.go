package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/api/responses"
	"github.com/kainanhq/kainan-pos-backend/api/validators"
	internalorders "github.com/kainanhq/kainan-pos-backend/internal/orders"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
	"github.com/kainanhq/kainan-pos-backend/pkg/pagination"
)

type paymentHistoryEntry struct {
	OrderID          string          `json:"orderId"`
	OrderNumber      string          `json:"orderNumber"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentStatus    string          `json:"paymentStatus"`
	CashAmount       decimal.Decimal `json:"cashAmount"`
	OnlineAmount     decimal.Decimal `json:"onlineAmount"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	Change           decimal.Decimal `json:"change"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	TotalWithTax     decimal.Decimal `json:"totalWithTax"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// PaymentHistory lists recent orders with their tender fields, newest first.
func PaymentHistory(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		orders, next, err := svc.List(r.Context(), internalorders.ListInput{
			Actor: actor,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries := make([]paymentHistoryEntry, 0, len(orders))
		for _, order := range orders {
			entries = append(entries, paymentHistoryEntry{
				OrderID:          order.ReferenceID,
				OrderNumber:      order.OrderNumber,
				PaymentMethod:    order.PaymentMethod.String(),
				PaymentStatus:    order.PaymentStatus.String(),
				CashAmount:       order.Bills.CashAmount,
				OnlineAmount:     order.Bills.OnlineAmount,
				AmountPaid:       order.Bills.AmountPaid,
				Change:           order.Bills.ChangeDue,
				RemainingBalance: order.Bills.RemainingBalance,
				TotalWithTax:     order.Bills.TotalWithTax,
				CreatedAt:        order.CreatedAt,
			})
		}
		responses.WriteSuccess(w, map[string]any{
			"payments":   entries,
			"nextCursor": next,
		})
	}
}
