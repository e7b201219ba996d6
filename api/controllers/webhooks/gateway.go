package webhooks

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kainanhq/kainan-pos-backend/api/responses"
	"github.com/kainanhq/kainan-pos-backend/api/validators"
	internalorders "github.com/kainanhq/kainan-pos-backend/internal/orders"
	"github.com/kainanhq/kainan-pos-backend/pkg/config"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	pkgerrors "github.com/kainanhq/kainan-pos-backend/pkg/errors"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
)

const tokenHeader = "X-Gateway-Token"

type settlementEvent struct {
	OrderID       string          `json:"orderId" validate:"required"`
	AmountSettled decimal.Decimal `json:"amountSettled"`
	Method        string          `json:"method" validate:"required"`
}

// PaymentGateway accepts settlement notifications from the payment gateway
// and applies them to the referenced order. Callers authenticate with the
// shared webhook token; gateway signature checks happen before events reach
// this endpoint.
func PaymentGateway(svc internalorders.Service, cfg config.GatewayConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(tokenHeader))
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.WebhookToken)) != 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook token"))
			return
		}

		var event settlementEvent
		if err := validators.DecodeJSONBody(r, &event); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(event.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid settlement method"))
			return
		}

		order, err := svc.ApplySettlement(r.Context(), internalorders.SettlementInput{
			ReferenceID:   strings.TrimSpace(event.OrderID),
			AmountSettled: event.AmountSettled,
			Method:        method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithOrderNumber(r.Context(), order.OrderNumber)
		logg.Info(ctx, "gateway settlement applied")
		responses.WriteSuccess(w, map[string]string{
			"orderId":       order.ReferenceID,
			"paymentStatus": order.PaymentStatus.String(),
		})
	}
}
