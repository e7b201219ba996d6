package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kainanhq/kainan-pos-backend/api/controllers"
	webhookcontrollers "github.com/kainanhq/kainan-pos-backend/api/controllers/webhooks"
	"github.com/kainanhq/kainan-pos-backend/api/middleware"
	"github.com/kainanhq/kainan-pos-backend/internal/orders"
	"github.com/kainanhq/kainan-pos-backend/internal/reports"
	"github.com/kainanhq/kainan-pos-backend/pkg/config"
	"github.com/kainanhq/kainan-pos-backend/pkg/db"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
	"github.com/kainanhq/kainan-pos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersSvc orders.Service,
	reportsSvc reports.Service,
) http.Handler {
	var redisPinger redis.Pinger
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idemStore = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payments", webhookcontrollers.PaymentGateway(ordersSvc, cfg.Gateway, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/", controllers.ListOrders(ordersSvc, logg))
			r.Get("/{orderId}", controllers.GetOrder(ordersSvc, logg))
			r.Post("/{orderId}/items", controllers.AddOrderItem(ordersSvc, logg))
			r.Post("/{orderId}/payments", controllers.RecordOrderPayment(ordersSvc, logg))
			r.Post("/{orderId}/status", controllers.SetOrderStatus(ordersSvc, logg))
		})

		r.Get("/v1/payments", controllers.PaymentHistory(ordersSvc, logg))

		r.Route("/v1/reports", func(r chi.Router) {
			r.Get("/sales", controllers.SalesReport(reportsSvc, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Get("/v1/orders", controllers.ListOrders(ordersSvc, logg))
		r.Route("/v1/reports", func(r chi.Router) {
			r.Get("/sales", controllers.SalesReport(reportsSvc, logg))
		})
	})

	return r
}
