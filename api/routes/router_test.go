package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	ordersvc "github.com/kainanhq/kainan-pos-backend/internal/orders"
	reportsvc "github.com/kainanhq/kainan-pos-backend/internal/reports"
	pkgAuth "github.com/kainanhq/kainan-pos-backend/pkg/auth"
	"github.com/kainanhq/kainan-pos-backend/pkg/config"
	"github.com/kainanhq/kainan-pos-backend/pkg/db/models"
	"github.com/kainanhq/kainan-pos-backend/pkg/enums"
	"github.com/kainanhq/kainan-pos-backend/pkg/logger"
	"github.com/kainanhq/kainan-pos-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrdersService struct {
	create func(ctx context.Context, input ordersvc.CreateOrderInput) (*models.Order, error)
	settle func(ctx context.Context, input ordersvc.SettlementInput) (*models.Order, error)
}

func (s stubOrdersService) Create(ctx context.Context, input ordersvc.CreateOrderInput) (*models.Order, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return emptyOrder(), nil
}

func (s stubOrdersService) Get(ctx context.Context, actor ordersvc.Actor, orderID uuid.UUID) (*models.Order, error) {
	return emptyOrder(), nil
}

func (s stubOrdersService) List(ctx context.Context, input ordersvc.ListInput) ([]models.Order, string, error) {
	return nil, "", nil
}

func (s stubOrdersService) AddItem(ctx context.Context, input ordersvc.AddItemInput) (*models.Order, error) {
	return emptyOrder(), nil
}

func (s stubOrdersService) RecordPayment(ctx context.Context, input ordersvc.RecordPaymentInput) (*models.Order, error) {
	return emptyOrder(), nil
}

func (s stubOrdersService) ApplySettlement(ctx context.Context, input ordersvc.SettlementInput) (*models.Order, error) {
	if s.settle != nil {
		return s.settle(ctx, input)
	}
	return emptyOrder(), nil
}

func (s stubOrdersService) SetStatus(ctx context.Context, input ordersvc.SetStatusInput) (*models.Order, error) {
	return emptyOrder(), nil
}

type stubReportsService struct{}

func (stubReportsService) Sales(ctx context.Context, actor ordersvc.Actor) (*reportsvc.SalesStats, error) {
	return &reportsvc.SalesStats{}, nil
}

func emptyOrder() *models.Order {
	return &models.Order{
		OwnerUserID:   uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodCash,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Gateway: config.GatewayConfig{WebhookToken: "gateway-token"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubOrdersService{},
		stubReportsService{},
	)
}

func TestHealthEndpointsAreOpen(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestOrderRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrderListSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for order list got %d", resp.Code)
	}
}

func TestAdminReportsRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	cashier := httptest.NewRequest(http.MethodGet, "/api/admin/v1/reports/sales", nil)
	cashier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, cashier)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/reports/sales", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestGatewayWebhookRequiresToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"orderId":"20260828T120000-ABCDEF12","amountSettled":100,"method":"Online-GCASH"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without gateway token got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gateway-Token", cfg.Gateway.WebhookToken)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with gateway token got %d", resp.Code)
	}
}

func TestCreateOrderRejectsBadJSON(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCashier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestMetricsEndpointIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
