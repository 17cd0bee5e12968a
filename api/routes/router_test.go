package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/bazaar-backend/internal/cart"
	"github.com/angelmondragon/bazaar-backend/internal/offers"
	"github.com/angelmondragon/bazaar-backend/internal/pricing"
	pkgAuth "github.com/angelmondragon/bazaar-backend/pkg/auth"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) Mutate(context.Context, uuid.UUID, cart.Operation) (*cart.CartView, error) {
	return &cart.CartView{ID: uuid.New()}, nil
}

func (stubCartService) MutateCart(context.Context, uuid.UUID, cart.Operation) (pricing.Snapshot, error) {
	return pricing.Snapshot{}, nil
}

func (stubCartService) GetCart(_ context.Context, userID uuid.UUID) (*cart.CartView, error) {
	return &cart.CartView{ID: uuid.New(), UserID: userID}, nil
}

func (stubCartService) GetSnapshot(_ context.Context, cartID uuid.UUID) (*cart.CartView, error) {
	return &cart.CartView{ID: cartID}, nil
}

func (stubCartService) Recompute(_ context.Context, cartID uuid.UUID) (*cart.CartView, error) {
	return &cart.CartView{ID: cartID}, nil
}

func (stubCartService) ClearForOrder(_ context.Context, cartID uuid.UUID, _ string) (*cart.CartView, error) {
	return &cart.CartView{ID: cartID}, nil
}

func (stubCartService) DeleteCart(context.Context, uuid.UUID) error {
	return nil
}

type stubOfferService struct{}

func (stubOfferService) GetOffer(_ context.Context, id uuid.UUID) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{ID: id}, nil
}

func (stubOfferService) CreateOffer(context.Context, offers.CreateOfferInput) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{ID: uuid.New()}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "bazaar-test", ExpirationMinutes: 5},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	metrics.NewPricingMetrics(reg).IncMutation("add_line", "ok")
	return NewRouter(cfg, nil, stubPinger{}, nil, reg, stubCartService{}, stubOfferService{}), cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterRoutes(t *testing.T) {
	router, cfg := newTestRouter(t)
	cartID := uuid.NewString()
	ref := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		role   enums.ActorRole
		want   int
	}{
		{"live", http.MethodGet, "/health/live", "", "", http.StatusOK},
		{"ready", http.MethodGet, "/health/ready", "", "", http.StatusOK},
		{"cart without token", http.MethodGet, "/api/v1/cart", "", "", http.StatusUnauthorized},
		{"cart as buyer", http.MethodGet, "/api/v1/cart", "", enums.ActorRoleBuyer, http.StatusOK},
		{"add item", http.MethodPost, "/api/v1/cart/items", `{"kind":"product","ref_id":"` + ref + `","quantity":1}`, enums.ActorRoleBuyer, http.StatusOK},
		{"update item", http.MethodPatch, "/api/v1/cart/items/event/" + ref, `{"quantity":2}`, enums.ActorRoleBuyer, http.StatusOK},
		{"remove item", http.MethodDelete, "/api/v1/cart/items/service/" + ref, "", enums.ActorRoleBuyer, http.StatusOK},
		{"apply offer", http.MethodPut, "/api/v1/cart/offer", `{"offer_id":"` + ref + `"}`, enums.ActorRoleBuyer, http.StatusOK},
		{"remove offer", http.MethodDelete, "/api/v1/cart/offer", "", enums.ActorRoleBuyer, http.StatusOK},
		{"snapshot as admin", http.MethodGet, "/api/v1/carts/" + cartID + "/snapshot", "", enums.ActorRoleAdmin, http.StatusOK},
		{"clear as buyer", http.MethodPost, "/api/v1/carts/" + cartID + "/clear", `{"order_reference":"o-1"}`, enums.ActorRoleBuyer, http.StatusForbidden},
		{"clear as service", http.MethodPost, "/api/v1/carts/" + cartID + "/clear", `{"order_reference":"o-1"}`, enums.ActorRoleService, http.StatusOK},
		{"offer detail", http.MethodGet, "/api/v1/offers/" + ref, "", enums.ActorRoleBuyer, http.StatusOK},
		{"recompute as buyer", http.MethodPost, "/api/admin/v1/carts/" + cartID + "/recompute", "", enums.ActorRoleBuyer, http.StatusForbidden},
		{"recompute as admin", http.MethodPost, "/api/admin/v1/carts/" + cartID + "/recompute", "", enums.ActorRoleAdmin, http.StatusOK},
		{"delete as admin", http.MethodDelete, "/api/admin/v1/carts/" + cartID, "", enums.ActorRoleAdmin, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/orders", "", enums.ActorRoleBuyer, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, cfg, tt.role))
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d got %d: %s", tt.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "cart_mutations_total") {
		t.Fatalf("expected pricing metrics in scrape output")
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
}
