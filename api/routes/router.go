package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/bazaar-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/bazaar-backend/api/controllers/cart"
	offercontrollers "github.com/angelmondragon/bazaar-backend/api/controllers/offers"
	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/internal/cart"
	"github.com/angelmondragon/bazaar-backend/internal/offers"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/redis"
)

// NewRouter wires the cart API. redisClient may be nil, which disables idempotency replay.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	cartService cart.Service,
	offerService offers.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var idempotencyStore redis.IdempotencyStore
	readiness := map[string]db.Pinger{"db": dbP}
	if redisClient != nil {
		idempotencyStore = redisClient
		readiness["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Idempotency sits on inline groups so it sees the fully matched route pattern.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Get("/cart", cartcontrollers.CartFetch(cartService, logg))
			r.Post("/cart/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Patch("/cart/items/{kind}/{refId}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/cart/items/{kind}/{refId}", cartcontrollers.CartRemoveItem(cartService, logg))
			r.Put("/cart/offer", cartcontrollers.CartApplyOffer(cartService, logg))
			r.Delete("/cart/offer", cartcontrollers.CartRemoveOffer(cartService, logg))

			r.Get("/carts/{cartId}/snapshot", cartcontrollers.CartSnapshot(cartService, logg))
			r.With(middleware.RequireRole(logg, enums.ActorRoleAdmin, enums.ActorRoleService)).
				Post("/carts/{cartId}/clear", cartcontrollers.CartClear(cartService, logg))

			r.Get("/offers/{offerId}", offercontrollers.OfferFetch(offerService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.ActorRoleAdmin))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Post("/carts/{cartId}/recompute", cartcontrollers.AdminCartRecompute(cartService, logg))
			r.Delete("/carts/{cartId}", cartcontrollers.AdminCartDelete(cartService, logg))
			r.Post("/offers", offercontrollers.AdminOfferCreate(offerService, logg))
		})
	})

	return r
}
