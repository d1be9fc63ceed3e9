package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentkit/rentkit-backend/api/controllers"
	"github.com/rentkit/rentkit-backend/api/middleware"
	"github.com/rentkit/rentkit-backend/internal/catalog"
	"github.com/rentkit/rentkit-backend/internal/reservations"
	"github.com/rentkit/rentkit-backend/internal/stores"
	"github.com/rentkit/rentkit-backend/pkg/config"
	"github.com/rentkit/rentkit-backend/pkg/db"
	"github.com/rentkit/rentkit-backend/pkg/logger"
	pkgredis "github.com/rentkit/rentkit-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	storeService stores.Service,
	catalogService catalog.Service,
	reservationService reservations.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// keep the interfaces nil when redis is absent so the middleware and
	// health check skip it instead of calling through a nil client
	var idemStore pkgredis.IdempotencyStore
	var redisPinger pkgredis.Pinger
	writeLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		idemStore = redisClient
		redisPinger = redisClient
		policy := middleware.NewWriteRateLimitPolicy("store_write", cfg.RateLimit.WriteWindow, cfg.RateLimit.WriteIPLimit)
		writeLimit = middleware.WriteRateLimit(policy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Post("/", controllers.StoreCreate(storeService, logg))
		r.Get("/", controllers.StoreList(storeService, logg))

		r.Route("/{storeID}", func(r chi.Router) {
			r.Use(middleware.StoreContext(logg))
			r.Use(writeLimit)
			r.Use(middleware.Idempotency(idemStore, logg))

			r.Get("/ping", controllers.StorePing())
			r.Get("/", controllers.StoreGet(storeService, logg))
			r.Patch("/", controllers.StoreUpdate(storeService, logg))
			r.Delete("/", controllers.StoreDeactivate(storeService, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(catalogService, logg))
				r.Get("/", controllers.ProductList(catalogService, logg))
				r.Get("/{productID}", controllers.ProductGet(catalogService, logg))
				r.Patch("/{productID}", controllers.ProductUpdate(catalogService, logg))
				r.Delete("/{productID}", controllers.ProductDelete(catalogService, logg))
			})

			r.Post("/quotes", controllers.QuotePreview(reservationService, logg))

			r.Route("/reservations", func(r chi.Router) {
				r.Post("/", controllers.ReservationCreate(reservationService, logg))
				r.Get("/", controllers.ReservationList(reservationService, logg))
				r.Get("/{reservationID}", controllers.ReservationGet(reservationService, logg))
				r.Patch("/{reservationID}", controllers.ReservationUpdate(reservationService, logg))
				r.Post("/{reservationID}/transition", controllers.ReservationTransition(reservationService, logg))
				r.Post("/{reservationID}/items/{itemID}/override", controllers.ReservationItemOverride(reservationService, logg))
				r.Delete("/{reservationID}/items/{itemID}/override", controllers.ReservationItemClearOverride(reservationService, logg))
			})
		})
	})

	return r
}
