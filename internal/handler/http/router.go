package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

// productsMaxAge is how long clients may cache catalog responses.
const productsMaxAge = 5 * time.Minute

// RouterConfig is everything NewRouter needs.
type RouterConfig struct {
	Catalog     *catalog.Catalog
	Sessions    *service.SessionManager
	Health      *health.Handler
	Logger      *slog.Logger
	ServiceName string
	CORS        middleware.CORSConfig
	// RateLimit guards /api/v1 when set.
	RateLimit      func(http.Handler) http.Handler
	PprofCIDRs     []string
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storefront"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	logger := cfg.Logger

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.MountDebug(r, cfg.PprofCIDRs, logger)

	products := NewProductHandler(cfg.Catalog, logger)
	search := NewSearchHandler(products, logger)
	cart := NewCartHandler(cfg.Catalog, logger)
	confirmation := NewConfirmationHandler(logger)
	checkout := NewCheckoutHandler(logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}

		r.Route("/products", func(r chi.Router) {
			r.Use(middleware.CacheControl(productsMaxAge))
			r.Get("/", products.ListProducts)
			r.Get("/price-range", products.PriceRange)
			r.Get("/{id}", products.GetProduct)
		})

		// Everything below belongs to one shopper's session.
		r.Group(func(r chi.Router) {
			r.Use(Sessions(cfg.Sessions, logger))

			r.Get("/search", search.GetSearch)
			r.Post("/search/input", search.TypeInput)
			r.Delete("/search/input", search.ClearInput)
			r.Put("/search/price-range", search.SetPriceRange)
			r.Delete("/search/price-range", search.ResetPriceRange)

			r.Get("/cart", cart.GetCart)
			r.Delete("/cart", cart.ClearCart)
			r.Post("/cart/items", cart.AddItem)
			r.Post("/cart/items/{id}/increase", cart.IncreaseQuantity)
			r.Post("/cart/items/{id}/decrease", cart.DecreaseQuantity)
			r.Delete("/cart/items/{id}", cart.RemoveItem)

			r.Get("/confirmation", confirmation.GetConfirmation)
			r.Delete("/confirmation", confirmation.Dismiss)
			r.Post("/confirmation/confirm", confirmation.Confirm)
			r.Post("/confirmation/cancel", confirmation.Cancel)
			r.Post("/confirmation/keys", confirmation.KeyPress)

			r.Get("/checkout", checkout.GetCheckout)
			r.Post("/checkout", checkout.SubmitOrder)
			r.Delete("/checkout", checkout.Teardown)
			r.Post("/checkout/acknowledge", checkout.Acknowledge)
		})
	})

	return r
}
