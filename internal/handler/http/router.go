package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gretehalvorsen/wishlist/internal/service"
	"github.com/gretehalvorsen/wishlist/pkg/health"
	"github.com/gretehalvorsen/wishlist/pkg/middleware"
)

// NewRouter creates a chi router with all wishlist service routes registered.
func NewRouter(
	wishlistService *service.WishlistService,
	scheduler *service.Scheduler,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishlist"))
	r.Use(middleware.Tracing("wishlist"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Wishlist API endpoints
	wishlistHandler := NewWishlistHandler(wishlistService, scheduler, logger)

	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", wishlistHandler.GetWishlist)
		r.Get("/totals", wishlistHandler.GetTotals)

		r.Post("/items", wishlistHandler.AddItem)
		r.Patch("/items/{itemId}", wishlistHandler.UpdateItem)
		r.Delete("/items/{itemId}", wishlistHandler.RemoveItem)
		r.Post("/items/{itemId}/refresh", wishlistHandler.RefreshItem)

		r.Post("/refresh", wishlistHandler.RefreshAll)

		r.Get("/schedule", wishlistHandler.GetSchedule)
		r.Put("/schedule", wishlistHandler.UpdateSchedule)
	})

	return r
}
