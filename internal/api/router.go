package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/api/handler"
	apimw "github.com/pawfectcare/notifier/internal/api/middleware"
	"github.com/pawfectcare/notifier/internal/queue"
	"github.com/pawfectcare/notifier/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	dispatcher *service.Dispatcher,
	q *queue.DeliveryQueue,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	eh := handler.NewEventHandler(dispatcher, logger)
	ph := handler.NewPushHandler(dispatcher, logger)
	nh := handler.NewNotificationHandler(dispatcher, logger)
	mh := handler.NewMetricsHandler(q)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Document-change event intake
		r.Post("/events/pets", eh.PetCreated)
		r.Post("/events/adoptions", eh.AdoptionRequested)

		// Callable direct push
		r.Post("/push", ph.Send)

		// Email-record visibility
		r.Get("/notifications", nh.List)
		r.Get("/notifications/{id}", nh.GetByID)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
