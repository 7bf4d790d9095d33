package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/observability"
	"github.com/boddenberg/leads-crm-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports whether the persistence collaborator is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the router.
type Options struct {
	// JWTSecret enables Bearer authentication; sessions are keyed by the token subject.
	JWTSecret string
	// AllowedOrigins for CORS. Defaults to "*".
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
// store may be nil when no health probe is available.
func NewRouter(sessions *service.Sessions, store Pinger, metrics *observability.Metrics, opts Options, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", sessionHeader},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/dispatch", dispatchMetricsHandler(metrics))

		r.Route("/leads", func(r chi.Router) {
			r.Use(OperatorMiddleware(opts.JWTSecret, logger))

			// =============================================
			// View
			// =============================================
			r.Get("/view", viewHandler(sessions))
			r.Post("/reload", reloadHandler(sessions, logger))

			// =============================================
			// Filter / search
			// =============================================
			r.Put("/filter/status", statusFilterHandler(sessions, logger))
			r.Put("/filter/search", searchHandler(sessions, logger))
			r.Post("/filter/search/toggle", toggleSearchHandler(sessions))

			// =============================================
			// Selection
			// =============================================
			r.Post("/selection/{leadId}", selectHandler(sessions, logger))
			r.Delete("/selection", clearSelectionHandler(sessions))

			// =============================================
			// Form
			// =============================================
			r.Post("/form/new", openNewHandler(sessions))
			r.Post("/form/edit/{leadId}", openEditHandler(sessions, logger))
			r.Post("/form/submit", submitHandler(sessions, logger))
			r.Post("/form/cancel", cancelHandler(sessions))

			// =============================================
			// Delete
			// =============================================
			r.Delete("/{leadId}", deleteHandler(sessions, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "leads-api", Status: "healthy", LastChecked: now},
		}

		if store != nil {
			start := time.Now()
			err := store.Ping(r.Context())
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = s.Status
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func dispatchMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetDispatchSnapshot())
	}
}
