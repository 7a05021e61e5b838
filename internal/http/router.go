// Package httpapi assembles the public router: shared middleware, health and
// metrics endpoints, and the domain handlers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fairdash/internal/platform/metrics"
	"fairdash/internal/platform/middleware"
	"fairdash/pkg/platform/httputil"
	"fairdash/pkg/platform/middleware/metadata"
	"fairdash/pkg/platform/middleware/requesttime"
)

// Registrar mounts a handler's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps are the router's collaborators. Nil metrics and gatherer disable
// instrumentation and the /metrics endpoint; a nil RateLimit leaves the
// handlers unlimited.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Health    map[string]HealthCheck
	RateLimit func(http.Handler) http.Handler
	Handlers  []Registrar
}

// NewRouter wires every public endpoint.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(logger))
	if d.Metrics != nil {
		r.Use(middleware.Instrument(d.Metrics))
	}

	r.Get("/healthz", healthz(d.Health))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Group(func(r chi.Router) {
		if d.RateLimit != nil {
			r.Use(d.RateLimit)
		}
		for _, h := range d.Handlers {
			h.Register(r)
		}
	})
	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		httputil.WriteJSON(w, status, body)
	}
}
