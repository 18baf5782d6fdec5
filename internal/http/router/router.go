// Package router arma el chi.Router del registry con todo el wiring.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/nodereg/internal/eviction"
	clusterctl "github.com/dropDatabas3/nodereg/internal/http/controllers/clusters"
	discoveryctl "github.com/dropDatabas3/nodereg/internal/http/controllers/discovery"
	healthctl "github.com/dropDatabas3/nodereg/internal/http/controllers/health"
	"github.com/dropDatabas3/nodereg/internal/http/metrics"
	"github.com/dropDatabas3/nodereg/internal/http/middlewares"
	clustersvc "github.com/dropDatabas3/nodereg/internal/http/services/clusters"
	discoverysvc "github.com/dropDatabas3/nodereg/internal/http/services/discovery"
	"github.com/dropDatabas3/nodereg/internal/rate"
	"github.com/dropDatabas3/nodereg/internal/replay"
	"github.com/dropDatabas3/nodereg/internal/store/core"
)

// Deps junta los colaboradores que el router necesita cableados.
type Deps struct {
	Stores      *core.Stores
	Replay      *replay.Cache
	Hints       *eviction.Queue
	MaxPerGroup int

	// Limiter nil = rate limiting deshabilitado.
	Limiter rate.Limiter

	// WithMetrics expone /metrics y el middleware de instrumentación.
	WithMetrics bool
}

func New(d Deps) chi.Router {
	clusters := clusterctl.NewController(clustersvc.NewService(d.Stores.Clusters))
	discovery := discoveryctl.NewController(discoverysvc.NewService(
		d.Stores.Clusters, d.Stores.Registrations, d.Replay, d.Hints, d.MaxPerGroup,
	))
	health := healthctl.NewController(d.Stores.Ping)

	r := chi.NewRouter()

	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithLogging())
	if d.WithMetrics {
		r.Use(metrics.Middleware)
	}

	// Health sin rate limit
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if d.WithMetrics {
		r.Method(http.MethodGet, "/metrics", metrics.Register(nil, d.Replay.Len))
	}

	// Superficie pública, con throttle por IP si está habilitado
	r.Group(func(r chi.Router) {
		r.Use(middlewares.WithRateLimit(d.Limiter))
		r.Post("/clusters", clusters.Register)
		r.Post("/discover", discovery.Discover)
	})

	return r
}
