// Package httptransport assembles the HTTP surface: middleware stack, public
// form routes, the staff dashboard behind bearer auth, probes and metrics.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventreg/internal/platform/health"
	"eventreg/internal/registration/handler"
	"eventreg/pkg/platform/middleware/auth"
	"eventreg/pkg/platform/middleware/request"
	"eventreg/pkg/platform/middleware/requesttime"
	"eventreg/pkg/validation"
)

const defaultRequestTimeout = 15 * time.Second

// Deps are the collaborators the router mounts.
type Deps struct {
	Registrations  *handler.Handler
	Health         *health.Handler
	TokenValidator auth.JWTValidator
	Metrics        *request.Metrics
	// RateLimit guards the public form routes; nil leaves them unlimited.
	RateLimit      func(http.Handler) http.Handler
	// Gatherer serves /metrics; nil leaves the endpoint unmounted.
	Gatherer       prometheus.Gatherer
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter wires every endpoint with its middleware.
func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.ClientIP(d.TrustedProxies))
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(request.LatencyMiddleware(d.Metrics))

	d.Health.Register(r)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(timeout))
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)

		r.Group(func(r chi.Router) {
			if d.RateLimit != nil {
				r.Use(d.RateLimit)
			}
			d.Registrations.Register(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(d.TokenValidator, d.Logger))
			r.Use(auth.RequireRole(d.Logger, auth.RoleAdmin))
			d.Registrations.RegisterAdmin(r)
		})
	})

	return r
}
