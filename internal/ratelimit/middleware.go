package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"eventreg/pkg/platform/httputil"
	"eventreg/pkg/platform/privacy"
	"eventreg/pkg/requestcontext"
)

// Config bounds public requests per client IP.
type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	Requests      int           `mapstructure:"requests"`
	Window        time.Duration `mapstructure:"window"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		Requests:      30,
		Window:        time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// Limiter is the store the middleware consults.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

type Middleware struct {
	limiter  Limiter
	limit    int
	window   time.Duration
	logger   *slog.Logger
	rejected prometheus.Counter
}

// NewMiddleware builds the IP limiter. reg may be nil.
func NewMiddleware(limiter Limiter, cfg Config, logger *slog.Logger, reg prometheus.Registerer) *Middleware {
	m := &Middleware{
		limiter: limiter,
		limit:   cfg.Requests,
		window:  cfg.Window,
		logger:  logger,
	}
	if reg != nil {
		m.rejected = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "eventreg_ratelimit_rejected_total",
			Help: "Public requests rejected by the per-IP rate limit",
		})
	}
	return m
}

// Handler keys requests on the client IP stored by request.ClientIP. A
// failing store lets the request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		result, err := m.limiter.Allow(ctx, "ip:"+ip, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"ip_prefix", privacy.AnonymizeIP(ip),
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			if m.rejected != nil {
				m.rejected.Inc()
			}
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"ip_prefix", privacy.AnonymizeIP(ip),
				"retry_after", result.RetryAfter,
			)
			writeRateLimitExceeded(w, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "Muitas requisições. Tente novamente em instantes.",
	})
}
