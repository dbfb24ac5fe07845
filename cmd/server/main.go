package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"eventreg/internal/audit"
	"eventreg/internal/platform/config"
	"eventreg/internal/platform/database"
	"eventreg/internal/platform/health"
	"eventreg/internal/platform/logger"
	"eventreg/internal/platform/tracer"
	"eventreg/internal/ratelimit"
	"eventreg/internal/registration/export"
	"eventreg/internal/registration/handler"
	"eventreg/internal/registration/metrics"
	"eventreg/internal/registration/service"
	"eventreg/internal/registration/store"
	"eventreg/internal/registration/validation"
	"eventreg/internal/staff/token"
	httptransport "eventreg/internal/transport/http"
	"eventreg/pkg/platform/middleware/request"
)

// main wires dependencies from configuration and runs the HTTP server until
// SIGINT or SIGTERM. Business logic lives in internal/registration.
func main() {
	configPath := flag.String("config", os.Getenv("EVENTREG_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	storage := "postgres"
	if cfg.InMemory() {
		storage = "memory"
	}
	log.Info("initializing eventreg",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"storage", storage,
	)

	pool, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close() //nolint:errcheck // shutdown path

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		registrations service.Store
		auditStore    audit.Store
	)
	if pool != nil {
		registrations = store.NewPostgres(pool.DB())
		auditStore = audit.NewPostgresStore(pool.DB())
		reg.MustRegister(collectors.NewDBStatsCollector(pool.DB(), "eventreg"))
	} else {
		log.Warn("no database configured, registrations are kept in memory")
		registrations = store.NewInMemory()
		auditStore = audit.NewInMemoryStore()
	}

	auditor := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.Audit.BufferSize),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	validator, err := validation.New(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	loc, err := cfg.ExportLocation()
	if err != nil {
		return err
	}
	encoderOpts := []export.Option{export.WithLocation(loc)}
	if cfg.Export.LegacyQuoting {
		log.Warn("export uses legacy quoting, embedded quotes are not escaped")
		encoderOpts = append(encoderOpts, export.WithLegacyQuoting())
	}

	traces, err := tracer.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := traces.Shutdown(shutdownCtx); err != nil {
			log.Warn("trace provider shutdown failed", "error", err)
		}
	}()

	svc := service.New(registrations, validator, log,
		service.WithMetrics(metrics.New(reg)),
		service.WithAuditPublisher(auditor),
		service.WithEncoder(export.New(encoderOpts...)),
		service.WithTracer(tracer.NewOTel(tracer.WithOTelTracer(traces.Tracer()))),
	)

	healthHandler := health.New(cfg.Environment, storage)
	if pool != nil {
		healthHandler.RegisterCheck("database", pool.Health)
	}

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}
	var (
		rateLimit func(http.Handler) http.Handler
		sweeper   *ratelimit.Sweeper
	)
	if cfg.RateLimit.Enabled {
		limits := ratelimit.NewInMemoryStore()
		rateLimit = ratelimit.NewMiddleware(limits, cfg.RateLimit, log, reg).Handler
		sweeper = ratelimit.NewSweeper(limits, cfg.RateLimit.SweepInterval, log)
	}

	tokens := token.NewService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)

	router := httptransport.NewRouter(httptransport.Deps{
		Registrations:  handler.New(svc, log),
		Health:         healthHandler,
		TokenValidator: token.NewMiddlewareAdapter(tokens),
		Metrics:        request.NewMetrics(reg),
		RateLimit:      rateLimit,
		Gatherer:       reg,
		TrustedProxies: proxies,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if sweeper != nil {
		g.Go(func() error { return sweeper.Start(gctx) })
	}
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
