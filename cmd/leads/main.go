package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/leads-crm-go/internal/config"
	"github.com/boddenberg/leads-crm-go/internal/handler"
	"github.com/boddenberg/leads-crm-go/internal/infra/cache"
	"github.com/boddenberg/leads-crm-go/internal/infra/memstore"
	"github.com/boddenberg/leads-crm-go/internal/infra/observability"
	"github.com/boddenberg/leads-crm-go/internal/infra/resilience"
	"github.com/boddenberg/leads-crm-go/internal/infra/supabase"
	"github.com/boddenberg/leads-crm-go/internal/infra/validation"
	"github.com/boddenberg/leads-crm-go/internal/port"
	"github.com/boddenberg/leads-crm-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.String("leads_table", cfg.LeadsTable),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("jwt_auth", cfg.JWTSecret != ""),
		zap.Bool("close_form_on_failure", cfg.CloseFormOnFailure),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "leads-crm")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Persistence collaborator ---
	var (
		store  port.LeadStore
		pinger handler.Pinger
	)
	if cfg.SupabaseEnabled() {
		logger.Info("using Supabase as lead store",
			zap.String("supabase_url", cfg.SupabaseURL),
			zap.Bool("service_role", cfg.SupabaseServiceKey != ""),
		)
		client := supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cfg.LeadsTable,
			resilience.NewCircuitBreaker("supabase", logger),
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
			logger,
		)
		store, pinger = client, client
	} else {
		logger.Warn("Supabase not configured, using in-memory lead store")
		store = memstore.New()
	}

	// --- Core ---
	dispatcher := service.NewDispatcher(store, validation.New(), metrics, logger)

	sessionCache := cache.New[*service.LeadView](cfg.SessionTTL)
	defer sessionCache.Close()

	viewOpts := service.ViewOptions{CloseFormOnFailure: cfg.CloseFormOnFailure}
	sessions := service.NewSessions(sessionCache, func() *service.LeadView {
		return service.NewLeadView(dispatcher, viewOpts, logger)
	}, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(sessions, pinger, metrics, handler.Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
