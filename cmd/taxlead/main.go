package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calder/taxlead-crm-go/internal/config"
	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/handler"
	"github.com/calder/taxlead-crm-go/internal/infra/cache"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/infra/resilience"
	"github.com/calder/taxlead-crm-go/internal/infra/supabase"
	"github.com/calder/taxlead-crm-go/internal/prefs"
	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("import_max_concurrency", cfg.ImportMaxConcurrency),
		zap.Duration("feed_poll_interval", cfg.FeedPollInterval),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "taxlead-crm")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	leadsCache := cache.New[[]domain.Lead](cfg.CacheTTL)
	profileCache := cache.New[domain.Profile](cfg.CacheTTL)

	// --- Backend client ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.ImportMaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	backend := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		metrics,
		logger,
	)

	// --- Local preferences store ---
	prefsStore, err := prefs.Open(cfg.PrefsDBPath, logger)
	if err != nil {
		logger.Fatal("failed to open preferences store", zap.Error(err))
	}
	defer prefsStore.Close()

	// --- Feed watcher ---
	watcherCtx, stopWatcher := context.WithCancel(context.Background())
	defer stopWatcher()
	watcher := service.NewFeedWatcher(backend, cfg.FeedPollInterval, logger)
	go watcher.Run(watcherCtx)

	// --- Services ---
	activitySvc := service.NewActivityService(backend, watcher, metrics, logger)
	leadSvc := service.NewLeadService(backend, leadsCache, activitySvc, metrics, logger)
	importSvc := service.NewImportService(backend, backend, leadsCache, activitySvc, cfg.ImportMaxConcurrency, metrics, logger)
	campaignSvc := service.NewCampaignService(backend, activitySvc, logger)
	commsSvc := service.NewCommsService(backend, activitySvc, logger)
	analyticsSvc := service.NewAnalyticsService(leadSvc, campaignSvc, metrics, logger)
	authSvc := service.NewAuthService(backend, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)
	guardSvc := service.NewGuardService(backend, profileCache, cfg.ProfileTimeout, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Auth:       authSvc,
		Leads:      leadSvc,
		Imports:    importSvc,
		Campaigns:  campaignSvc,
		Activities: activitySvc,
		Comms:      commsSvc,
		Analytics:  analyticsSvc,
		Guard:      guardSvc,
		Prefs:      prefsStore,
		Metrics:    metrics,
		Logger:     logger,
	})

	// --- Server ---
	// WriteTimeout stays 0: the activity stream endpoint holds its
	// response open indefinitely.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	stopWatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
