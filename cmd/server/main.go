package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"sitetrack/internal/api"
	"sitetrack/internal/api/handlers"
	"sitetrack/internal/api/middleware"
	"sitetrack/internal/engine/tracking"
	"sitetrack/internal/metrics"
	"sitetrack/internal/pkg/logger"
	"sitetrack/internal/platform/auth"
	"sitetrack/internal/platform/config"
	"sitetrack/internal/platform/database"
	"sitetrack/internal/platform/repositories"
	"sitetrack/migrations"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	// Delivery log
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open delivery log")
	}
	var deliveryRepo *repositories.DeliveryRepository
	if db != nil {
		defer db.Close()
		if err := database.Migrate(db, migrations.FS); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate delivery log")
		}
		deliveryRepo = repositories.NewDeliveryRepository(db)
	}

	// Tracking
	trackingCfg := cfg.Tracking.Submitter()
	if err := trackingCfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("page browse tracking disabled")
	}

	opts := []tracking.Option{}
	var trackingMetrics *metrics.TrackingMetrics
	var metricsHTTP http.Handler
	if cfg.Metrics.Enabled {
		trackingMetrics = metrics.NewTrackingMetrics(cfg.Metrics.Namespace)
		metricsHTTP = trackingMetrics.Handler()
		opts = append(opts, tracking.WithRecorder(trackingMetrics))
	}
	if deliveryRepo != nil {
		opts = append(opts, tracking.WithRecorder(deliveryRepo))
	}

	submitter := tracking.NewSubmitter(trackingCfg, opts...)
	var observer tracking.DispatchObserver
	if trackingMetrics != nil {
		observer = trackingMetrics
	}
	dispatcher := tracking.NewDispatcher(submitter, cfg.Tracking.Dispatcher(), observer)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	credentials := auth.NewCredentialChecker(cfg.Admin)

	loginLimiter := middleware.NewRateLimiter(10)

	deps := &api.Dependencies{
		PageHandler:          handlers.NewPageHandler(cfg.Site.Title),
		AuthHandler:          handlers.NewAuthHandler(credentials, tokenSvc),
		DeliveryHandler:      handlers.NewDeliveryHandler(deliveryStore(deliveryRepo)),
		HealthHandler:        handlers.NewHealthHandler(db, trackingCfg),
		MetricsHandler:       handlers.NewMetricsHandler(metricsHTTP),
		AuthMiddleware:       middleware.NewAuthMiddleware(tokenSvc),
		PageBrowseMiddleware: middleware.NewPageBrowseMiddleware(dispatcher, cfg.Site.HomeURL),
		LoginRateLimiter:     loginLimiter,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupLimiter(ctx, loginLimiter)

	go func() {
		log.Info().Str("addr", addr).Bool("async_tracking", cfg.Tracking.Async).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Int64("in_flight", dispatcher.InFlight()).Msg("abandoning page browse submissions")
	}
}

// deliveryStore avoids handing a typed nil to the handler.
func deliveryStore(repo *repositories.DeliveryRepository) handlers.DeliveryStore {
	if repo == nil {
		return nil
	}
	return repo
}

func cleanupLimiter(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(10 * time.Minute)
		}
	}
}
