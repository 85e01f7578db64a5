package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"sitetrack/internal/pkg/logger"
	"sitetrack/internal/platform/config"
	"sitetrack/internal/platform/database"
	"sitetrack/internal/platform/repositories"
	"sitetrack/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Prune once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open delivery log")
	}
	if db == nil {
		log.Info().Msg("delivery log disabled, nothing to prune")
		return
	}
	defer db.Close()

	repo := repositories.NewDeliveryRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if _, err := workers.PruneDeliveries(ctx, repo, cfg.Database.Retention, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("prune failed")
		}
		return
	}

	log.Info().
		Dur("retention", cfg.Database.Retention).
		Dur("interval", cfg.Database.PruneInterval).
		Msg("starting delivery log pruner")
	workers.RunPruner(ctx, repo, cfg.Database.Retention, cfg.Database.PruneInterval)
}
