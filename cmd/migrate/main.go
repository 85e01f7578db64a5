package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"sitetrack/internal/pkg/logger"
	"sitetrack/internal/platform/config"
	"sitetrack/internal/platform/database"
	"sitetrack/migrations"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	dir := flag.String("dir", "", "Read migrations from this directory instead of the built-in set")
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
		log.Fatal().Msg("database.path is empty, delivery log disabled")
	}
	defer db.Close()

	var source fs.FS = migrations.FS
	if *dir != "" {
		source = os.DirFS(*dir)
	}

	if err := database.Migrate(db, source); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	fmt.Println("Migration completed successfully")
}
