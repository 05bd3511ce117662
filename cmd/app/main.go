package main

import (
	"context"
	"keepsake/config"
	"keepsake/di"
	"keepsake/helper"
	"keepsake/shared/constant"
	"keepsake/shared/logger"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	loadTimeout  = 30 * time.Second
	closeTimeout = 10 * time.Second
)

// @title Keepsake Photo Gallery API
// @version 1.0
// @description Stores one photo per gallery slot and renders the gallery with placeholders for empty slots.
// @BasePath /
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)
	logger.SetOutput(cfg, os.Stdout)

	if cfg.Storage.Driver == constant.StorageDriverPostgres && cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	app, err := di.InitializeApp()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	loadCtx, cancel := context.WithTimeout(context.Background(), loadTimeout)

	if gallery, err := app.Service.Load(loadCtx); err != nil {
		log.Error().Err(err).Msg("Initial photo load failed, slots will show placeholders")
	} else {
		log.Info().Int("occupied", gallery.Occupied).Int("total", gallery.Total).Msg("Photos loaded")
	}

	cancel()

	app.HTTP.Serve()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := app.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Failed to release resources")
	}
}
