package main

import (
	"context"
	"keepsake/config"
	"keepsake/di"
	"keepsake/internal/cli"
	"keepsake/internal/domains/photo/service"
	"keepsake/shared/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const closeTimeout = 10 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)
	logger.SetOutput(cfg, os.Stderr)

	var app *di.App

	factory := func() (service.Photo, error) {
		var err error

		app, err = di.InitializeApp()
		if err != nil {
			return nil, err
		}

		return app.Service, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand(factory).ExecuteContext(ctx)

	stop()

	if app != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)

		if closeErr := app.Close(closeCtx); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to release resources")
		}

		cancel()
	}

	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
