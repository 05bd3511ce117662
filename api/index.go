package handler

import (
	"keepsake/config"
	"keepsake/di"
	"keepsake/shared/logger"
	"os"
	"keepsake/transport/http/response"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	app     *di.App
	initErr error
	once    sync.Once
)

// Handler serves the API from a serverless function. The application is wired
// once per instance and reused across invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)
		logger.SetOutput(cfg, os.Stdout)

		app, initErr = di.InitializeApp()
	})

	if initErr != nil {
		log.Error().Err(initErr).Msg("Failed to initialize application")
		response.WithUnhealthy(w)

		return
	}

	r.RequestURI = r.URL.String()

	app.HTTP.ServeHTTP(w, r)
}
