package router

import (
	"keepsake/config"
	_ "keepsake/docs"
	"keepsake/internal/handlers/photo"
	"keepsake/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type DomainHandlers struct {
	Photo photo.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Middleware     middleware.AppMiddleware
	Config         *config.Config
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(
		r.Middleware.Recover,
		r.Middleware.RequestID,
		r.Middleware.CORS(),
		r.Middleware.Tracing,
		r.Middleware.Instrument,
	)

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if r.Config.App.Metrics.Enable {
		router.Handle("/metrics", promhttp.Handler())
	}

	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.Middleware.RateLimit())

		r.DomainHandlers.Photo.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, appMiddleware middleware.AppMiddleware, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Middleware:     appMiddleware,
		Config:         cfg,
	}
}
