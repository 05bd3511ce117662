//go:build wireinject
// +build wireinject

package di

import (
	"keepsake/config"
	"keepsake/infras/otel"
	"keepsake/infras/redis"
	"keepsake/infras/storage"
	photoHandler "keepsake/internal/handlers/photo"
	"keepsake/shared/cache"
	"keepsake/transport/http"
	"keepsake/transport/http/middleware"
	"keepsake/transport/http/router"

	photoReconciler "keepsake/internal/domains/photo/reconciler"
	photoRepository "keepsake/internal/domains/photo/repository"
	photoService "keepsake/internal/domains/photo/service"
	photoSlot "keepsake/internal/domains/photo/slot"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	storage.New,
	otel.New,
	redis.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var photoDomain = wire.NewSet(
	photoSlot.Default,
	photoRepository.New,
	photoSource,
	photoReconciler.New,
	photoService.New,
)

var domains = wire.NewSet(
	photoDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	photoHandler.New,
	router.New,
)

func InitializeApp() (*App, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}, nil
}
