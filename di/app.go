package di

import (
	"context"
	"errors"
	"keepsake/infras/otel"
	"keepsake/infras/storage"
	"keepsake/internal/domains/photo/reconciler"
	"keepsake/internal/domains/photo/repository"
	"keepsake/internal/domains/photo/service"
	"keepsake/transport/http"
)

// App holds the wired components that entrypoints drive and later release.
type App struct {
	HTTP       *http.HTTP
	Service    service.Photo
	Repository repository.Photo
	Backend    storage.Backend
	Otel       otel.Otel
}

// Close releases the store and flushes pending traces.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(
		a.Repository.Close(),
		a.Backend.Close(),
		a.Otel.Shutdown(ctx),
	)
}

func photoSource(repo repository.Photo) reconciler.Source {
	return repo
}
