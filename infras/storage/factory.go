package storage

import (
	"context"
	"fmt"
	"keepsake/config"
	"keepsake/infras/postgres"
	"keepsake/shared/constant"
	"sync"

	"github.com/rs/zerolog/log"
)

// New returns the Backend selected by STORAGE_DRIVER. Drivers that need a
// connection or a directory acquire it on the first Open, so a host that cannot
// provide storage surfaces as an Open error rather than a boot failure.
func New(cfg *config.Config) (Backend, error) {
	driver := cfg.Storage.Driver
	if driver == constant.Empty {
		driver = constant.StorageDriverMemory
	}

	log.Info().Str("driver", driver).Msg("Selecting photo storage driver")

	switch driver {
	case constant.StorageDriverMemory:
		return NewMemory(), nil
	case constant.StorageDriverBadger:
		return newLazy(func() (Backend, error) {
			return NewBadger(cfg.Storage.Badger.Dir, cfg.Storage.Badger.InMemory)
		}), nil
	case constant.StorageDriverPostgres:
		return newLazy(func() (Backend, error) {
			conn, err := postgres.New(cfg)
			if err != nil {
				return nil, err
			}

			return NewPostgres(conn), nil
		}), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
}

type lazy struct {
	connect func() (Backend, error)

	once    sync.Once
	backend Backend
	err     error
}

func newLazy(connect func() (Backend, error)) *lazy {
	return &lazy{connect: connect}
}

func (l *lazy) get() (Backend, error) {
	l.once.Do(func() {
		l.backend, l.err = l.connect()
		if l.err != nil {
			log.Error().Err(l.err).Msg("Failed to connect photo storage backend")
		}
	})

	return l.backend, l.err
}

func (l *lazy) Open(ctx context.Context, name string, version int, upgrade UpgradeFunc) (Database, error) {
	backend, err := l.get()
	if err != nil {
		return nil, err
	}

	return backend.Open(ctx, name, version, upgrade)
}

// Close releases the backend if it was ever connected and prevents later connects.
func (l *lazy) Close() error {
	l.once.Do(func() {
		l.err = ErrClosed
	})

	if l.backend == nil {
		return nil
	}

	return l.backend.Close()
}
