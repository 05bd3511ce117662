package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"keepsake/infras/metrics"
	"keepsake/infras/otel"
	"keepsake/infras/storage"
	"keepsake/internal/domains/photo/model"
	"keepsake/shared/constant"
	"keepsake/shared/failure"
	"keepsake/shared/logger"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	opOpen   = "open"
	opPut    = "put"
	opGet    = "get"
	opGetAll = "get_all"
	opDelete = "delete"
	opClear  = "clear"

	maxErrorMessage = 200
)

// Photo is the record store. Every operation runs exactly one transaction on
// the photos collection of a single long-lived database handle.
type Photo interface {
	Open(ctx context.Context) error
	Put(ctx context.Context, photo model.Photo) error
	Get(ctx context.Context, id string) (model.Photo, bool, error)
	GetAll(ctx context.Context) ([]model.Photo, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	// Available returns the sticky open failure, if any.
	Available() error
	Close() error
}

type repositoryImpl struct {
	backend storage.Backend
	otel    otel.Otel

	mu          sync.Mutex
	db          storage.Database
	unavailable error
}

func New(backend storage.Backend, otel otel.Otel) Photo {
	return &repositoryImpl{
		backend: backend,
		otel:    otel,
	}
}

func upgrade(upgrader storage.Upgrader, oldVersion int) error {
	if oldVersion >= 1 {
		return nil
	}

	exists, err := upgrader.HasCollection(model.CollectionName)
	if err != nil || exists {
		return err
	}

	return upgrader.CreateCollection(model.CollectionName)
}

func (r *repositoryImpl) Open(ctx context.Context) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".photo.Open")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = r.handle(ctx)

	return err
}

// handle opens the database on first use. Concurrent callers wait on the same
// open; a failed open other than a cancellation is kept for the session.
func (r *repositoryImpl) handle(ctx context.Context) (storage.Database, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unavailable != nil {
		return nil, r.unavailable
	}

	if r.db != nil {
		return r.db, nil
	}

	start := time.Now()
	db, err := r.backend.Open(ctx, model.DatabaseName, model.SchemaVersion, upgrade)
	metrics.RecordStoreOperation(opOpen, time.Since(start), err)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("open photo store: %w", err)
		}

		logger.ErrorWithStack(err)

		r.unavailable = failure.Wrap(http.StatusServiceUnavailable, model.ErrStorageUnavailable, err)
		metrics.SetStoreAvailable(false)

		return nil, r.unavailable
	}

	log.Info().
		Str("database", db.Name()).
		Int("version", db.Version()).
		Msg("Photo store opened")

	r.db = db
	metrics.SetStoreAvailable(true)

	return db, nil
}

func (r *repositoryImpl) Available() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.unavailable
}

// run executes fn inside one transaction. Failures map to ErrStorageWrite for
// read-write transactions and ErrStorageRead otherwise.
func (r *repositoryImpl) run(ctx context.Context, op string, mode storage.Mode, fn func(tx storage.Tx) error) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, model.EntityName, op))
	defer scope.End()

	start := time.Now()

	defer func() {
		metrics.RecordStoreOperation(op, time.Since(start), err)
		scope.TraceIfError(err)
	}()

	scope.SetAttribute("storage.mode", mode.String())

	db, err := r.handle(ctx)
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx, model.CollectionName, mode)
	if err != nil {
		return r.fail(op, mode, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if err = fn(tx); err != nil {
		return r.fail(op, mode, err)
	}

	if err = tx.Commit(); err != nil {
		return r.fail(op, mode, err)
	}

	return nil
}

func (r *repositoryImpl) fail(op string, mode storage.Mode, err error) error {
	kind := model.ErrStorageRead
	if mode == storage.ReadWrite {
		kind = model.ErrStorageWrite
	}

	err = &storeError{op: op, err: err}

	log.Error().
		Str("op", op).
		Str("mode", mode.String()).
		Str("kind", kind.Error()).
		Err(err).
		Msg("Photo store operation failed")

	return failure.Wrap(http.StatusInternalServerError, kind, err)
}

// storeError bounds backend messages, which may quote stored values.
type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string {
	msg := e.err.Error()
	if len(msg) > maxErrorMessage {
		msg = strings.ToValidUTF8(msg[:maxErrorMessage], "") + "..."
	}

	return "photo store " + e.op + ": " + msg
}

func (e *storeError) Unwrap() error {
	return e.err
}

func (r *repositoryImpl) Put(ctx context.Context, photo model.Photo) error {
	data, err := json.Marshal(photo)
	if err != nil {
		return failure.Wrap(http.StatusInternalServerError, model.ErrStorageWrite, err)
	}

	return r.run(ctx, opPut, storage.ReadWrite, func(tx storage.Tx) error {
		return tx.Put(photo.ID, data)
	})
}

func (r *repositoryImpl) Get(ctx context.Context, id string) (photo model.Photo, found bool, err error) {
	err = r.run(ctx, opGet, storage.ReadOnly, func(tx storage.Tx) error {
		data, ok, err := tx.Get(id)
		if err != nil || !ok {
			return err
		}

		if err := json.Unmarshal(data, &photo); err != nil {
			return fmt.Errorf("decode photo %s: %w", id, err)
		}

		found = true

		return nil
	})
	if err != nil {
		return model.Photo{}, false, err
	}

	return photo, found, nil
}

func (r *repositoryImpl) GetAll(ctx context.Context) (photos []model.Photo, err error) {
	err = r.run(ctx, opGetAll, storage.ReadOnly, func(tx storage.Tx) error {
		values, err := tx.GetAll()
		if err != nil {
			return err
		}

		photos = make([]model.Photo, 0, len(values))

		for _, data := range values {
			var photo model.Photo
			if err := json.Unmarshal(data, &photo); err != nil {
				return fmt.Errorf("decode photo: %w", err)
			}

			photos = append(photos, photo)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return photos, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id string) error {
	return r.run(ctx, opDelete, storage.ReadWrite, func(tx storage.Tx) error {
		return tx.Delete(id)
	})
}

func (r *repositoryImpl) Clear(ctx context.Context) error {
	return r.run(ctx, opClear, storage.ReadWrite, func(tx storage.Tx) error {
		return tx.Clear()
	})
}

func (r *repositoryImpl) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}

	err := r.db.Close()
	r.db = nil

	return err
}
