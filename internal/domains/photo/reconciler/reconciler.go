// Package reconciler keeps the in-memory slot to photo projection that the
// presentation layer renders, aligned with the record store.
package reconciler

import (
	"context"
	"fmt"
	"keepsake/infras/metrics"
	"keepsake/internal/domains/photo/model"
	"keepsake/shared/failure"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	loadKey         = "load"
	maxLoadAttempts = 3
	loadTimeout     = 30 * time.Second
)

type State int

const (
	StateEmpty State = iota
	StateUploading
	StateOccupied
)

func (s State) String() string {
	switch s {
	case StateUploading:
		return "uploading"
	case StateOccupied:
		return "occupied"
	default:
		return "empty"
	}
}

// Source is the part of the record store a load reads from.
type Source interface {
	GetAll(ctx context.Context) ([]model.Photo, error)
}

// Reconciler owns the gallery mapping. The mapping is only mutated through its
// methods and always reflects the last known committed state of the store.
type Reconciler struct {
	source Source
	group  singleflight.Group

	mu         sync.RWMutex
	photos     map[string]model.Photo
	uploading  map[string]struct{}
	deleting   map[string]struct{}
	generation uint64
	loaded     bool
}

func New(source Source) *Reconciler {
	return &Reconciler{
		source:    source,
		photos:    make(map[string]model.Photo),
		uploading: make(map[string]struct{}),
		deleting:  make(map[string]struct{}),
	}
}

// Load replaces the whole mapping with the records currently in the store.
// Concurrent loads share one store read. A local mutation that lands while the
// read is in flight causes the read to be repeated. The shared read is detached
// from the caller that started it, so one caller giving up only ends its own wait.
func (r *Reconciler) Load(ctx context.Context) (map[string]model.Photo, error) {
	ch := r.group.DoChan(loadKey, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		return nil, r.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		if res.Shared {
			log.Debug().Msg("Gallery load coalesced with an in-flight load")
		}
	}

	return r.Photos(), nil
}

func (r *Reconciler) load(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		r.mu.RLock()
		generation := r.generation
		r.mu.RUnlock()

		photos, err := r.source.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("load gallery: %w", err)
		}

		next := make(map[string]model.Photo, len(photos))
		for _, photo := range photos {
			next[photo.ID] = photo
		}

		r.mu.Lock()

		if r.generation != generation && attempt < maxLoadAttempts {
			r.mu.Unlock()

			continue
		}

		r.photos = next
		r.loaded = true
		r.generation++
		count := len(next)

		r.mu.Unlock()

		metrics.SetOccupiedSlots(count)
		log.Info().Int("photos", count).Msg("Gallery loaded from photo store")

		return nil
	}
}

// busy reports why id cannot take a new upload or delete. Callers hold mu.
func (r *Reconciler) busy(id string) error {
	if _, ok := r.uploading[id]; ok {
		return failure.Wrap(http.StatusConflict, model.ErrSlotBusy, fmt.Errorf("upload to %s already in progress", id))
	}

	if _, ok := r.deleting[id]; ok {
		return failure.Wrap(http.StatusConflict, model.ErrSlotBusy, fmt.Errorf("delete of %s already in progress", id))
	}

	return nil
}

// BeginUpload marks id as uploading. A slot accepts one upload or delete at a time.
func (r *Reconciler) BeginUpload(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.busy(id); err != nil {
		return err
	}

	r.uploading[id] = struct{}{}

	return nil
}

// BeginDelete reserves id for a store delete so no upload can start until
// FinishDelete.
func (r *Reconciler) BeginDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.busy(id); err != nil {
		return err
	}

	r.deleting[id] = struct{}{}

	return nil
}

// FinishDelete releases id and drops it from the mapping when the store delete succeeded.
func (r *Reconciler) FinishDelete(id string, err error) {
	r.mu.Lock()
	delete(r.deleting, id)
	r.mu.Unlock()

	if err == nil {
		r.ApplyDelete(id)
	}
}

// FinishUpload ends the upload started by BeginUpload. On success the photo is
// merged into the mapping; on failure the slot keeps its prior record.
func (r *Reconciler) FinishUpload(id string, photo model.Photo, err error) {
	r.mu.Lock()
	delete(r.uploading, id)
	r.mu.Unlock()

	if err == nil {
		r.ApplyUpload(photo)
	}
}

// ApplyUpload merges a committed record without touching other entries.
func (r *Reconciler) ApplyUpload(photo model.Photo) {
	r.mu.Lock()
	r.photos[photo.ID] = photo
	r.generation++
	count := len(r.photos)
	r.mu.Unlock()

	metrics.SetOccupiedSlots(count)
}

func (r *Reconciler) ApplyDelete(id string) {
	r.mu.Lock()
	delete(r.photos, id)
	r.generation++
	count := len(r.photos)
	r.mu.Unlock()

	metrics.SetOccupiedSlots(count)
}

func (r *Reconciler) ApplyClear() {
	r.mu.Lock()
	clear(r.photos)
	r.generation++
	r.mu.Unlock()

	metrics.SetOccupiedSlots(0)
}

// ImageFor returns the data URL to render for id.
func (r *Reconciler) ImageFor(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, ok := r.photos[id]

	return photo.Content, ok
}

func (r *Reconciler) Photo(id string) (model.Photo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	photo, ok := r.photos[id]

	return photo, ok
}

// Photos returns a copy of the mapping.
func (r *Reconciler) Photos() map[string]model.Photo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.photos)
}

func (r *Reconciler) State(id string) State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, busy := r.uploading[id]; busy {
		return StateUploading
	}

	if _, ok := r.photos[id]; ok {
		return StateOccupied
	}

	return StateEmpty
}

func (r *Reconciler) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.photos)
}

// Loaded reports whether a full load has completed.
func (r *Reconciler) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loaded
}
