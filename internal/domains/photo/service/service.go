package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Photo=MockPhotoService

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"keepsake/config"
	"keepsake/infras/metrics"
	"keepsake/infras/otel"
	"keepsake/internal/domains/photo/model"
	"keepsake/internal/domains/photo/model/dto"
	"keepsake/internal/domains/photo/reconciler"
	"keepsake/internal/domains/photo/repository"
	"keepsake/internal/domains/photo/slot"
	"keepsake/shared/base64"
	"keepsake/shared/constant"
	"keepsake/shared/failure"
	"keepsake/shared/timezone"
	"keepsake/shared/validator"
	"net/http"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

const (
	maxUploadBytes = constant.UploadMaxSizeMB * constant.BytesPerMB

	rejectValidation = "validation"
	rejectBusy       = "busy"
	rejectEncoding   = "encoding"
	rejectStorage    = "storage"
)

var errMissingFile = errors.New("file is required")

type Photo interface {
	Load(ctx context.Context) (dto.GalleryResponse, error)
	Gallery(ctx context.Context) (dto.GalleryResponse, error)
	Upload(ctx context.Context, req dto.UploadPhotoRequest) (dto.PhotoResponse, error)
	Get(ctx context.Context, id string, withContent bool) (dto.PhotoResponse, error)
	GetAll(ctx context.Context, withContent bool) (dto.GetPhotosResponse, error)
	Image(ctx context.Context, id string) (dto.ImageResponse, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Status(ctx context.Context) (dto.StatusResponse, error)
}

type serviceImpl struct {
	repo       repository.Photo
	reconciler *reconciler.Reconciler
	registry   *slot.Registry
	cfg        *config.Config
	otel       otel.Otel
}

func New(repo repository.Photo, rec *reconciler.Reconciler, registry *slot.Registry, cfg *config.Config, otel otel.Otel) Photo {
	return &serviceImpl{
		repo:       repo,
		reconciler: rec,
		registry:   registry,
		cfg:        cfg,
		otel:       otel,
	}
}

func slotNotFound(id string) error {
	return failure.Wrap(http.StatusNotFound, model.ErrSlotNotFound, fmt.Errorf("unknown slot %q", id))
}

func (s *serviceImpl) lookup(id string) (slot.Definition, error) {
	def, ok := s.registry.Lookup(id)
	if !ok {
		return def, slotNotFound(id)
	}

	return def, nil
}

func (s *serviceImpl) placeholder(def slot.Definition) string {
	if def.DefaultImage != constant.Empty {
		return def.DefaultImage
	}

	return s.cfg.App.PlaceholderURL
}

func (s *serviceImpl) ensureLoaded(ctx context.Context) error {
	if s.reconciler.Loaded() {
		return nil
	}

	_, err := s.reconciler.Load(ctx)

	return err
}

func (s *serviceImpl) gallery() dto.GalleryResponse {
	photos := s.reconciler.Photos()
	res := dto.GalleryResponse{
		Slots: make([]dto.SlotResponse, 0, s.registry.Len()),
		Total: s.registry.Len(),
	}

	for _, def := range s.registry.All() {
		view := dto.SlotResponse{
			ID:      def.ID,
			Caption: def.Caption,
			State:   s.reconciler.State(def.ID).String(),
		}

		if photo, ok := photos[def.ID]; ok {
			view.Image = photo.Content
			view.Name = photo.Name
			view.UploadedAt = timezone.ToAppTime(photo.UploadedAt).Format(constant.DateFormat)
			res.Occupied++
		} else {
			view.Image = s.placeholder(def)
			view.Placeholder = true
		}

		res.Slots = append(res.Slots, view)
	}

	return res
}

func (s *serviceImpl) Load(ctx context.Context) (res dto.GalleryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Load")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.reconciler.Load(ctx); err != nil {
		log.Error().Err(err).Msg("failed to load gallery")

		return res, err
	}

	return s.gallery(), nil
}

func (s *serviceImpl) Gallery(ctx context.Context) (res dto.GalleryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Gallery")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureLoaded(ctx); err != nil {
		log.Error().Err(err).Msg("failed to load gallery")

		return res, err
	}

	return s.gallery(), nil
}

func (s *serviceImpl) Upload(ctx context.Context, req dto.UploadPhotoRequest) (res dto.PhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Upload")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("slot.id", req.SlotID)
	scope.SetAttribute("upload.size", req.Size)

	def, err := s.lookup(req.SlotID)
	if err != nil {
		return res, err
	}

	if err = s.validate(&req); err != nil {
		metrics.RecordUploadRejection(rejectValidation)

		return res, err
	}

	if err = s.reconciler.BeginUpload(def.ID); err != nil {
		metrics.RecordUploadRejection(rejectBusy)

		return res, err
	}

	var photo model.Photo

	defer func() {
		s.reconciler.FinishUpload(def.ID, photo, err)
	}()

	payload := &countingReader{r: io.LimitReader(req.File, maxUploadBytes+1)}

	content, err := base64.Encode(payload, req.ContentType)
	if err != nil {
		metrics.RecordUploadRejection(rejectEncoding)
		log.Error().Err(err).Str("slot", def.ID).Msg("failed to encode photo")

		return res, failure.Wrap(http.StatusUnprocessableEntity, model.ErrEncoding, err)
	}

	if payload.n == 0 || payload.n > maxUploadBytes {
		metrics.RecordUploadRejection(rejectValidation)

		err = failure.Wrap(http.StatusBadRequest, model.ErrValidation,
			fmt.Errorf("payload size must be between 1 byte and %s", humanize.IBytes(maxUploadBytes)))

		return res, err
	}

	photo = req.ToModel(def, content, timezone.Now())

	if err = s.repo.Put(ctx, photo); err != nil {
		metrics.RecordUploadRejection(rejectStorage)
		log.Error().Err(err).Str("slot", def.ID).Msg("failed to store photo")

		return res, err
	}

	metrics.RecordUpload(payload.n)
	log.Info().
		Str("slot", def.ID).
		Str("name", photo.Name).
		Str("size", humanize.IBytes(uint64(payload.n))).
		Str("encoded", humanize.IBytes(uint64(len(content)))).
		Msg("Photo uploaded")

	res.FromModel(photo, false)

	return res, nil
}

func (s *serviceImpl) validate(req *dto.UploadPhotoRequest) error {
	if req.File == nil {
		return failure.Wrap(http.StatusBadRequest, model.ErrValidation, errMissingFile)
	}

	if err := validator.ValidateStruct(req); err != nil {
		return failure.Wrap(http.StatusBadRequest, model.ErrValidation, err)
	}

	return nil
}

func (s *serviceImpl) Get(ctx context.Context, id string, withContent bool) (res dto.PhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.lookup(id); err != nil {
		return res, err
	}

	photo, found, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("slot", id).Msg("failed to get photo")

		return res, err
	}

	if !found {
		return res, failure.Wrap(http.StatusNotFound, model.ErrPhotoNotFound, fmt.Errorf("slot %q is empty", id))
	}

	res.FromModel(photo, withContent)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, withContent bool) (res dto.GetPhotosResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	photos, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get photos")

		return res, err
	}

	s.sortBySlot(photos)
	res.FromModels(photos, withContent)

	return res, nil
}

// sortBySlot orders photos by registry position; ids outside the registry go last.
func (s *serviceImpl) sortBySlot(photos []model.Photo) {
	position := make(map[string]int, s.registry.Len())
	for i, id := range s.registry.IDs() {
		position[id] = i
	}

	rank := func(id string) int {
		if i, ok := position[id]; ok {
			return i
		}

		return len(position)
	}

	slices.SortFunc(photos, func(a, b model.Photo) int {
		return cmp.Or(cmp.Compare(rank(a.ID), rank(b.ID)), cmp.Compare(a.ID, b.ID))
	})
}

func (s *serviceImpl) Image(ctx context.Context, id string) (res dto.ImageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Image")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	def, err := s.lookup(id)
	if err != nil {
		return res, err
	}

	if err = s.ensureLoaded(ctx); err != nil {
		return res, err
	}

	content, ok := s.reconciler.ImageFor(id)
	if !ok {
		res.Fallback = s.placeholder(def)

		return res, nil
	}

	mediaType, data, err := base64.Decode(content)
	if err != nil {
		log.Error().Err(err).Str("slot", id).Msg("stored photo is not a valid data url")

		return res, failure.Wrap(http.StatusInternalServerError, model.ErrStorageRead, err)
	}

	res.Found = true
	res.ContentType = mediaType
	res.Data = data

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.lookup(id); err != nil {
		return err
	}

	if err = s.reconciler.BeginDelete(id); err != nil {
		return err
	}

	err = s.repo.Delete(ctx, id)
	s.reconciler.FinishDelete(id, err)

	if err != nil {
		log.Error().Err(err).Str("slot", id).Msg("failed to delete photo")

		return err
	}

	log.Info().Str("slot", id).Msg("Photo deleted")

	return nil
}

func (s *serviceImpl) Clear(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Clear")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.repo.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear photos")

		return err
	}

	s.reconciler.ApplyClear()
	log.Info().Msg("All photos cleared")

	return nil
}

func (s *serviceImpl) Status(ctx context.Context) (res dto.StatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Status")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res.Loaded = s.reconciler.Loaded()
	res.OccupiedSlots = []string{}
	res.StoredSize = humanize.IBytes(0)

	photos, err := s.repo.GetAll(ctx)
	if errors.Is(err, model.ErrStorageUnavailable) {
		res.Error = err.Error()

		return res, nil
	}

	if err != nil {
		return res, err
	}

	s.sortBySlot(photos)

	res.Available = true
	res.Count = len(photos)
	res.HasPhotos = len(photos) > 0

	for _, photo := range photos {
		res.StoredBytes += int64(len(photo.Content))

		if s.registry.Contains(photo.ID) {
			res.OccupiedSlots = append(res.OccupiedSlots, photo.ID)
		}
	}

	res.StoredSize = humanize.IBytes(uint64(res.StoredBytes))

	return res, nil
}
