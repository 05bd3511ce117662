package photo

import (
	"fmt"
	"keepsake/infras/otel"
	"keepsake/internal/domains/photo/model"
	"keepsake/internal/domains/photo/model/dto"
	"keepsake/internal/domains/photo/service"
	"keepsake/shared"
	"keepsake/shared/base64"
	"keepsake/shared/constant"
	"keepsake/shared/failure"
	"keepsake/transport/http/response"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Photo
	otel    otel.Otel
}

func New(service service.Photo, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/slots", handler.GetSlots)
	router.Get("/status", handler.GetStatus)

	router.Route("/photos", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPhotos)
		routerGroup.Delete("/", handler.ClearPhotos)
		routerGroup.Post("/refresh", handler.RefreshPhotos)
		routerGroup.Get("/{id}", handler.GetPhoto)
		routerGroup.Get("/{id}/image", handler.GetImage)
		routerGroup.Put("/{id}", handler.UploadPhoto)
		routerGroup.Delete("/{id}", handler.DeletePhoto)
	})
}

// GetSlots renders every slot with its photo or placeholder.
// @Summary Get gallery slots
// @Description Retrieve all slots in display order, each with its photo or a placeholder image.
// @Tags Photo
// @Produce json
// @Success 200 {object} dto.GalleryResponse "Gallery slots"
// @Failure 503 {object} response.Error
// @Router /v1/slots [get]
func (handler *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlots")
	defer scope.End()

	res, err := handler.service.Gallery(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get gallery")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetPhotos retrieves all stored photos.
// @Summary Get all photos
// @Description Retrieve every stored photo. The encoded content is only included when requested.
// @Tags Photo
// @Produce json
// @Param content query bool false "Include the encoded image content"
// @Success 200 {object} dto.GetPhotosResponse "List of photos"
// @Failure 500 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/photos [get]
func (handler *Handler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPhotos")
	defer scope.End()

	withContent := false
	if v := shared.ConvertStringToBool(r.URL.Query().Get(constant.RequestQueryContent)); v != nil {
		withContent = *v
	}

	res, err := handler.service.GetAll(ctx, withContent)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get photos")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetPhoto retrieves a single photo with its content.
// @Summary Get photo by slot ID
// @Description Retrieve the photo stored in a slot, including its encoded content.
// @Tags Photo
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} dto.PhotoResponse "Photo details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/photos/{id} [get]
func (handler *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPhoto")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Get(ctx, id, true)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot", id).Msg("failed to get photo")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetImage serves the decoded image of a slot.
// @Summary Get slot image
// @Description Serve the stored image bytes, or redirect to the slot default image when the slot is empty.
// @Tags Photo
// @Produce image/png,image/jpeg,image/gif,image/webp
// @Param id path string true "Slot ID"
// @Success 200 {file} binary "Image bytes"
// @Success 302 "Redirect to the placeholder image"
// @Failure 404 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/photos/{id}/image [get]
func (handler *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetImage")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	res, err := handler.service.Image(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot", id).Msg("failed to get image")

		response.WithError(w, err)

		return
	}

	switch {
	case res.Found:
		response.WithBinary(w, res.ContentType, res.Data)
	case res.Fallback != constant.Empty:
		response.WithRedirect(w, r, res.Fallback)
	default:
		response.WithError(w, failure.NotFound(fmt.Sprintf("%s %s not found", model.EntityName, id)))
	}
}

// UploadPhoto stores an image in a slot, replacing any previous one.
// @Summary Upload a photo
// @Description Encode the uploaded image and store it in the slot. Images up to 5 MiB are accepted.
// @Tags Photo
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Slot ID"
// @Param file formData file true "Image file to upload"
// @Success 200 {object} dto.PhotoResponse "Photo uploaded successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 422 {object} response.Error
// @Failure 500 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/photos/{id} [put]
func (handler *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadPhoto")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	r.Body = http.MaxBytesReader(w, r.Body, constant.RequestMaxBody)

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		err = failure.Wrap(http.StatusBadRequest, model.ErrValidation, fmt.Errorf("failed to parse multipart form: %w", err))

		scope.TraceError(err)
		log.Error().Err(err).Str("slot", id).Msg("failed to parse multipart form")

		response.WithError(w, err)

		return
	}

	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn().Err(err).Msg("failed to remove multipart temp files")
		}
	}()

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err != nil {
		err = failure.Wrap(http.StatusBadRequest, model.ErrValidation, fmt.Errorf("missing %q form file: %w", constant.FormFile, err))

		scope.TraceError(err)
		log.Error().Err(err).Str("slot", id).Msg("failed to get file from form")

		response.WithError(w, err)

		return
	}
	defer file.Close()

	contentType, err := contentTypeOf(file, fileHeader)
	if err != nil {
		err = failure.Wrap(http.StatusUnprocessableEntity, model.ErrEncoding, err)

		scope.TraceError(err)
		log.Error().Err(err).Str("slot", id).Msg("failed to sniff uploaded file")

		response.WithError(w, err)

		return
	}

	req := dto.UploadPhotoRequest{
		SlotID:      id,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		File:        file,
	}

	res, err := handler.service.Upload(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot", id).Msg("failed to upload photo")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Photo uploaded to slot " + id)

	response.WithJSON(w, http.StatusOK, res)
}

// contentTypeOf trusts the part header unless it is missing or generic.
func contentTypeOf(file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get(constant.RequestHeaderContentType)
	if contentType != constant.Empty && contentType != constant.ContentTypeOctetStream {
		return contentType, nil
	}

	return base64.Sniff(file)
}

// DeletePhoto removes the photo of a slot.
// @Summary Delete a photo
// @Description Remove the photo stored in a slot. Deleting an empty slot succeeds.
// @Tags Photo
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Message "Photo deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/photos/{id} [delete]
func (handler *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePhoto")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slot", id).Msg("failed to delete photo")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Photo deleted successfully")
}

// ClearPhotos removes every stored photo.
// @Summary Clear all photos
// @Description Remove every stored photo, returning all slots to their placeholders.
// @Tags Photo
// @Produce json
// @Success 200 {object} response.Message "Photos cleared successfully"
// @Failure 500 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/photos [delete]
func (handler *Handler) ClearPhotos(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ClearPhotos")
	defer scope.End()

	if err := handler.service.Clear(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to clear photos")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Photos cleared successfully")
}

// RefreshPhotos reloads the in-memory slot mapping from the store.
// @Summary Refresh photos
// @Description Reload all photos from the store and return the refreshed gallery.
// @Tags Photo
// @Produce json
// @Success 200 {object} dto.GalleryResponse "Refreshed gallery"
// @Failure 500 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/photos/refresh [post]
func (handler *Handler) RefreshPhotos(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RefreshPhotos")
	defer scope.End()

	res, err := handler.service.Load(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to refresh photos")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetStatus reports whether the store is reachable and what it holds.
// @Summary Get store status
// @Description Report store availability, record count and occupied slots.
// @Tags Photo
// @Produce json
// @Success 200 {object} dto.StatusResponse "Store status"
// @Failure 500 {object} response.Error
// @Failure 503 {object} dto.StatusResponse "Store unavailable"
// @Router /v1/status [get]
func (handler *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStatus")
	defer scope.End()

	res, err := handler.service.Status(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get status")

		response.WithError(w, err)

		return
	}

	code := http.StatusOK
	if !res.Available {
		code = http.StatusServiceUnavailable
	}

	response.WithJSON(w, code, res)
}
