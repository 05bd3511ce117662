package photo_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"keepsake/config"
	"keepsake/infras/otel/mocks"
	"keepsake/infras/storage"
	photoMocks "keepsake/internal/domains/photo/mocks"
	"keepsake/internal/domains/photo/model"
	"keepsake/internal/domains/photo/model/dto"
	"keepsake/internal/domains/photo/reconciler"
	"keepsake/internal/domains/photo/repository"
	"keepsake/internal/domains/photo/service"
	"keepsake/internal/domains/photo/slot"
	"keepsake/internal/handlers/photo"
	"keepsake/shared/failure"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const placeholderURL = "https://example.com/placeholder.png"

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func pngPayload(size int) []byte {
	data := bytes.Repeat([]byte{0x42}, size)
	copy(data, pngHeader)

	return data
}

type envelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var body envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())

	return body
}

func newRouter(svc service.Photo) http.Handler {
	handler := photo.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	return router
}

func newServer(t *testing.T) (http.Handler, *storage.Memory) {
	t.Helper()

	registry, err := slot.NewRegistry(
		slot.Definition{ID: slot.AmmuDogFilter, Caption: "dog filter"},
		slot.Definition{ID: slot.CoupleSelfie, Caption: "selfie", DefaultImage: "https://example.com/selfie.jpg"},
	)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.PlaceholderURL = placeholderURL

	backend := storage.NewMemory()
	repo := repository.New(backend, mocks.NewOtel())
	svc := service.New(repo, reconciler.New(repo), registry, cfg, mocks.NewOtel())

	return newRouter(svc), backend
}

// multipartBody builds an upload form. An empty contentType leaves the part
// typed as application/octet-stream.
func multipartBody(t *testing.T, field, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	var (
		part io.Writer
		err  error
	)

	if contentType == "" {
		part, err = writer.CreateFormFile(field, fileName)
	} else {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
		header.Set("Content-Type", contentType)
		part, err = writer.CreatePart(header)
	}

	require.NoError(t, err)

	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func upload(t *testing.T, router http.Handler, id, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, formType := multipartBody(t, "file", id+".png", contentType, data)

	req := httptest.NewRequest(http.MethodPut, "/v1/photos/"+id, body)
	req.Header.Set("Content-Type", formType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func do(router http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func TestHandler_UploadThenServeImage(t *testing.T) {
	router, _ := newServer(t)
	data := pngPayload(2048)

	rec := upload(t, router, slot.AmmuDogFilter, "image/png", data)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	uploaded := decode[dto.PhotoResponse](t, rec)
	assert.Equal(t, slot.AmmuDogFilter, uploaded.Data.ID)
	assert.Equal(t, "image/png", uploaded.Data.ContentType)
	assert.Equal(t, "dog filter", uploaded.Data.Caption)

	rec = do(router, http.MethodGet, "/v1/photos/"+slot.AmmuDogFilter+"/image")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, data, rec.Body.Bytes())

	rec = do(router, http.MethodGet, "/v1/photos/"+slot.AmmuDogFilter)
	require.Equal(t, http.StatusOK, rec.Code)

	single := decode[dto.PhotoResponse](t, rec)
	assert.Contains(t, single.Data.Content, "data:image/png;base64,")
}

func TestHandler_UploadSniffsGenericContentType(t *testing.T) {
	router, _ := newServer(t)

	rec := upload(t, router, slot.CoupleSelfie, "", pngPayload(512))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.PhotoResponse](t, rec)
	assert.Equal(t, "image/png", res.Data.ContentType)
}

func TestHandler_UploadRejections(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		contentType string
		data        []byte
		wantCode    int
	}{
		{
			name:        "not an image",
			id:          slot.AmmuDogFilter,
			contentType: "text/plain",
			data:        []byte("hello"),
			wantCode:    http.StatusBadRequest,
		},
		{
			name:        "sniffed as text",
			id:          slot.AmmuDogFilter,
			data:        []byte("plain words, not pixels"),
			wantCode:    http.StatusBadRequest,
		},
		{
			name:        "empty file",
			id:          slot.AmmuDogFilter,
			contentType: "image/png",
			data:        []byte{},
			wantCode:    http.StatusBadRequest,
		},
		{
			name:        "over five mebibytes",
			id:          slot.AmmuDogFilter,
			contentType: "image/png",
			data:        pngPayload(5*1024*1024 + 1),
			wantCode:    http.StatusBadRequest,
		},
		{
			name:        "unknown slot",
			id:          "not-a-slot",
			contentType: "image/png",
			data:        pngPayload(64),
			wantCode:    http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newServer(t)

			rec := upload(t, router, tt.id, tt.contentType, tt.data)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			body := decode[any](t, rec)
			assert.NotEmpty(t, body.Error)

			list := do(router, http.MethodGet, "/v1/photos")
			require.Equal(t, http.StatusOK, list.Code)
			assert.Equal(t, 0, decode[dto.GetPhotosResponse](t, list).Data.TotalData)
		})
	}
}

func TestHandler_UploadMissingFile(t *testing.T) {
	router, _ := newServer(t)

	body, formType := multipartBody(t, "attachment", "a.png", "image/png", pngPayload(64))

	req := httptest.NewRequest(http.MethodPut, "/v1/photos/"+slot.AmmuDogFilter, body)
	req.Header.Set("Content-Type", formType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ImageFallback(t *testing.T) {
	router, _ := newServer(t)

	tests := []struct {
		name     string
		id       string
		location string
	}{
		{name: "slot default image", id: slot.CoupleSelfie, location: "https://example.com/selfie.jpg"},
		{name: "configured placeholder", id: slot.AmmuDogFilter, location: placeholderURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(router, http.MethodGet, "/v1/photos/"+tt.id+"/image")

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestHandler_GalleryAndPhotosList(t *testing.T) {
	router, _ := newServer(t)

	require.Equal(t, http.StatusOK, upload(t, router, slot.CoupleSelfie, "image/png", pngPayload(256)).Code)

	rec := do(router, http.MethodGet, "/v1/slots")
	require.Equal(t, http.StatusOK, rec.Code)

	gallery := decode[dto.GalleryResponse](t, rec)
	require.Len(t, gallery.Data.Slots, 2)
	assert.Equal(t, 1, gallery.Data.Occupied)
	assert.True(t, gallery.Data.Slots[0].Placeholder)
	assert.Equal(t, placeholderURL, gallery.Data.Slots[0].Image)
	assert.False(t, gallery.Data.Slots[1].Placeholder)

	rec = do(router, http.MethodGet, "/v1/photos")
	list := decode[dto.GetPhotosResponse](t, rec)
	require.Len(t, list.Data.Photos, 1)
	assert.Empty(t, list.Data.Photos[0].Content)

	rec = do(router, http.MethodGet, "/v1/photos?content=true")
	list = decode[dto.GetPhotosResponse](t, rec)
	require.Len(t, list.Data.Photos, 1)
	assert.NotEmpty(t, list.Data.Photos[0].Content)
}

func TestHandler_DeleteAndClear(t *testing.T) {
	router, _ := newServer(t)

	require.Equal(t, http.StatusOK, upload(t, router, slot.AmmuDogFilter, "image/png", pngPayload(64)).Code)
	require.Equal(t, http.StatusOK, upload(t, router, slot.CoupleSelfie, "image/png", pngPayload(64)).Code)

	rec := do(router, http.MethodDelete, "/v1/photos/"+slot.AmmuDogFilter)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/v1/photos/"+slot.AmmuDogFilter)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodDelete, "/v1/photos")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	status := decode[dto.StatusResponse](t, rec)
	assert.True(t, status.Data.Available)
	assert.Equal(t, 0, status.Data.Count)
	assert.False(t, status.Data.HasPhotos)
}

func TestHandler_RefreshPicksUpExternalWrites(t *testing.T) {
	router, backend := newServer(t)

	rec := do(router, http.MethodGet, "/v1/slots")
	require.Equal(t, http.StatusOK, rec.Code)

	writer := repository.New(backend, mocks.NewOtel())
	require.NoError(t, writer.Put(t.Context(), model.Photo{
		ID:      slot.AmmuDogFilter,
		Name:    "external.png",
		Content: "data:image/png;base64,iVBORw0KGgo=",
	}))

	rec = do(router, http.MethodPost, "/v1/photos/refresh")
	require.Equal(t, http.StatusOK, rec.Code)

	gallery := decode[dto.GalleryResponse](t, rec)
	assert.Equal(t, 1, gallery.Data.Occupied)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", gallery.Data.Slots[0].Image)
}

func TestHandler_StoreUnavailable(t *testing.T) {
	router, backend := newServer(t)
	backend.FailOpen(errors.New("quota exhausted"))

	rec := do(router, http.MethodGet, "/v1/status")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	status := decode[dto.StatusResponse](t, rec)
	assert.False(t, status.Data.Available)
	assert.NotEmpty(t, status.Data.Error)

	rec = upload(t, router, slot.AmmuDogFilter, "image/png", pngPayload(64))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		setup    func(svc *photoMocks.MockPhotoService)
		wantCode int
	}{
		{
			name:   "busy slot on delete",
			method: http.MethodDelete,
			target: "/v1/photos/" + slot.AmmuVeil,
			setup: func(svc *photoMocks.MockPhotoService) {
				svc.EXPECT().Delete(gomock.Any(), slot.AmmuVeil).
					Return(failure.Wrap(http.StatusConflict, model.ErrSlotBusy, errors.New("upload in progress")))
			},
			wantCode: http.StatusConflict,
		},
		{
			name:   "write failure on clear",
			method: http.MethodDelete,
			target: "/v1/photos",
			setup: func(svc *photoMocks.MockPhotoService) {
				svc.EXPECT().Clear(gomock.Any()).
					Return(failure.Wrap(http.StatusInternalServerError, model.ErrStorageWrite, errors.New("disk full")))
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:   "image without fallback",
			method: http.MethodGet,
			target: "/v1/photos/" + slot.AmmuVeil + "/image",
			setup: func(svc *photoMocks.MockPhotoService) {
				svc.EXPECT().Image(gomock.Any(), slot.AmmuVeil).Return(dto.ImageResponse{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:   "refresh on unavailable store",
			method: http.MethodPost,
			target: "/v1/photos/refresh",
			setup: func(svc *photoMocks.MockPhotoService) {
				svc.EXPECT().Load(gomock.Any()).
					Return(dto.GalleryResponse{}, failure.Wrap(http.StatusServiceUnavailable, model.ErrStorageUnavailable, errors.New("closed")))
			},
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:   "content flag forwarded",
			method: http.MethodGet,
			target: "/v1/photos?content=1",
			setup: func(svc *photoMocks.MockPhotoService) {
				svc.EXPECT().GetAll(gomock.Any(), true).Return(dto.GetPhotosResponse{}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:   "invalid content flag ignored",
			method: http.MethodGet,
			target: "/v1/photos?content=maybe",
			setup: func(svc *photoMocks.MockPhotoService) {
				svc.EXPECT().GetAll(gomock.Any(), false).Return(dto.GetPhotosResponse{}, nil)
			},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := photoMocks.NewMockPhotoService(ctrl)
			tt.setup(svc)

			rec := do(newRouter(svc), tt.method, tt.target)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}
