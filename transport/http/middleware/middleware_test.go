package middleware_test

import (
	"errors"
	"keepsake/config"
	"keepsake/infras/otel/mocks"
	cacheMocks "keepsake/shared/cache/mocks"
	"keepsake/shared/constant"
	"keepsake/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func limitedConfig(maxRequests int) *config.Config {
	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = maxRequests
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		err           error
		wantCode      int
		wantRemaining string
	}{
		{name: "under limit", count: 1, wantCode: http.StatusOK, wantRemaining: "2"},
		{name: "at limit", count: 3, wantCode: http.StatusOK, wantRemaining: "0"},
		{name: "over limit", count: 4, wantCode: http.StatusTooManyRequests, wantRemaining: "0"},
		{name: "cache failure lets request through", err: errors.New("connection refused"), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cache := cacheMocks.NewMockRedisCache(ctrl)
			cache.EXPECT().
				Increment(gomock.Any(), "limiter:10.0.0.1:tester", 60).
				Return(tt.count, tt.err)

			m := middleware.NewAppMiddleware(mocks.NewOtel(), limitedConfig(3), cache)
			handler := m.RateLimit()(http.HandlerFunc(okHandler))

			req := httptest.NewRequest(http.MethodGet, "/v1/slots", nil)
			req.Header.Set(constant.RequestHeaderForwardedFor, "10.0.0.1, 192.168.0.1")
			req.Header.Set(constant.RequestHeaderUserAgent, "tester")

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantRemaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
		})
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	m := middleware.NewAppMiddleware(mocks.NewOtel(), &config.Config{}, cache)
	handler := m.RateLimit()(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	m := middleware.NewAppMiddleware(mocks.NewOtel(), &config.Config{}, nil)

	var seen string

	handler := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(constant.ContextKeyRequestID).(string)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(constant.RequestHeaderRequestID))
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constant.RequestHeaderRequestID, "req-123")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "req-123", seen)
		assert.Equal(t, "req-123", rec.Header().Get(constant.RequestHeaderRequestID))
	})
}

func TestStack_RecoversAndInstruments(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Metrics.Enable = true

	m := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, nil)

	router := chi.NewRouter()
	router.Use(m.Recover, m.RequestID, m.Tracing, m.Instrument, m.CORS())
	router.Get("/v1/photos/{id}", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	router.Get("/v1/slots", okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/photos/ammu-veil", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/slots", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(constant.RequestHeaderRequestID))
}
