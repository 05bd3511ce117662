package otel_test

import (
	"errors"
	"keepsake/config"
	"keepsake/infras/otel"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestScope(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := provider.Tracer("photo.store").Start(t.Context(), "photo.store.Put")
	scope := otel.NewScope(span)

	scope.TraceIfError(nil)
	scope.SetAttributes(map[string]any{
		"photo.id":      "ammu_veil",
		"photo.size":    int64(2048),
		"photo.ratio":   1.5,
		"photo.elapsed": 30 * time.Millisecond,
		"photo.slots":   []string{"ammu_veil", "couple_selfie"},
	})
	scope.AddEvent("encoded")
	scope.TraceError(errors.New("disk full"))
	scope.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "disk full", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 2)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}

	assert.Equal(t, "ammu_veil", attrs["photo.id"].AsString())
	assert.Equal(t, int64(2048), attrs["photo.size"].AsInt64())
	assert.InDelta(t, 1.5, attrs["photo.ratio"].AsFloat64(), 0.0001)
	assert.Equal(t, int64(30), attrs["photo.elapsed_ms"].AsInt64())
	assert.Equal(t, []string{"ammu_veil", "couple_selfie"}, attrs["photo.slots"].AsStringSlice())
}

func TestExtract(t *testing.T) {
	o := otel.New(&config.Config{})
	t.Cleanup(func() { _ = o.Shutdown(t.Context()) })

	header := http.Header{}
	header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx := otel.Extract(t.Context(), header)

	parent := oteltrace.SpanContextFromContext(ctx)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", parent.TraceID().String())
	assert.True(t, parent.IsRemote())

	_, scope := o.NewScope(ctx, "http", "GET /v1/slots")
	scope.End()
}
