package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStoreOperation(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		err       error
		result    string
	}{
		{
			name:      "successful put",
			operation: "put_test",
			result:    ResultSuccess,
		},
		{
			name:      "failed get",
			operation: "get_test",
			err:       errors.New("io fault"),
			result:    ResultError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(StoreOperations.WithLabelValues(tt.operation, tt.result))

			RecordStoreOperation(tt.operation, 5*time.Millisecond, tt.err)

			after := testutil.ToFloat64(StoreOperations.WithLabelValues(tt.operation, tt.result))
			assert.InDelta(t, before+1, after, 0.0001)
		})
	}
}

func TestGauges(t *testing.T) {
	SetStoreAvailable(true)
	assert.InDelta(t, 1, testutil.ToFloat64(StoreAvailable), 0.0001)

	SetStoreAvailable(false)
	assert.InDelta(t, 0, testutil.ToFloat64(StoreAvailable), 0.0001)

	SetOccupiedSlots(3)
	assert.InDelta(t, 3, testutil.ToFloat64(OccupiedSlots), 0.0001)
}

func TestRecordUploadRejection(t *testing.T) {
	before := testutil.ToFloat64(UploadRejections.WithLabelValues("validation"))

	RecordUploadRejection("validation")

	assert.InDelta(t, before+1, testutil.ToFloat64(UploadRejections.WithLabelValues("validation")), 0.0001)
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/v1/test", "200"))

	RecordHTTPRequest(http.MethodGet, "/v1/test", http.StatusOK, time.Millisecond)

	assert.InDelta(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/v1/test", "200")), 0.0001)
}
