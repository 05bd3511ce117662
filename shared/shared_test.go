package shared_test

import (
	"keepsake/shared"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		input string
		want  *bool
	}{
		{input: ""},
		{input: "maybe"},
		{input: "true", want: ptr(true)},
		{input: "1", want: ptr(true)},
		{input: "false", want: ptr(false)},
		{input: "0", want: ptr(false)},
	}

	for _, tt := range tests {
		t.Run("content="+tt.input, func(t *testing.T) {
			got := shared.ConvertStringToBool(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)

				return
			}

			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "limiter", shared.BuildCacheKey("limiter"))
	assert.Equal(t, "limiter:10.0.0.1:curl/8.0", shared.BuildCacheKey("limiter", "10.0.0.1", "curl/8.0"))
	assert.Equal(t, "limiter:10.0.0.1", shared.BuildCacheKey("limiter", "", "10.0.0.1"))
}

func ptr(b bool) *bool {
	return &b
}
