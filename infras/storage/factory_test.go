package storage_test

import (
	"context"
	"keepsake/config"
	"keepsake/infras/storage"
	"keepsake/shared/constant"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(cfg *config.Config)
		wantErr error
	}{
		{
			name:  "defaults to memory",
			setup: func(_ *config.Config) {},
		},
		{
			name: "in-memory badger",
			setup: func(cfg *config.Config) {
				cfg.Storage.Driver = constant.StorageDriverBadger
				cfg.Storage.Badger.InMemory = true
			},
		},
		{
			name: "unknown driver",
			setup: func(cfg *config.Config) {
				cfg.Storage.Driver = "indexeddb"
			},
			wantErr: storage.ErrUnknownDriver,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			tt.setup(cfg)

			backend, err := storage.New(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			t.Cleanup(func() { _ = backend.Close() })

			db, err := backend.Open(context.Background(), testDatabase, 1, createItems)
			require.NoError(t, err)

			put(t, db, "a", "one")
			assert.Equal(t, []string{"one"}, all(t, db))
		})
	}
}

func TestNew_ClosedBeforeConnect(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = constant.StorageDriverBadger
	cfg.Storage.Badger.InMemory = true

	backend, err := storage.New(cfg)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = backend.Open(context.Background(), testDatabase, 1, createItems)
	assert.ErrorIs(t, err, storage.ErrClosed)
}
