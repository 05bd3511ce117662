package storage_test

import (
	"bytes"
	"context"
	"errors"
	"keepsake/infras/storage"
	"sort"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDatabase   = "test_db"
	testCollection = "items"
)

func createItems(upgrader storage.Upgrader, oldVersion int) error {
	if oldVersion < 1 {
		return upgrader.CreateCollection(testCollection)
	}

	return nil
}

func newBadger(t *testing.T) storage.Backend {
	t.Helper()

	backend, err := storage.NewBadgerWithOptions(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)

	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

func newBadgerOnDisk(t *testing.T) storage.Backend {
	t.Helper()

	backend, err := storage.NewBadger(t.TempDir(), false)
	require.NoError(t, err)

	t.Cleanup(func() { _ = backend.Close() })

	return backend
}

// pattern returns n bytes that differ across chunk boundaries.
func pattern(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i%251) ^ seed
	}

	return out
}

func backends(t *testing.T) map[string]func(t *testing.T) storage.Backend {
	t.Helper()

	return map[string]func(t *testing.T) storage.Backend{
		"memory":         func(_ *testing.T) storage.Backend { return storage.NewMemory() },
		"badger":         newBadger,
		"badger on disk": newBadgerOnDisk,
	}
}

func openTestDB(t *testing.T, backend storage.Backend) storage.Database {
	t.Helper()

	db, err := backend.Open(context.Background(), testDatabase, 1, createItems)
	require.NoError(t, err)

	return db
}

func put(t *testing.T, db storage.Database, key, value string) {
	t.Helper()

	tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
	require.NoError(t, err)
	require.NoError(t, tx.Put(key, []byte(value)))
	require.NoError(t, tx.Commit())
}

func get(t *testing.T, db storage.Database, key string) (string, bool) {
	t.Helper()

	tx, err := db.Begin(context.Background(), testCollection, storage.ReadOnly)
	require.NoError(t, err)

	defer func() { _ = tx.Rollback() }()

	value, found, err := tx.Get(key)
	require.NoError(t, err)

	return string(value), found
}

func all(t *testing.T, db storage.Database) []string {
	t.Helper()

	tx, err := db.Begin(context.Background(), testCollection, storage.ReadOnly)
	require.NoError(t, err)

	defer func() { _ = tx.Rollback() }()

	values, err := tx.GetAll()
	require.NoError(t, err)

	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}

	sort.Strings(out)

	return out
}

func TestBackend_Contract(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("put then get", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "a", "one")

				value, found := get(t, db, "a")
				assert.True(t, found)
				assert.Equal(t, "one", value)
			})

			t.Run("absent key", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				_, found := get(t, db, "missing")
				assert.False(t, found)
			})

			t.Run("put overwrites", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "a", "one")
				put(t, db, "a", "two")

				assert.Equal(t, []string{"two"}, all(t, db))
			})

			t.Run("delete absent key is a no-op", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
				require.NoError(t, err)
				assert.NoError(t, tx.Delete("missing"))
				assert.NoError(t, tx.Commit())
			})

			t.Run("clear removes everything", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "a", "one")
				put(t, db, "b", "two")

				tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
				require.NoError(t, err)
				require.NoError(t, tx.Clear())
				require.NoError(t, tx.Commit())

				assert.Empty(t, all(t, db))
			})

			t.Run("rollback discards writes", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "a", "one")

				tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
				require.NoError(t, err)
				require.NoError(t, tx.Put("a", []byte("two")))
				require.NoError(t, tx.Put("b", []byte("three")))
				require.NoError(t, tx.Rollback())

				assert.Equal(t, []string{"one"}, all(t, db))
			})

			t.Run("rollback after commit is a no-op", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
				require.NoError(t, err)
				require.NoError(t, tx.Put("a", []byte("one")))
				require.NoError(t, tx.Commit())
				assert.NoError(t, tx.Rollback())
				assert.ErrorIs(t, tx.Commit(), storage.ErrTxDone)

				assert.Equal(t, []string{"one"}, all(t, db))
			})

			t.Run("read-only transaction rejects writes", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				tx, err := db.Begin(context.Background(), testCollection, storage.ReadOnly)
				require.NoError(t, err)

				defer func() { _ = tx.Rollback() }()

				assert.ErrorIs(t, tx.Put("a", []byte("one")), storage.ErrReadOnly)
				assert.ErrorIs(t, tx.Delete("a"), storage.ErrReadOnly)
				assert.ErrorIs(t, tx.Clear(), storage.ErrReadOnly)
			})

			t.Run("unknown collection", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				_, err := db.Begin(context.Background(), "unknown", storage.ReadOnly)
				assert.ErrorIs(t, err, storage.ErrCollectionNotFound)
			})

			t.Run("upgrade runs once per version", func(t *testing.T) {
				backend := newBackend(t)
				calls := 0

				upgrade := func(upgrader storage.Upgrader, oldVersion int) error {
					calls++

					return createItems(upgrader, oldVersion)
				}

				for range 3 {
					db, err := backend.Open(context.Background(), testDatabase, 1, upgrade)
					require.NoError(t, err)
					assert.Equal(t, 1, db.Version())
					assert.Equal(t, testDatabase, db.Name())
				}

				assert.Equal(t, 1, calls)
			})

			t.Run("upgrade sees previous collections", func(t *testing.T) {
				backend := newBackend(t)
				db := openTestDB(t, backend)
				put(t, db, "a", "one")

				var (
					seenVersion int
					had         bool
				)

				_, err := backend.Open(context.Background(), testDatabase, 2, func(upgrader storage.Upgrader, oldVersion int) error {
					seenVersion = oldVersion

					var err error
					had, err = upgrader.HasCollection(testCollection)

					return err
				})
				require.NoError(t, err)

				assert.Equal(t, 1, seenVersion)
				assert.True(t, had)
				assert.Equal(t, []string{"one"}, all(t, db))
			})

			t.Run("lower version is rejected", func(t *testing.T) {
				backend := newBackend(t)

				_, err := backend.Open(context.Background(), testDatabase, 2, createItems)
				require.NoError(t, err)

				_, err = backend.Open(context.Background(), testDatabase, 1, createItems)
				assert.ErrorIs(t, err, storage.ErrVersion)
			})

			t.Run("failed upgrade leaves database unversioned", func(t *testing.T) {
				backend := newBackend(t)
				errUpgrade := errors.New("upgrade failed")

				_, err := backend.Open(context.Background(), testDatabase, 1, func(upgrader storage.Upgrader, _ int) error {
					if err := upgrader.CreateCollection(testCollection); err != nil {
						return err
					}

					return errUpgrade
				})
				require.ErrorIs(t, err, errUpgrade)

				db := openTestDB(t, backend)
				put(t, db, "a", "one")
				assert.Equal(t, []string{"one"}, all(t, db))
			})

			t.Run("cancelled context", func(t *testing.T) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()

				_, err := newBackend(t).Open(ctx, testDatabase, 1, createItems)
				assert.ErrorIs(t, err, context.Canceled)
			})
		})
	}
}

func TestMemory_FaultInjection(t *testing.T) {
	errQuota := errors.New("quota exceeded")

	t.Run("commit failure keeps prior value", func(t *testing.T) {
		backend := storage.NewMemory()
		db := openTestDB(t, backend)

		put(t, db, "a", "one")

		backend.FailCommit(errQuota)

		tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
		require.NoError(t, err)
		require.NoError(t, tx.Put("a", []byte("two")))
		assert.ErrorIs(t, tx.Commit(), errQuota)

		backend.FailCommit(nil)

		value, found := get(t, db, "a")
		assert.True(t, found)
		assert.Equal(t, "one", value)
	})

	t.Run("open failure", func(t *testing.T) {
		backend := storage.NewMemory()
		backend.FailOpen(errQuota)

		_, err := backend.Open(context.Background(), testDatabase, 1, createItems)
		assert.ErrorIs(t, err, errQuota)
	})

	t.Run("closed handle", func(t *testing.T) {
		db := openTestDB(t, storage.NewMemory())
		require.NoError(t, db.Close())

		_, err := db.Begin(context.Background(), testCollection, storage.ReadOnly)
		assert.ErrorIs(t, err, storage.ErrClosed)
	})
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "readonly", storage.ReadOnly.String())
	assert.Equal(t, "readwrite", storage.ReadWrite.String())
}

func TestBackend_LargeValues(t *testing.T) {
	large := pattern(7*1024*1024+13, 0x5a)
	exact := pattern(2*storage.BadgerChunkSize, 0x21)

	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("round trip", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "big", string(large))
				put(t, db, "exact", string(exact))
				put(t, db, "small", "tiny")
				put(t, db, "empty", "")

				value, found := get(t, db, "big")
				require.True(t, found)
				assert.True(t, bytes.Equal(large, []byte(value)), "large value corrupted")

				value, found = get(t, db, "exact")
				require.True(t, found)
				assert.True(t, bytes.Equal(exact, []byte(value)), "chunk aligned value corrupted")

				value, found = get(t, db, "empty")
				assert.True(t, found)
				assert.Empty(t, value)

				got := all(t, db)
				require.Len(t, got, 4)
				assert.ElementsMatch(t, []string{string(large), string(exact), "tiny", ""}, got)
			})

			t.Run("shrinking overwrite leaves no stale chunks", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "big", string(large))
				put(t, db, "big", "small again")

				value, found := get(t, db, "big")
				require.True(t, found)
				assert.Equal(t, "small again", value)
				assert.Equal(t, []string{"small again"}, all(t, db))
			})

			t.Run("delete removes every chunk", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "big", string(large))
				put(t, db, "b", "neighbour")

				tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
				require.NoError(t, err)
				require.NoError(t, tx.Delete("big"))
				require.NoError(t, tx.Commit())

				_, found := get(t, db, "big")
				assert.False(t, found)
				assert.Equal(t, []string{"neighbour"}, all(t, db))
			})

			t.Run("ids sharing a prefix stay separate", func(t *testing.T) {
				db := openTestDB(t, newBackend(t))

				put(t, db, "ammu", string(large))
				put(t, db, "ammu_veil", "veil")

				value, found := get(t, db, "ammu_veil")
				require.True(t, found)
				assert.Equal(t, "veil", value)

				value, found = get(t, db, "ammu")
				require.True(t, found)
				assert.Len(t, value, len(large))
			})
		})
	}
}

func TestBadger_RejectsSeparatorInID(t *testing.T) {
	db := openTestDB(t, newBadger(t))

	tx, err := db.Begin(context.Background(), testCollection, storage.ReadWrite)
	require.NoError(t, err)

	defer func() { _ = tx.Rollback() }()

	assert.ErrorIs(t, tx.Put("bad\x00id", []byte("x")), storage.ErrInvalidKey)
}
