package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	badgerMetaPrefix = "meta/"
	badgerDataPrefix = "data/"

	// BadgerChunkSize stays under the 1 MiB value limit of in-memory badger.
	BadgerChunkSize = 512 << 10

	chunkSeparator   = 0x00
	chunkIndexLength = 4
)

// Badger is an embedded on-disk Backend. Keys are laid out as
// meta/<db>/version, meta/<db>/collection/<name> and
// data/<db>/<collection>/<id>\x00<n>, where each value is split into chunks of
// at most BadgerChunkSize bytes and n is the big-endian uint32 chunk index.
type Badger struct {
	db *badger.DB
	mu sync.Mutex
}

// NewBadger opens a badger store at dir, or a purely in-memory one when inMemory is set.
func NewBadger(dir string, inMemory bool) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithInMemory(inMemory).
		WithLogger(NewBadgerLogger(log.Logger))

	if inMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	return NewBadgerWithOptions(opts)
}

func NewBadgerWithOptions(opts badger.Options) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	return &Badger{db: db}, nil
}

func versionKey(name string) []byte {
	return []byte(badgerMetaPrefix + name + "/version")
}

func collectionKey(name, collection string) []byte {
	return []byte(badgerMetaPrefix + name + "/collection/" + collection)
}

func dataPrefix(name, collection string) []byte {
	return []byte(badgerDataPrefix + name + "/" + collection + "/")
}

func (b *Badger) Open(ctx context.Context, name string, version int, upgrade UpgradeFunc) (Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.db.Update(func(txn *badger.Txn) error {
		stored, err := readVersion(txn, name)
		if err != nil {
			return err
		}

		if version < stored {
			return fmt.Errorf("%w: %s has version %d, requested %d", ErrVersion, name, stored, version)
		}

		if version == stored {
			return nil
		}

		if upgrade != nil {
			if err := upgrade(&badgerUpgrader{txn: txn, name: name}, stored); err != nil {
				return fmt.Errorf("failed to upgrade %s to version %d: %w", name, version, err)
			}
		}

		return txn.Set(versionKey(name), []byte(strconv.Itoa(version)))
	})
	if err != nil {
		return nil, err
	}

	return &badgerDatabase{db: b.db, name: name, version: version}, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func readVersion(txn *badger.Txn, name string) (int, error) {
	item, err := txn.Get(versionKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("read version of %s: %w", name, err)
	}

	var version int

	err = item.Value(func(val []byte) error {
		version, err = strconv.Atoi(string(val))

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("parse version of %s: %w", name, err)
	}

	return version, nil
}

func hasKey(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

type badgerUpgrader struct {
	txn  *badger.Txn
	name string
}

func (u *badgerUpgrader) CreateCollection(collection string) error {
	return u.txn.Set(collectionKey(u.name, collection), []byte{1})
}

func (u *badgerUpgrader) HasCollection(collection string) (bool, error) {
	return hasKey(u.txn, collectionKey(u.name, collection))
}

type badgerDatabase struct {
	db      *badger.DB
	name    string
	version int
}

func (d *badgerDatabase) Name() string {
	return d.name
}

func (d *badgerDatabase) Version() int {
	return d.version
}

func (d *badgerDatabase) Begin(ctx context.Context, collection string, mode Mode) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d.db.IsClosed() {
		return nil, ErrClosed
	}

	txn := d.db.NewTransaction(mode == ReadWrite)

	exists, err := hasKey(txn, collectionKey(d.name, collection))
	if err != nil {
		txn.Discard()

		return nil, fmt.Errorf("lookup collection %s: %w", collection, err)
	}

	if !exists {
		txn.Discard()

		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	return &badgerTx{txn: txn, prefix: dataPrefix(d.name, collection), mode: mode}, nil
}

// Close is a no-op; the underlying store is released by Badger.Close.
func (d *badgerDatabase) Close() error {
	return nil
}

type badgerTx struct {
	txn    *badger.Txn
	prefix []byte
	mode   Mode
	done   bool
}

func (tx *badgerTx) chunkPrefix(id string) []byte {
	key := append(clone(tx.prefix), id...)

	return append(key, chunkSeparator)
}

func (tx *badgerTx) chunkKey(id string, n int) []byte {
	return binary.BigEndian.AppendUint32(tx.chunkPrefix(id), uint32(n))
}

// recordID strips the data prefix and chunk suffix from a chunk key.
func (tx *badgerTx) recordID(key []byte) (string, bool) {
	rest := bytes.TrimPrefix(key, tx.prefix)
	if len(rest) <= chunkIndexLength || rest[len(rest)-chunkIndexLength-1] != chunkSeparator {
		return "", false
	}

	return string(rest[:len(rest)-chunkIndexLength-1]), true
}

func (tx *badgerTx) writable() error {
	if tx.done {
		return ErrTxDone
	}

	if tx.mode != ReadWrite {
		return ErrReadOnly
	}

	return nil
}

func (tx *badgerTx) keys(prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	var keys [][]byte

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}

	return keys
}

func (tx *badgerTx) deleteKeys(prefix []byte) error {
	for _, key := range tx.keys(prefix) {
		if err := tx.txn.Delete(key); err != nil {
			return err
		}
	}

	return nil
}

func (tx *badgerTx) Get(id string) ([]byte, bool, error) {
	if tx.done {
		return nil, false, ErrTxDone
	}

	prefix := tx.chunkPrefix(id)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var (
		value []byte
		found bool
	)

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		chunk, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, false, err
		}

		value = append(value, chunk...)
		found = true
	}

	if found && value == nil {
		value = []byte{}
	}

	return value, found, nil
}

func (tx *badgerTx) Put(id string, value []byte) error {
	if err := tx.writable(); err != nil {
		return err
	}

	if strings.IndexByte(id, chunkSeparator) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidKey, id)
	}

	if err := tx.deleteKeys(tx.chunkPrefix(id)); err != nil {
		return err
	}

	value = clone(value)

	for n := 0; n == 0 || n*BadgerChunkSize < len(value); n++ {
		end := min((n+1)*BadgerChunkSize, len(value))

		if err := tx.txn.Set(tx.chunkKey(id, n), value[n*BadgerChunkSize:end]); err != nil {
			return err
		}
	}

	return nil
}

func (tx *badgerTx) Delete(id string) error {
	if err := tx.writable(); err != nil {
		return err
	}

	return tx.deleteKeys(tx.chunkPrefix(id))
}

func (tx *badgerTx) GetAll() ([][]byte, error) {
	if tx.done {
		return nil, ErrTxDone
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = tx.prefix

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var (
		values  [][]byte
		current []byte
		lastID  string
		started bool
	)

	for it.Seek(tx.prefix); it.ValidForPrefix(tx.prefix); it.Next() {
		id, ok := tx.recordID(it.Item().Key())
		if !ok {
			continue
		}

		if started && id != lastID {
			values = append(values, current)
			current = nil
		}

		chunk, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}

		if current == nil {
			current = make([]byte, 0, len(chunk))
		}

		current = append(current, chunk...)
		lastID = id
		started = true
	}

	if started {
		values = append(values, current)
	}

	return values, nil
}

func (tx *badgerTx) Clear() error {
	if err := tx.writable(); err != nil {
		return err
	}

	return tx.deleteKeys(tx.prefix)
}

func (tx *badgerTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}

	tx.done = true

	if tx.mode != ReadWrite {
		tx.txn.Discard()

		return nil
	}

	return tx.txn.Commit()
}

func (tx *badgerTx) Rollback() error {
	if tx.done {
		return nil
	}

	tx.done = true
	tx.txn.Discard()

	return nil
}

type badgerLogger struct {
	logger zerolog.Logger
}

// NewBadgerLogger routes badger's internal logging through zerolog.
func NewBadgerLogger(logger zerolog.Logger) badger.Logger {
	return &badgerLogger{logger: logger.With().Str("component", "badger").Logger()}
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Trace().Msgf(format, args...)
}
