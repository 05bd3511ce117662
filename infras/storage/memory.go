package storage

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

type memoryDatabase struct {
	mu          sync.RWMutex
	version     int
	collections map[string]map[string][]byte
}

// Memory is a process-local Backend. Read-write transactions work on a copy of
// the collection that replaces the original on Commit; transactions on the same
// database are serialized by a RW lock held until Commit or Rollback.
type Memory struct {
	mu        sync.Mutex
	databases map[string]*memoryDatabase

	faultMu   sync.Mutex
	openErr   error
	commitErr error
}

func NewMemory() *Memory {
	return &Memory{
		databases: make(map[string]*memoryDatabase),
	}
}

// FailOpen makes every later Open fail with err. A nil err restores normal behavior.
func (m *Memory) FailOpen(err error) {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()

	m.openErr = err
}

// FailCommit makes every later read-write Commit fail with err and discard its writes.
func (m *Memory) FailCommit(err error) {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()

	m.commitErr = err
}

func (m *Memory) faults() (openErr, commitErr error) {
	m.faultMu.Lock()
	defer m.faultMu.Unlock()

	return m.openErr, m.commitErr
}

func (m *Memory) Open(ctx context.Context, name string, version int, upgrade UpgradeFunc) (Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if openErr, _ := m.faults(); openErr != nil {
		return nil, openErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	db, ok := m.databases[name]
	if !ok {
		db = &memoryDatabase{collections: make(map[string]map[string][]byte)}
		m.databases[name] = db
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if version < db.version {
		return nil, fmt.Errorf("%w: %s has version %d, requested %d", ErrVersion, name, db.version, version)
	}

	if version > db.version {
		upgrader := &memoryUpgrader{db: db, created: make(map[string]struct{})}

		if upgrade != nil {
			if err := upgrade(upgrader, db.version); err != nil {
				return nil, fmt.Errorf("failed to upgrade %s to version %d: %w", name, version, err)
			}
		}

		for collection := range upgrader.created {
			db.collections[collection] = make(map[string][]byte)
		}

		db.version = version
	}

	return &memoryHandle{backend: m, db: db, name: name, version: version}, nil
}

func (m *Memory) Close() error {
	return nil
}

type memoryUpgrader struct {
	db      *memoryDatabase
	created map[string]struct{}
}

func (u *memoryUpgrader) CreateCollection(name string) error {
	if _, ok := u.db.collections[name]; ok {
		return nil
	}

	u.created[name] = struct{}{}

	return nil
}

func (u *memoryUpgrader) HasCollection(name string) (bool, error) {
	_, ok := u.db.collections[name]
	if !ok {
		_, ok = u.created[name]
	}

	return ok, nil
}

type memoryHandle struct {
	backend *Memory
	db      *memoryDatabase
	name    string
	version int

	mu     sync.Mutex
	closed bool
}

func (h *memoryHandle) Name() string {
	return h.name
}

func (h *memoryHandle) Version() int {
	return h.version
}

func (h *memoryHandle) Begin(ctx context.Context, collection string, mode Mode) (Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}

	if mode == ReadWrite {
		h.db.mu.Lock()
	} else {
		h.db.mu.RLock()
	}

	records, ok := h.db.collections[collection]
	if !ok {
		h.unlock(mode)

		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	tx := &memoryTx{handle: h, collection: collection, mode: mode, records: records}
	if mode == ReadWrite {
		tx.records = maps.Clone(records)
	}

	return tx, nil
}

func (h *memoryHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	return nil
}

func (h *memoryHandle) unlock(mode Mode) {
	if mode == ReadWrite {
		h.db.mu.Unlock()
	} else {
		h.db.mu.RUnlock()
	}
}

type memoryTx struct {
	handle     *memoryHandle
	collection string
	mode       Mode
	records    map[string][]byte
	done       bool
}

func (tx *memoryTx) writable() error {
	if tx.done {
		return ErrTxDone
	}

	if tx.mode != ReadWrite {
		return ErrReadOnly
	}

	return nil
}

func (tx *memoryTx) Get(key string) ([]byte, bool, error) {
	if tx.done {
		return nil, false, ErrTxDone
	}

	value, ok := tx.records[key]

	return clone(value), ok, nil
}

func (tx *memoryTx) Put(key string, value []byte) error {
	if err := tx.writable(); err != nil {
		return err
	}

	tx.records[key] = clone(value)

	return nil
}

func (tx *memoryTx) Delete(key string) error {
	if err := tx.writable(); err != nil {
		return err
	}

	delete(tx.records, key)

	return nil
}

func (tx *memoryTx) GetAll() ([][]byte, error) {
	if tx.done {
		return nil, ErrTxDone
	}

	values := make([][]byte, 0, len(tx.records))
	for _, value := range tx.records {
		values = append(values, clone(value))
	}

	return values, nil
}

func (tx *memoryTx) Clear() error {
	if err := tx.writable(); err != nil {
		return err
	}

	clear(tx.records)

	return nil
}

func (tx *memoryTx) Commit() error {
	if tx.done {
		return ErrTxDone
	}

	tx.done = true
	defer tx.handle.unlock(tx.mode)

	if tx.mode != ReadWrite {
		return nil
	}

	if _, err := tx.handle.backend.faults(); err != nil {
		return err
	}

	tx.handle.db.collections[tx.collection] = tx.records

	return nil
}

func (tx *memoryTx) Rollback() error {
	if tx.done {
		return nil
	}

	tx.done = true
	tx.handle.unlock(tx.mode)

	return nil
}
