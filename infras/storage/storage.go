// Package storage provides the transactional key-value primitive that the
// photo record store persists into.
//
// A Backend opens named, versioned databases. Each database holds named
// collections created by the upgrade callback, and every read or write goes
// through a transaction scoped to a single collection.
package storage

import (
	"context"
	"errors"
)

type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "readwrite"
	}

	return "readonly"
}

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrReadOnly           = errors.New("write in read-only transaction")
	ErrVersion            = errors.New("requested version is lower than stored version")
	ErrTxDone             = errors.New("transaction already finished")
	ErrClosed             = errors.New("database is closed")
	ErrUnknownDriver      = errors.New("unknown storage driver")
	ErrInvalidKey         = errors.New("invalid record key")
)

// Upgrader is handed to an UpgradeFunc while the backend holds the upgrade lock.
type Upgrader interface {
	CreateCollection(name string) error
	HasCollection(name string) (bool, error)
}

// UpgradeFunc migrates a database from oldVersion to the version passed to Open.
// A fresh database reports oldVersion 0.
type UpgradeFunc func(upgrader Upgrader, oldVersion int) error

type Backend interface {
	// Open returns a handle to the named database, running upgrade once when
	// the stored version is lower than version.
	Open(ctx context.Context, name string, version int, upgrade UpgradeFunc) (Database, error)
	Close() error
}

type Database interface {
	Name() string
	Version() int
	Begin(ctx context.Context, collection string, mode Mode) (Tx, error)
	Close() error
}

// Tx is a transaction scoped to one collection. Writes become visible to other
// transactions only after Commit. Rollback after Commit is a no-op.
type Tx interface {
	Get(key string) (value []byte, found bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	GetAll() ([][]byte, error)
	Clear() error
	Commit() error
	Rollback() error
}

func clone(value []byte) []byte {
	if value == nil {
		return nil
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out
}
