package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"keepsake/infras/postgres"

	"github.com/jmoiron/sqlx"
)

const (
	queryAdvisoryLock = `SELECT pg_advisory_xact_lock(hashtext($1))`
	queryEnsureDB     = `INSERT INTO kv_databases (name, version) VALUES ($1, 0) ON CONFLICT (name) DO NOTHING`
	querySelectVer    = `SELECT version FROM kv_databases WHERE name = $1`
	queryUpdateVer    = `UPDATE kv_databases SET version = $2, updated_at = NOW() WHERE name = $1`
	queryCreateColl   = `INSERT INTO kv_collections (database, name) VALUES ($1, $2) ON CONFLICT (database, name) DO NOTHING`
	queryHasColl      = `SELECT EXISTS (SELECT 1 FROM kv_collections WHERE database = $1 AND name = $2)`
	queryGetRecord    = `SELECT value FROM kv_records WHERE database = $1 AND collection = $2 AND id = $3`
	queryPutRecord    = `INSERT INTO kv_records (database, collection, id, value) VALUES ($1, $2, $3, $4)
		ON CONFLICT (database, collection, id) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	queryDeleteRecord = `DELETE FROM kv_records WHERE database = $1 AND collection = $2 AND id = $3`
	queryGetAll       = `SELECT value FROM kv_records WHERE database = $1 AND collection = $2`
	queryClear        = `DELETE FROM kv_records WHERE database = $1 AND collection = $2`
)

// Postgres is a Backend over the kv_* tables created by the migrations in
// migrations/postgres. Schema upgrades are serialized with a transaction-level
// advisory lock keyed by the database name.
type Postgres struct {
	conn *postgres.Connection
}

func NewPostgres(conn *postgres.Connection) *Postgres {
	return &Postgres{conn: conn}
}

func (p *Postgres) Open(ctx context.Context, name string, version int, upgrade UpgradeFunc) (_ Database, err error) {
	tx, err := p.conn.Write.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin upgrade transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, queryAdvisoryLock, name); err != nil {
		return nil, fmt.Errorf("acquire upgrade lock: %w", err)
	}

	if _, err = tx.ExecContext(ctx, queryEnsureDB, name); err != nil {
		return nil, fmt.Errorf("register database %s: %w", name, err)
	}

	var stored int
	if err = tx.GetContext(ctx, &stored, querySelectVer, name); err != nil {
		return nil, fmt.Errorf("read version of %s: %w", name, err)
	}

	if version < stored {
		err = fmt.Errorf("%w: %s has version %d, requested %d", ErrVersion, name, stored, version)

		return nil, err
	}

	if version > stored {
		if upgrade != nil {
			if err = upgrade(&postgresUpgrader{ctx: ctx, tx: tx, name: name}, stored); err != nil {
				return nil, fmt.Errorf("failed to upgrade %s to version %d: %w", name, version, err)
			}
		}

		if _, err = tx.ExecContext(ctx, queryUpdateVer, name, version); err != nil {
			return nil, fmt.Errorf("write version of %s: %w", name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upgrade of %s: %w", name, err)
	}

	return &postgresDatabase{conn: p.conn, name: name, version: version}, nil
}

func (p *Postgres) Close() error {
	return p.conn.Close()
}

type postgresUpgrader struct {
	ctx  context.Context //nolint:containedctx
	tx   *sqlx.Tx
	name string
}

func (u *postgresUpgrader) CreateCollection(collection string) error {
	if _, err := u.tx.ExecContext(u.ctx, queryCreateColl, u.name, collection); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}

	return nil
}

func (u *postgresUpgrader) HasCollection(collection string) (bool, error) {
	var exists bool
	if err := u.tx.GetContext(u.ctx, &exists, queryHasColl, u.name, collection); err != nil {
		return false, fmt.Errorf("lookup collection %s: %w", collection, err)
	}

	return exists, nil
}

type postgresDatabase struct {
	conn    *postgres.Connection
	name    string
	version int
}

func (d *postgresDatabase) Name() string {
	return d.name
}

func (d *postgresDatabase) Version() int {
	return d.version
}

func (d *postgresDatabase) Begin(ctx context.Context, collection string, mode Mode) (Tx, error) {
	db := d.conn.Read
	if mode == ReadWrite {
		db = d.conn.Write
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: mode == ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin %s transaction: %w", mode, err)
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, queryHasColl, d.name, collection); err != nil {
		_ = tx.Rollback()

		return nil, fmt.Errorf("lookup collection %s: %w", collection, err)
	}

	if !exists {
		_ = tx.Rollback()

		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	return &postgresTx{ctx: ctx, tx: tx, database: d.name, collection: collection, mode: mode}, nil
}

// Close is a no-op; the pools are released by Postgres.Close.
func (d *postgresDatabase) Close() error {
	return nil
}

type postgresTx struct {
	ctx        context.Context //nolint:containedctx
	tx         *sqlx.Tx
	database   string
	collection string
	mode       Mode
	done       bool
}

func (t *postgresTx) writable() error {
	if t.done {
		return ErrTxDone
	}

	if t.mode != ReadWrite {
		return ErrReadOnly
	}

	return nil
}

func (t *postgresTx) Get(id string) ([]byte, bool, error) {
	if t.done {
		return nil, false, ErrTxDone
	}

	var value []byte

	err := t.tx.GetContext(t.ctx, &value, queryGetRecord, t.database, t.collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}

func (t *postgresTx) Put(id string, value []byte) error {
	if err := t.writable(); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(t.ctx, queryPutRecord, t.database, t.collection, id, value)

	return err
}

func (t *postgresTx) Delete(id string) error {
	if err := t.writable(); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(t.ctx, queryDeleteRecord, t.database, t.collection, id)

	return err
}

func (t *postgresTx) GetAll() ([][]byte, error) {
	if t.done {
		return nil, ErrTxDone
	}

	var values [][]byte
	if err := t.tx.SelectContext(t.ctx, &values, queryGetAll, t.database, t.collection); err != nil {
		return nil, err
	}

	return values, nil
}

func (t *postgresTx) Clear() error {
	if err := t.writable(); err != nil {
		return err
	}

	_, err := t.tx.ExecContext(t.ctx, queryClear, t.database, t.collection)

	return err
}

func (t *postgresTx) Commit() error {
	if t.done {
		return ErrTxDone
	}

	t.done = true

	return t.tx.Commit()
}

func (t *postgresTx) Rollback() error {
	if t.done {
		return nil
	}

	t.done = true

	return t.tx.Rollback()
}
