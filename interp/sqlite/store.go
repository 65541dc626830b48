// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"code.hybscloud.com/eff"
)

const schema = `
CREATE TABLE IF NOT EXISTS eff_records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	rev        INTEGER NOT NULL,
	data       BLOB,
	PRIMARY KEY (collection, id)
)`

// Store persists records in a single SQLite database.
type Store struct {
	db *sqlx.DB
}

var _ eff.Storage = (*Store)(nil)

// New wraps an open database handle. The eff_records table must
// already exist; Open and EnsureSchema bootstrap it.
func New(db *sqlx.DB) *Store { return &Store{db: db} }

// Open opens the database at dsn and bootstraps the schema.
// Pass ":memory:" for an ephemeral store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite serializes writers; one pooled connection avoids BUSY
	// churn and keeps ":memory:" databases coherent across queries.
	db.SetMaxOpenConns(1)
	s := New(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the records table if it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", classify(err))
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

type recordRow struct {
	ID   string `db:"id"`
	Rev  int64  `db:"rev"`
	Data []byte `db:"data"`
}

// LookupByID fetches one record. A missing row is a soft miss, not an
// error.
func (s *Store) LookupByID(ctx context.Context, collection, key string) (eff.Record, bool, error) {
	const q = `SELECT id, rev, data FROM eff_records WHERE collection = ? AND id = ?`
	var row recordRow
	if err := s.db.GetContext(ctx, &row, q, collection, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return eff.Record{}, false, nil
		}
		return eff.Record{}, false, classify(err)
	}
	return eff.Record{ID: row.ID, Rev: uint64(row.Rev), Data: row.Data}, true, nil
}

// Persist upserts the record and returns it carrying the revision the
// database assigned.
func (s *Store) Persist(ctx context.Context, collection string, rec eff.Record) (eff.Record, error) {
	const q = `INSERT INTO eff_records (collection, id, rev, data) VALUES (?, ?, 1, ?)
	ON CONFLICT (collection, id) DO UPDATE SET rev = rev + 1, data = excluded.data
	RETURNING rev`
	var rev int64
	if err := s.db.QueryRowxContext(ctx, q, collection, rec.ID, rec.Data).Scan(&rev); err != nil {
		return eff.Record{}, classify(err)
	}
	rec.Rev = uint64(rev)
	return rec, nil
}
