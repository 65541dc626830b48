// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"code.hybscloud.com/eff"
)

const schema = `
CREATE TABLE IF NOT EXISTS eff_records (
	collection TEXT   NOT NULL,
	id         TEXT   NOT NULL,
	rev        BIGINT NOT NULL,
	data       BYTEA,
	PRIMARY KEY (collection, id)
)`

// Store implements eff.Storage backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ eff.Storage = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and ensures the records table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	s := New(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the records table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", classify(err))
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

type recordRow struct {
	ID   string `db:"id"`
	Rev  int64  `db:"rev"`
	Data []byte `db:"data"`
}

// LookupByID implements eff.Storage. A missing row is found=false with
// a nil error.
func (s *Store) LookupByID(ctx context.Context, collection, key string) (eff.Record, bool, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, rev, data FROM eff_records
		WHERE collection = $1 AND id = $2
	`, collection, key)
	if errors.Is(err, sql.ErrNoRows) {
		return eff.Record{}, false, nil
	}
	if err != nil {
		return eff.Record{}, false, classify(err)
	}
	return eff.Record{ID: row.ID, Rev: uint64(row.Rev), Data: row.Data}, true, nil
}

// Persist implements eff.Storage. The upsert bumps the stored revision
// and returns the record as saved.
func (s *Store) Persist(ctx context.Context, collection string, rec eff.Record) (eff.Record, error) {
	var rev int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO eff_records (collection, id, rev, data)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET rev = eff_records.rev + 1, data = EXCLUDED.data
		RETURNING rev
	`, collection, rec.ID, rec.Data).Scan(&rev)
	if err != nil {
		return eff.Record{}, classify(err)
	}
	rec.Rev = uint64(rev)
	return rec, nil
}
