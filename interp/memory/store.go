// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory

import (
	"context"
	"sync"

	"code.hybscloud.com/eff"
)

// Store is an in-memory record store with optimistic-looking revision
// numbers: every persist bumps the stored revision by one, starting
// from 1. It implements eff.Storage and never returns an error.
type Store struct {
	mu      sync.Mutex
	records map[string]eff.Record
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[string]eff.Record)}
}

func storeKey(collection, id string) string {
	return collection + "/" + id
}

// Seed inserts records directly, assigning revision 1 to each.
// Intended for test fixtures and demos.
func (s *Store) Seed(collection string, recs ...eff.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		rec.Rev = 1
		s.records[storeKey(collection, rec.ID)] = rec
	}
}

// LookupByID implements eff.Storage.
func (s *Store) LookupByID(_ context.Context, collection, key string) (eff.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[storeKey(collection, key)]
	return rec, ok, nil
}

// Persist implements eff.Storage. The stored revision wins: the
// caller's Rev is ignored and the bumped revision is returned.
func (s *Store) Persist(_ context.Context, collection string, rec eff.Record) (eff.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := storeKey(collection, rec.ID)
	rec.Rev = s.records[k].Rev + 1
	s.records[k] = rec
	return rec, nil
}

// Len reports the number of stored records across all collections.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
