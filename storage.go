// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"

	"code.hybscloud.com/kont"
)

// Record is the storage unit: an identified, versioned, opaque payload.
// Rev is assigned by the store; callers persist with the Rev they read
// and receive the bumped Rev back.
type Record struct {
	ID   string
	Rev  uint64
	Data []byte
}

// LookupOutcome is the soft result of a storage lookup.
// A missing record is not an interpreter error; programs branch on it.
type LookupOutcome struct {
	found bool
	rec   Record
}

// LookupFound creates an outcome carrying the found record.
func LookupFound(rec Record) LookupOutcome {
	return LookupOutcome{found: true, rec: rec}
}

// LookupNotFound creates an outcome for a missing record.
func LookupNotFound() LookupOutcome {
	return LookupOutcome{}
}

// Found returns the record and true, or zero and false.
func (o LookupOutcome) Found() (Record, bool) {
	if o.found {
		return o.rec, true
	}
	return Record{}, false
}

// NotFound returns true if the lookup missed.
func (o LookupOutcome) NotFound() bool {
	return !o.found
}

// Lookup is the effect operation for fetching one record by identifier.
// Perform(Lookup{...}) resumes with a LookupOutcome.
type Lookup struct {
	kont.Phantom[LookupOutcome]
	Collection string
	Key        string
}

// NewLookup creates a Lookup effect. Panics on empty identifiers.
func NewLookup(collection, key string) Lookup {
	mustNonEmpty("collection", collection)
	mustNonEmpty("key", key)
	return Lookup{Collection: collection, Key: key}
}

func (Lookup) Category() Category { return CategoryStorage }
func (Lookup) EffectName() string { return "storage.lookup" }
func (Lookup) sealedEffect() {}

// Persist is the effect operation for writing one record.
// Perform(Persist{...}) resumes with the record as saved by the store
// (revision assigned or bumped).
type Persist struct {
	kont.Phantom[Record]
	Collection string
	Record     Record
}

// NewPersist creates a Persist effect. Panics on empty identifiers.
func NewPersist(collection string, rec Record) Persist {
	mustNonEmpty("collection", collection)
	mustNonEmpty("record id", rec.ID)
	return Persist{Collection: collection, Record: rec}
}

func (Persist) Category() Category { return CategoryStorage }
func (Persist) EffectName() string { return "storage.persist" }
func (Persist) sealedEffect() {}

// LookupRecord yields a Lookup effect and resumes with its outcome.
func LookupRecord(collection, key string) Program[LookupOutcome] {
	return kont.Perform(NewLookup(collection, key))
}

// PersistRecord yields a Persist effect and resumes with the saved record.
func PersistRecord(collection string, rec Record) Program[Record] {
	return kont.Perform(NewPersist(collection, rec))
}

// Storage is the record-store capability a storage interpreter drives.
// LookupByID reports a missing record as found=false with a nil error;
// errors are reserved for infrastructure failure.
type Storage interface {
	LookupByID(ctx context.Context, collection, key string) (Record, bool, error)
	Persist(ctx context.Context, collection string, rec Record) (Record, error)
}
