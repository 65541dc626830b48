// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"
	"time"

	"code.hybscloud.com/kont"
)

// MissReason explains a cache miss.
type MissReason string

const (
	// MissAbsent means the key was never stored or was evicted.
	MissAbsent MissReason = "absent"
	// MissExpired means the key was stored but its TTL elapsed.
	MissExpired MissReason = "expired"
)

// CacheOutcome is the soft result of a cache read.
// A miss is not an interpreter error; programs branch on it.
type CacheOutcome struct {
	hit    bool
	value  []byte
	ttl    time.Duration
	reason MissReason
}

// CacheHit creates an outcome carrying the cached value and remaining TTL.
func CacheHit(value []byte, ttlRemaining time.Duration) CacheOutcome {
	return CacheOutcome{hit: true, value: value, ttl: ttlRemaining}
}

// CacheMiss creates an outcome for a missing or expired key.
func CacheMiss(reason MissReason) CacheOutcome {
	return CacheOutcome{reason: reason}
}

// Hit returns the cached value, its remaining TTL, and true; or zeroes and false.
func (o CacheOutcome) Hit() ([]byte, time.Duration, bool) {
	if o.hit {
		return o.value, o.ttl, true
	}
	return nil, 0, false
}

// Miss returns the miss reason and true, or empty and false.
func (o CacheOutcome) Miss() (MissReason, bool) {
	if !o.hit {
		return o.reason, true
	}
	return "", false
}

// Stored acknowledges a completed cache write.
type Stored struct{}

// CacheGet is the effect operation for reading one cache key.
// Perform(CacheGet{...}) resumes with a CacheOutcome.
type CacheGet struct {
	kont.Phantom[CacheOutcome]
	Key string
}

// NewCacheGet creates a CacheGet effect. Panics on an empty key.
func NewCacheGet(key string) CacheGet {
	mustNonEmpty("key", key)
	return CacheGet{Key: key}
}

func (CacheGet) Category() Category { return CategoryCache }
func (CacheGet) EffectName() string { return "cache.get" }
func (CacheGet) sealedEffect() {}

// CachePut is the effect operation for writing one cache key with a TTL.
// Perform(CachePut{...}) resumes with Stored.
type CachePut struct {
	kont.Phantom[Stored]
	Key   string
	Value []byte
	TTL   time.Duration
}

// NewCachePut creates a CachePut effect.
// Panics on an empty key or non-positive TTL.
func NewCachePut(key string, value []byte, ttl time.Duration) CachePut {
	mustNonEmpty("key", key)
	if ttl <= 0 {
		panic("eff: non-positive ttl")
	}
	return CachePut{Key: key, Value: value, TTL: ttl}
}

func (CachePut) Category() Category { return CategoryCache }
func (CachePut) EffectName() string { return "cache.put" }
func (CachePut) sealedEffect() {}

// GetCached yields a CacheGet effect and resumes with its outcome.
func GetCached(key string) Program[CacheOutcome] {
	return kont.Perform(NewCacheGet(key))
}

// PutCached yields a CachePut effect and resumes with Stored.
func PutCached(key string, value []byte, ttl time.Duration) Program[Stored] {
	return kont.Perform(NewCachePut(key, value, ttl))
}

// CacheStore is the byte-cache capability a cache interpreter drives.
// Get reports a miss as a non-empty MissReason with a nil error; errors
// are reserved for infrastructure failure. Backends that evict silently
// report MissAbsent; backends that expire lazily may report MissExpired.
type CacheStore interface {
	Get(ctx context.Context, key string) (value []byte, ttlRemaining time.Duration, miss MissReason, err error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
