// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/eff"
	"code.hybscloud.com/eff/efftest"
	"code.hybscloud.com/eff/interp/memory"
)

func TestCacheHitCarriesRemainingTTL(t *testing.T) {
	cache := memory.NewCache()
	ctx := context.Background()

	if err := cache.Put(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	value, remaining, miss, err := cache.Get(ctx, "k")
	if err != nil || miss != "" {
		t.Fatalf("get got miss=%q err=%v, want hit", miss, err)
	}
	if string(value) != "v" {
		t.Fatalf("got %q, want %q", value, "v")
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Fatalf("remaining ttl %v out of range (0, 1m]", remaining)
	}
}

func TestCacheMissAbsent(t *testing.T) {
	cache := memory.NewCache()
	_, _, miss, err := cache.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if miss != eff.MissAbsent {
		t.Fatalf("got miss %q, want %q", miss, eff.MissAbsent)
	}
}

func TestCacheMissExpired(t *testing.T) {
	cache := memory.NewCache()
	ctx := context.Background()

	if err := cache.Put(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, _, miss, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if miss != eff.MissExpired {
		t.Fatalf("got miss %q, want %q", miss, eff.MissExpired)
	}
	if cache.Len() != 0 {
		t.Fatal("expired entry not collected on observation")
	}

	// Once collected, the key is indistinguishable from never stored.
	_, _, miss, _ = cache.Get(ctx, "k")
	if miss != eff.MissAbsent {
		t.Fatalf("second get got miss %q, want %q", miss, eff.MissAbsent)
	}
}

func TestCacheOverwriteResetsTTL(t *testing.T) {
	cache := memory.NewCache()
	ctx := context.Background()

	cache.Put(ctx, "k", []byte("old"), time.Millisecond)
	cache.Put(ctx, "k", []byte("new"), time.Minute)
	time.Sleep(5 * time.Millisecond)

	value, _, miss, _ := cache.Get(ctx, "k")
	if miss != "" || string(value) != "new" {
		t.Fatalf("got value=%q miss=%q, want fresh hit", value, miss)
	}
}

// TestCacheThroughInterpreter drives the cache through the cache
// interpreter with a cache-aside program.
func TestCacheThroughInterpreter(t *testing.T) {
	cache := memory.NewCache()
	it := eff.NewCacheInterpreter(cache)
	ctx := context.Background()

	warm := func() eff.Program[string] {
		return eff.GetBind("greeting", func(out eff.CacheOutcome) eff.Program[string] {
			if value, _, ok := out.Hit(); ok {
				return eff.Done("hit:" + string(value))
			}
			return eff.PutThen("greeting", []byte("hello"), time.Minute, eff.Done("filled"))
		})
	}

	if got := efftest.MustOk(t, eff.Run(ctx, warm(), it)); got != "filled" {
		t.Fatalf("cold run got %q, want %q", got, "filled")
	}
	if got := efftest.MustOk(t, eff.Run(ctx, warm(), it)); got != "hit:hello" {
		t.Fatalf("warm run got %q, want %q", got, "hit:hello")
	}
}
