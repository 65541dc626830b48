// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory_test

import (
	"context"
	"testing"

	"code.hybscloud.com/eff"
	"code.hybscloud.com/eff/efftest"
	"code.hybscloud.com/eff/interp/memory"
)

func TestStoreLookupMissing(t *testing.T) {
	store := memory.NewStore()
	_, found, err := store.LookupByID(context.Background(), "players", "p-1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found {
		t.Fatal("empty store reported a record")
	}
}

func TestStorePersistBumpsRevision(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	saved, err := store.Persist(ctx, "players", eff.Record{ID: "p-1", Data: []byte("lv1")})
	if err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if saved.Rev != 1 {
		t.Fatalf("first persist got rev %d, want 1", saved.Rev)
	}

	saved.Data = []byte("lv2")
	saved, err = store.Persist(ctx, "players", saved)
	if err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if saved.Rev != 2 {
		t.Fatalf("second persist got rev %d, want 2", saved.Rev)
	}

	rec, found, err := store.LookupByID(ctx, "players", "p-1")
	if err != nil || !found {
		t.Fatalf("lookup got found=%v err=%v, want record", found, err)
	}
	if string(rec.Data) != "lv2" || rec.Rev != 2 {
		t.Fatalf("lookup got %q rev %d, want %q rev 2", rec.Data, rec.Rev, "lv2")
	}
}

func TestStoreCollectionsAreIsolated(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Persist(ctx, "players", eff.Record{ID: "x", Data: []byte("player")}); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if _, found, _ := store.LookupByID(ctx, "guilds", "x"); found {
		t.Fatal("record leaked across collections")
	}
	if store.Len() != 1 {
		t.Fatalf("store holds %d records, want 1", store.Len())
	}
}

func TestStoreSeed(t *testing.T) {
	store := memory.NewStore()
	store.Seed("players", eff.Record{ID: "p-1", Data: []byte("a")}, eff.Record{ID: "p-2", Data: []byte("b")})

	rec, found, _ := store.LookupByID(context.Background(), "players", "p-2")
	if !found || rec.Rev != 1 {
		t.Fatalf("seeded lookup got found=%v rev=%d, want rev 1", found, rec.Rev)
	}
}

// TestStoreThroughInterpreter drives the store through the storage
// interpreter with a read-modify-write program.
func TestStoreThroughInterpreter(t *testing.T) {
	store := memory.NewStore()
	store.Seed("players", eff.Record{ID: "p-1", Data: []byte("lv1")})

	program := eff.LookupBind("players", "p-1", func(out eff.LookupOutcome) eff.Program[eff.Record] {
		rec, ok := out.Found()
		if !ok {
			rec = eff.Record{ID: "p-1"}
		}
		rec.Data = []byte("lv2")
		return eff.PersistRecord("players", rec)
	})

	res := eff.Run(context.Background(), program, eff.NewStorageInterpreter(store))
	saved := efftest.MustOk(t, res)
	if saved.Rev != 2 || string(saved.Data) != "lv2" {
		t.Fatalf("saved rev %d data %q, want rev 2 data %q", saved.Rev, saved.Data, "lv2")
	}
}
