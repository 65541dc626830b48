// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff_test

import (
	"testing"
	"time"

	"code.hybscloud.com/eff"
	"code.hybscloud.com/eff/efftest"
)

func TestLookupBind(t *testing.T) {
	program := eff.LookupBind("users", "u-1", func(out eff.LookupOutcome) eff.Program[string] {
		rec, ok := out.Found()
		if !ok {
			return eff.Done("missing")
		}
		return eff.Done(string(rec.Data))
	})

	st := efftest.Start(program)
	lk := st.Effect().(eff.Lookup)
	if lk.Collection != "users" || lk.Key != "u-1" {
		t.Fatalf("lookup got %s/%s, want users/u-1", lk.Collection, lk.Key)
	}
	st.Resume(eff.LookupFound(eff.Record{ID: "u-1", Data: []byte("alice")}))
	if got := st.Value(); got != "alice" {
		t.Fatalf("program got %q, want %q", got, "alice")
	}
}

func TestPersistThen(t *testing.T) {
	rec := eff.Record{ID: "u-2", Data: []byte("bob")}
	program := eff.PersistThen("users", rec, eff.Done("saved"))

	st := efftest.Start(program)
	p := st.Effect().(eff.Persist)
	if p.Collection != "users" || p.Record.ID != "u-2" {
		t.Fatalf("persist got %s/%s, want users/u-2", p.Collection, p.Record.ID)
	}
	st.Resume(eff.Record{ID: "u-2", Rev: 1, Data: []byte("bob")})
	if got := st.Value(); got != "saved" {
		t.Fatalf("program got %q, want %q", got, "saved")
	}
}

func TestGetBind(t *testing.T) {
	program := eff.GetBind("sessions/s-1", func(out eff.CacheOutcome) eff.Program[bool] {
		_, _, hit := out.Hit()
		return eff.Done(hit)
	})

	st := efftest.Start(program)
	if key := st.Effect().(eff.CacheGet).Key; key != "sessions/s-1" {
		t.Fatalf("get key got %q, want %q", key, "sessions/s-1")
	}
	st.Resume(eff.CacheMiss(eff.MissAbsent))
	if st.Value() {
		t.Fatal("program got hit, want miss")
	}
}

func TestPutThen(t *testing.T) {
	program := eff.PutThen("sessions/s-1", []byte("payload"), 30*time.Second, eff.Done(1))

	st := efftest.Start(program)
	put := st.Effect().(eff.CachePut)
	if put.Key != "sessions/s-1" || put.TTL != 30*time.Second {
		t.Fatalf("put got (%q, %v), want (sessions/s-1, 30s)", put.Key, put.TTL)
	}
	st.Resume(eff.Stored{})
	if got := st.Value(); got != 1 {
		t.Fatalf("program got %d, want 1", got)
	}
}

func TestPublishBind(t *testing.T) {
	program := eff.PublishBind("orders", []byte("{}"), map[string]string{"trace": "t-1"},
		func(r eff.PublishReceipt) eff.Program[string] {
			return eff.Done(r.MessageID)
		})

	st := efftest.Start(program)
	pub := st.Effect().(eff.Publish)
	if pub.Topic != "orders" || pub.Properties["trace"] != "t-1" {
		t.Fatalf("publish got (%q, %v)", pub.Topic, pub.Properties)
	}
	st.Resume(eff.PublishReceipt{MessageID: "m-7"})
	if got := st.Value(); got != "m-7" {
		t.Fatalf("program got %q, want %q", got, "m-7")
	}
}

func TestConsumeBind(t *testing.T) {
	program := eff.ConsumeBind("orders-sub", 2*time.Second, func(out eff.ConsumeOutcome) eff.Program[string] {
		env, ok := out.Delivered()
		if !ok {
			return eff.Done("")
		}
		return eff.Done(env.ID)
	})

	st := efftest.Start(program)
	cons := st.Effect().(eff.Consume)
	if cons.Subscription != "orders-sub" || cons.Timeout != 2*time.Second {
		t.Fatalf("consume got (%q, %v)", cons.Subscription, cons.Timeout)
	}
	st.Resume(eff.NoDelivery())
	if got := st.Value(); got != "" {
		t.Fatalf("program got %q, want empty", got)
	}
}

func TestSendThenReceive(t *testing.T) {
	program := eff.SendThenReceive("ping")

	st := efftest.Start(program)
	if text := st.Effect().(eff.SocketSend).Text; text != "ping" {
		t.Fatalf("send text got %q, want %q", text, "ping")
	}
	st.Resume(eff.Sent{})
	if _, ok := st.Effect().(eff.SocketReceive); !ok {
		t.Fatalf("second effect is %T, want eff.SocketReceive", st.Effect())
	}
	st.Resume("pong")
	if got := st.Value(); got != "pong" {
		t.Fatalf("program got %q, want %q", got, "pong")
	}
}

func TestVerifyBind(t *testing.T) {
	program := eff.VerifyBind("tok-1", func(out eff.TokenOutcome) eff.Program[string] {
		claims, ok := out.Valid()
		if !ok {
			return eff.Done("anonymous")
		}
		sub, _ := claims["sub"].(string)
		return eff.Done(sub)
	})

	st := efftest.Start(program)
	if token := st.Effect().(eff.VerifyToken).Token; token != "tok-1" {
		t.Fatalf("verify token got %q, want %q", token, "tok-1")
	}
	st.Resume(eff.TokenValid(eff.Claims{"sub": "alice"}))
	if got := st.Value(); got != "alice" {
		t.Fatalf("program got %q, want %q", got, "alice")
	}
}
