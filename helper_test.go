// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"code.hybscloud.com/eff"
)

// fakeStore is an in-test Storage backed by a map.
// Keys are collection-qualified. A non-nil err fails every call.
type fakeStore struct {
	records  map[string]eff.Record
	lookups  int
	persists int
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]eff.Record)}
}

func (s *fakeStore) put(collection string, rec eff.Record) {
	s.records[collection+"/"+rec.ID] = rec
}

func (s *fakeStore) LookupByID(_ context.Context, collection, key string) (eff.Record, bool, error) {
	s.lookups++
	if s.err != nil {
		return eff.Record{}, false, s.err
	}
	rec, ok := s.records[collection+"/"+key]
	return rec, ok, nil
}

func (s *fakeStore) Persist(_ context.Context, collection string, rec eff.Record) (eff.Record, error) {
	s.persists++
	if s.err != nil {
		return eff.Record{}, s.err
	}
	rec.Rev = s.records[collection+"/"+rec.ID].Rev + 1
	s.records[collection+"/"+rec.ID] = rec
	return rec, nil
}

// fakeCache is an in-test CacheStore. Entries never expire on their
// own; tests flip expired to simulate TTL expiry.
type fakeCache struct {
	entries map[string]fakeCacheEntry
	gets    int
	puts    int
	err     error
}

type fakeCacheEntry struct {
	value   []byte
	ttl     time.Duration
	expired bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]fakeCacheEntry)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, time.Duration, eff.MissReason, error) {
	c.gets++
	if c.err != nil {
		return nil, 0, "", c.err
	}
	ent, ok := c.entries[key]
	if !ok {
		return nil, 0, eff.MissAbsent, nil
	}
	if ent.expired {
		return nil, 0, eff.MissExpired, nil
	}
	return ent.value, ent.ttl, "", nil
}

func (c *fakeCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.puts++
	if c.err != nil {
		return c.err
	}
	c.entries[key] = fakeCacheEntry{value: value, ttl: ttl}
	return nil
}

// fakeBroker is an in-test Broker with a single FIFO queue shared by
// all subscriptions. Nacked messages go back to the queue head.
type fakeBroker struct {
	queue  []eff.Envelope
	acked  []string
	nacked []string
	seq    int
	err    error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{}
}

func (b *fakeBroker) Publish(_ context.Context, topic string, payload []byte, properties map[string]string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.seq++
	id := fmt.Sprintf("m-%d", b.seq)
	b.queue = append(b.queue, eff.Envelope{ID: id, Topic: topic, Payload: payload, Properties: properties})
	return id, nil
}

func (b *fakeBroker) Consume(_ context.Context, _ string, _ time.Duration) (eff.Envelope, bool, error) {
	if b.err != nil {
		return eff.Envelope{}, false, b.err
	}
	if len(b.queue) == 0 {
		return eff.Envelope{}, false, nil
	}
	env := b.queue[0]
	b.queue = b.queue[1:]
	return env, true, nil
}

func (b *fakeBroker) Ack(_ context.Context, messageID string) error {
	if b.err != nil {
		return b.err
	}
	b.acked = append(b.acked, messageID)
	return nil
}

func (b *fakeBroker) Nack(_ context.Context, messageID string, _ time.Duration) error {
	if b.err != nil {
		return b.err
	}
	b.nacked = append(b.nacked, messageID)
	return nil
}

// fakeConn is an in-test Conn. Reads come from inbox; writes append
// to sent. Closing records the close frame and fails later I/O with
// the recorded code, the way a real transport surfaces a peer close.
type fakeConn struct {
	open   bool
	inbox  []string
	sent   []string
	code   int
	reason string
}

func newFakeConn(inbox ...string) *fakeConn {
	return &fakeConn{open: true, inbox: inbox}
}

func (c *fakeConn) IsOpen() bool { return c.open }

func (c *fakeConn) SendText(_ context.Context, text string) error {
	if !c.open {
		return &eff.SocketClosedError{Code: c.code, Reason: c.reason}
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeConn) ReceiveText(_ context.Context) (string, error) {
	if !c.open {
		return "", &eff.SocketClosedError{Code: c.code, Reason: c.reason}
	}
	if len(c.inbox) == 0 {
		return "", &eff.SocketClosedError{Code: 1006, Reason: "no data"}
	}
	text := c.inbox[0]
	c.inbox = c.inbox[1:]
	return text, nil
}

func (c *fakeConn) Close(code int, reason string) error {
	if !c.open {
		return &eff.SocketClosedError{Code: c.code, Reason: c.reason}
	}
	c.open = false
	c.code = code
	c.reason = reason
	return nil
}

// fakeAuthority is an in-test Authority with a static token table and
// an allow-all-unless-denied access rule.
type fakeAuthority struct {
	tokens map[string]eff.Claims
	denied map[string]string
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		tokens: make(map[string]eff.Claims),
		denied: make(map[string]string),
	}
}

func (a *fakeAuthority) VerifyToken(_ context.Context, token string) eff.TokenOutcome {
	claims, ok := a.tokens[token]
	if !ok {
		return eff.TokenInvalid("unknown token")
	}
	return eff.TokenValid(claims)
}

func (a *fakeAuthority) CheckAccess(_ context.Context, subject, action, resource string) eff.AccessOutcome {
	if reason, ok := a.denied[subject+":"+action+":"+resource]; ok {
		return eff.AccessDenied(reason)
	}
	return eff.AccessGranted()
}

// mustPanic runs f and returns the recovered panic value, failing the
// test when f returns normally.
func mustPanic(t *testing.T, f func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatal("expected panic")
		}
	}()
	f()
	return nil
}
