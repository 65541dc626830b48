// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/eff"
)

// Hub is an in-memory pub/sub broker implementing eff.Broker.
//
// Topics fan out: every subscription bound to a topic receives its own
// copy of each published message. The publish receipt carries the
// publish id m-<n>; each delivered copy carries the subscription-scoped
// id m-<n>@<subscription>, which is the id to ack or nack. A publish
// with no bound subscriptions is dropped but still receipted.
//
// Consumed messages stay in flight until acked or nacked. A nack with
// delay d makes the copy consumable again after d; zero delay means
// immediately.
type Hub struct {
	mu       sync.Mutex
	seq      uint64
	topics   map[string]map[string]*subscription
	subs     map[string]*subscription
	inflight map[string]inflightDelivery
}

type subscription struct {
	name    string
	topic   string
	pending []eff.Envelope
	delayed []delayedEnvelope
}

type delayedEnvelope struct {
	env     eff.Envelope
	readyAt time.Time
}

type inflightDelivery struct {
	sub *subscription
	env eff.Envelope
}

// NewHub creates a Hub with no topics or subscriptions.
func NewHub() *Hub {
	return &Hub{
		topics:   make(map[string]map[string]*subscription),
		subs:     make(map[string]*subscription),
		inflight: make(map[string]inflightDelivery),
	}
}

// Subscribe binds a named subscription to a topic, creating either as
// needed. Rebinding an existing subscription moves it to the new topic;
// already queued copies stay consumable.
func (h *Hub) Subscribe(name, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[name]
	if !ok {
		sub = newSubscription(name)
		h.subs[name] = sub
	} else if sub.topic != "" {
		delete(h.topics[sub.topic], name)
	}
	sub.topic = topic
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]*subscription)
	}
	h.topics[topic][name] = sub
}

func newSubscription(name string) *subscription {
	return &subscription{name: name}
}

// Publish implements eff.Broker.
func (h *Hub) Publish(_ context.Context, topic string, payload []byte, properties map[string]string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	id := fmt.Sprintf("m-%d", h.seq)
	for _, sub := range h.topics[topic] {
		sub.pending = append(sub.pending, eff.Envelope{
			ID:         id + "@" + sub.name,
			Topic:      topic,
			Payload:    payload,
			Properties: properties,
		})
	}
	return id, nil
}

// Consume implements eff.Broker. It polls the subscription with
// adaptive backoff until a copy is consumable, the timeout drains, or
// ctx is done. A drained timeout is ok=false with a nil error.
func (h *Hub) Consume(ctx context.Context, subscription string, timeout time.Duration) (eff.Envelope, bool, error) {
	deadline := time.Now().Add(timeout)
	var bo iox.Backoff
	for {
		env, ok, err := h.tryConsume(subscription)
		if err != nil || ok {
			return env, ok, err
		}
		if err := ctx.Err(); err != nil {
			return eff.Envelope{}, false, err
		}
		if !time.Now().Before(deadline) {
			return eff.Envelope{}, false, nil
		}
		bo.Wait()
	}
}

func (h *Hub) tryConsume(name string) (eff.Envelope, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[name]
	if !ok {
		return eff.Envelope{}, false, fmt.Errorf("memory: unknown subscription %q", name)
	}
	sub.promoteDelayed(time.Now())
	if len(sub.pending) == 0 {
		return eff.Envelope{}, false, nil
	}
	env := sub.pending[0]
	sub.pending = sub.pending[1:]
	h.inflight[env.ID] = inflightDelivery{sub: sub, env: env}
	return env, true, nil
}

// promoteDelayed moves copies whose redelivery time has passed back to
// the pending queue, preserving nack order.
func (sub *subscription) promoteDelayed(now time.Time) {
	if len(sub.delayed) == 0 {
		return
	}
	kept := sub.delayed[:0]
	for _, d := range sub.delayed {
		if d.readyAt.After(now) {
			kept = append(kept, d)
		} else {
			sub.pending = append(sub.pending, d.env)
		}
	}
	sub.delayed = kept
}

// Ack implements eff.Broker. Acking an id that is not in flight is a
// contract violation and returns an error.
func (h *Hub) Ack(_ context.Context, messageID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inflight[messageID]; !ok {
		return fmt.Errorf("memory: unknown delivery %q", messageID)
	}
	delete(h.inflight, messageID)
	return nil
}

// Nack implements eff.Broker. The copy becomes consumable again on its
// own subscription after delay.
func (h *Hub) Nack(_ context.Context, messageID string, delay time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.inflight[messageID]
	if !ok {
		return fmt.Errorf("memory: unknown delivery %q", messageID)
	}
	delete(h.inflight, messageID)
	d.sub.delayed = append(d.sub.delayed, delayedEnvelope{env: d.env, readyAt: time.Now().Add(delay)})
	return nil
}

// Depth reports the number of copies queued or delayed for a
// subscription, not counting in-flight ones.
func (h *Hub) Depth(subscription string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[subscription]
	if !ok {
		return 0
	}
	return len(sub.pending) + len(sub.delayed)
}
