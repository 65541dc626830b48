// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"code.hybscloud.com/eff"
)

const (
	payloadField   = "payload"
	propertyPrefix = "p:"
	reclaimBatch   = 64
)

// Broker is a pub/sub broker on Redis Streams. Topics are streams,
// subscriptions are consumer groups registered with Subscribe.
//
// A delivered entry stays in the group's pending list until acked.
// Nack is pure bookkeeping: the entry is re-claimed from the pending
// list once its delay elapses, so a crash loses the delay but never
// the message. Recover sweeps entries orphaned by crashed consumers
// back onto the delivery path.
type Broker struct {
	client   goredis.UniversalClient
	consumer string

	mu       sync.Mutex
	bindings map[string]streamBinding
	inflight map[string]streamDelivery
	delayed  []delayedClaim
}

type streamBinding struct {
	stream string
	group  string
}

type streamDelivery struct {
	stream  string
	group   string
	entryID string
	sub     string
}

type delayedClaim struct {
	streamDelivery
	readyAt time.Time
}

var _ eff.Broker = (*Broker)(nil)

// NewBroker wraps client. Each broker claims under its own consumer
// name so concurrent instances never steal each other's deliveries.
func NewBroker(client goredis.UniversalClient) *Broker {
	return &Broker{
		client:   client,
		consumer: "eff-" + uuid.NewString(),
		bindings: make(map[string]streamBinding),
		inflight: make(map[string]streamDelivery),
		delayed:  nil,
	}
}

// Subscribe binds subscription to a consumer group on stream, creating
// both if needed. The group starts at the stream tail: entries
// published before the first Subscribe are not delivered.
func (b *Broker) Subscribe(ctx context.Context, subscription, stream, group string) error {
	err := b.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil && !isBusyGroup(err) {
		return classify(err)
	}
	b.mu.Lock()
	b.bindings[subscription] = streamBinding{stream: stream, group: group}
	b.mu.Unlock()
	return nil
}

// BUSYGROUP means the group already exists, which Subscribe treats as
// success.
func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// Publish appends one entry to the topic's stream and returns its
// stream-qualified id as the receipt.
func (b *Broker) Publish(ctx context.Context, topic string, payload []byte, properties map[string]string) (string, error) {
	values := map[string]interface{}{payloadField: payload}
	for k, v := range properties {
		values[propertyPrefix+k] = v
	}
	id, err := b.client.XAdd(ctx, &goredis.XAddArgs{Stream: topic, Values: values}).Result()
	if err != nil {
		return "", classify(err)
	}
	return topic + "/" + id, nil
}

// Consume delivers one entry from subscription, waiting at most
// timeout. Due nacked entries are re-claimed before fresh entries are
// read. A drained timeout reports ok=false with a nil error.
func (b *Broker) Consume(ctx context.Context, subscription string, timeout time.Duration) (eff.Envelope, bool, error) {
	b.mu.Lock()
	bind, bound := b.bindings[subscription]
	b.mu.Unlock()
	if !bound {
		return eff.Envelope{}, false, fmt.Errorf("redis: unknown subscription %q", subscription)
	}

	if env, ok, err := b.claimDelayed(ctx, subscription); ok || err != nil {
		return env, ok, err
	}

	// A non-positive block would mean "forever" on the wire; map it to
	// a single non-blocking attempt instead.
	block := timeout
	if block <= 0 {
		block = -1
	}
	streams, err := b.client.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    bind.group,
		Consumer: b.consumer,
		Streams:  []string{bind.stream, ">"},
		Count:    1,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return eff.Envelope{}, false, nil
		}
		return eff.Envelope{}, false, classify(err)
	}
	for _, s := range streams {
		for _, msg := range s.Messages {
			return b.deliver(subscription, bind, msg), true, nil
		}
	}
	return eff.Envelope{}, false, nil
}

// claimDelayed re-claims the first due nacked entry for subscription
// from the group's pending list. An entry that vanished from the list
// (acked by a recovery sweep elsewhere) is dropped silently.
func (b *Broker) claimDelayed(ctx context.Context, subscription string) (eff.Envelope, bool, error) {
	b.mu.Lock()
	idx := -1
	now := time.Now()
	for i, d := range b.delayed {
		if d.sub == subscription && !d.readyAt.After(now) {
			idx = i
			break
		}
	}
	var claim delayedClaim
	if idx >= 0 {
		claim = b.delayed[idx]
		b.delayed = append(b.delayed[:idx], b.delayed[idx+1:]...)
	}
	b.mu.Unlock()
	if idx < 0 {
		return eff.Envelope{}, false, nil
	}

	msgs, err := b.client.XClaim(ctx, &goredis.XClaimArgs{
		Stream:   claim.stream,
		Group:    claim.group,
		Consumer: b.consumer,
		MinIdle:  0,
		Messages: []string{claim.entryID},
	}).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return eff.Envelope{}, false, classify(err)
	}
	if len(msgs) == 0 {
		return eff.Envelope{}, false, nil
	}
	bind := streamBinding{stream: claim.stream, group: claim.group}
	return b.deliver(subscription, bind, msgs[0]), true, nil
}

func (b *Broker) deliver(subscription string, bind streamBinding, msg goredis.XMessage) eff.Envelope {
	env := eff.Envelope{
		ID:         bind.stream + "/" + msg.ID + "@" + subscription,
		Topic:      bind.stream,
		Payload:    entryPayload(msg),
		Properties: entryProperties(msg),
	}
	b.mu.Lock()
	b.inflight[env.ID] = streamDelivery{
		stream:  bind.stream,
		group:   bind.group,
		entryID: msg.ID,
		sub:     subscription,
	}
	b.mu.Unlock()
	return env
}

func entryPayload(msg goredis.XMessage) []byte {
	v, _ := msg.Values[payloadField].(string)
	return []byte(v)
}

func entryProperties(msg goredis.XMessage) map[string]string {
	var props map[string]string
	for k, v := range msg.Values {
		if !strings.HasPrefix(k, propertyPrefix) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if props == nil {
			props = make(map[string]string)
		}
		props[strings.TrimPrefix(k, propertyPrefix)] = s
	}
	return props
}

// Ack removes the delivery from the group's pending list.
func (b *Broker) Ack(ctx context.Context, messageID string) error {
	b.mu.Lock()
	d, ok := b.inflight[messageID]
	if ok {
		delete(b.inflight, messageID)
	}
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("redis: unknown delivery %q", messageID)
	}
	if err := b.client.XAck(ctx, d.stream, d.group, d.entryID).Err(); err != nil {
		// Put the delivery back so a failed ack can be retried.
		b.mu.Lock()
		b.inflight[messageID] = d
		b.mu.Unlock()
		return classify(err)
	}
	return nil
}

// Nack schedules the delivery for re-claim after delay. The entry
// stays in the group's pending list server-side, so no round trip is
// needed.
func (b *Broker) Nack(ctx context.Context, messageID string, delay time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.inflight[messageID]
	if !ok {
		return fmt.Errorf("redis: unknown delivery %q", messageID)
	}
	delete(b.inflight, messageID)
	b.delayed = append(b.delayed, delayedClaim{streamDelivery: d, readyAt: time.Now().Add(delay)})
	return nil
}

// Recover sweeps entries pending for at least minIdle on subscription
// back onto the delivery path and reports how many it reclaimed. Pick
// minIdle beyond the longest ack turnaround, or live deliveries get
// stolen from their consumer.
func (b *Broker) Recover(ctx context.Context, subscription string, minIdle time.Duration) (int, error) {
	b.mu.Lock()
	bind, bound := b.bindings[subscription]
	b.mu.Unlock()
	if !bound {
		return 0, fmt.Errorf("redis: unknown subscription %q", subscription)
	}

	msgs, _, err := b.client.XAutoClaim(ctx, &goredis.XAutoClaimArgs{
		Stream:   bind.stream,
		Group:    bind.group,
		Consumer: b.consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    reclaimBatch,
	}).Result()
	if err != nil {
		return 0, classify(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	waiting := make(map[string]bool, len(b.delayed))
	for _, d := range b.delayed {
		waiting[d.stream+"/"+d.entryID] = true
	}
	added := 0
	for _, msg := range msgs {
		if waiting[bind.stream+"/"+msg.ID] {
			continue
		}
		b.delayed = append(b.delayed, delayedClaim{
			streamDelivery: streamDelivery{
				stream:  bind.stream,
				group:   bind.group,
				entryID: msg.ID,
				sub:     subscription,
			},
			readyAt: time.Now(),
		})
		added++
	}
	return added, nil
}
