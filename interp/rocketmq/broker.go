// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rocketmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"

	"code.hybscloud.com/eff"
)

const (
	defaultParkTimeout = 2 * time.Minute
	defaultQueueDepth  = 64
)

// Config configures a Broker. NameServers is required; credentials
// and namespace are optional. ParkTimeout bounds how long a delivery
// waits for an ack or nack before it is released for redelivery.
type Config struct {
	NameServers   []string
	AccessKey     string
	SecretKey     string
	Namespace     string
	ProducerGroup string
	ParkTimeout   time.Duration
	QueueDepth    int
}

// Broker is a pub/sub broker over RocketMQ implementing eff.Broker.
// Each subscription runs its own push consumer in its own group, so
// several subscriptions on one topic fan out independently.
type Broker struct {
	cfg      Config
	producer rocketmq.Producer

	mu       sync.Mutex
	subs     map[string]*subscription
	inflight map[string]*parked
}

type subscription struct {
	consumer rocketmq.PushConsumer
	ready    chan *parked
}

// parked is one pushed message waiting for the consuming program's
// verdict. The push callback blocks on decision until Ack or Nack
// resolves it or the deadline releases it.
type parked struct {
	env      eff.Envelope
	decision chan decision
	deadline time.Time
}

type decision struct {
	ack   bool
	level int
}

var _ eff.Broker = (*Broker)(nil)

// NewBroker creates and starts the producer side. Subscriptions are
// added with Subscribe.
func NewBroker(cfg Config) (*Broker, error) {
	if cfg.ParkTimeout <= 0 {
		cfg.ParkTimeout = defaultParkTimeout
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	opts := []producer.Option{
		producer.WithNameServer(cfg.NameServers),
		producer.WithRetry(2),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, producer.WithCredentials(primitive.Credentials{
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		}))
	}
	if cfg.Namespace != "" {
		opts = append(opts, producer.WithNamespace(cfg.Namespace))
	}
	if cfg.ProducerGroup != "" {
		opts = append(opts, producer.WithGroupName(cfg.ProducerGroup))
	}
	prod, err := rocketmq.NewProducer(opts...)
	if err != nil {
		return nil, fmt.Errorf("rocketmq: create producer: %w", err)
	}
	if err := prod.Start(); err != nil {
		return nil, fmt.Errorf("rocketmq: start producer: %w", err)
	}
	return &Broker{
		cfg:      cfg,
		producer: prod,
		subs:     make(map[string]*subscription),
		inflight: make(map[string]*parked),
	}, nil
}

// Subscribe binds subscription to topic under group, starting a push
// consumer for it. Batching is pinned to one message per callback so
// each delivery gets its own verdict.
func (b *Broker) Subscribe(subscriptionName, topic, group string) error {
	opts := []consumer.Option{
		consumer.WithNameServer(b.cfg.NameServers),
		consumer.WithGroupName(group),
		consumer.WithConsumeMessageBatchMaxSize(1),
		consumer.WithConsumeFromWhere(consumer.ConsumeFromLastOffset),
	}
	if b.cfg.AccessKey != "" {
		opts = append(opts, consumer.WithCredentials(primitive.Credentials{
			AccessKey: b.cfg.AccessKey,
			SecretKey: b.cfg.SecretKey,
		}))
	}
	if b.cfg.Namespace != "" {
		opts = append(opts, consumer.WithNamespace(b.cfg.Namespace))
	}
	cons, err := rocketmq.NewPushConsumer(opts...)
	if err != nil {
		return fmt.Errorf("rocketmq: create consumer: %w", err)
	}
	sub := &subscription{consumer: cons, ready: make(chan *parked, b.cfg.QueueDepth)}

	handler := func(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
		for _, msg := range msgs {
			if res := b.park(ctx, subscriptionName, sub, msg); res != consumer.ConsumeSuccess {
				return res, nil
			}
		}
		return consumer.ConsumeSuccess, nil
	}
	if err := cons.Subscribe(topic, consumer.MessageSelector{}, handler); err != nil {
		return fmt.Errorf("rocketmq: subscribe to topic %s: %w", topic, err)
	}
	if err := cons.Start(); err != nil {
		return fmt.Errorf("rocketmq: start consumer: %w", err)
	}

	b.mu.Lock()
	b.subs[subscriptionName] = sub
	b.mu.Unlock()
	return nil
}

// Close shuts down the producer and every subscription's consumer.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.producer.Shutdown()
	for _, sub := range b.subs {
		if serr := sub.consumer.Shutdown(); err == nil {
			err = serr
		}
	}
	b.subs = make(map[string]*subscription)
	return err
}

// Publish sends one message synchronously and returns the broker's
// message id as the receipt.
func (b *Broker) Publish(ctx context.Context, topic string, payload []byte, properties map[string]string) (string, error) {
	msg := primitive.NewMessage(topic, payload)
	if len(properties) > 0 {
		msg.WithProperties(properties)
	}
	res, err := b.producer.SendSync(ctx, msg)
	if err != nil {
		return "", err
	}
	if res.Status != primitive.SendOK {
		return "", &sendError{status: res.Status}
	}
	return res.MsgID, nil
}

// park hands one pushed message to the poll side and blocks until the
// consuming program decides, or until the deadline releases the
// message for redelivery.
func (b *Broker) park(ctx context.Context, subscriptionName string, sub *subscription, msg *primitive.MessageExt) consumer.ConsumeResult {
	deadline := time.Now().Add(b.cfg.ParkTimeout)
	p := &parked{
		env: eff.Envelope{
			ID:         msg.MsgId + "@" + subscriptionName,
			Topic:      msg.Topic,
			Payload:    msg.Body,
			Properties: msg.GetProperties(),
		},
		decision: make(chan decision, 1),
		deadline: deadline,
	}
	expire := time.NewTimer(time.Until(deadline))
	defer expire.Stop()

	select {
	case sub.ready <- p:
	case <-expire.C:
		return consumer.ConsumeRetryLater
	}
	select {
	case d := <-p.decision:
		if d.ack {
			return consumer.ConsumeSuccess
		}
		if cc, ok := primitive.GetConcurrentlyCtx(ctx); ok && d.level > 0 {
			cc.DelayLevelWhenNextConsume = d.level
		}
		return consumer.ConsumeRetryLater
	case <-expire.C:
		b.mu.Lock()
		delete(b.inflight, p.env.ID)
		b.mu.Unlock()
		return consumer.ConsumeRetryLater
	}
}

// Consume delivers one parked message from subscription, waiting at
// most timeout. Parks whose deadline passed while queued are skipped;
// their messages are already on the redelivery path.
func (b *Broker) Consume(ctx context.Context, subscriptionName string, timeout time.Duration) (eff.Envelope, bool, error) {
	b.mu.Lock()
	sub, ok := b.subs[subscriptionName]
	b.mu.Unlock()
	if !ok {
		return eff.Envelope{}, false, fmt.Errorf("rocketmq: unknown subscription %q", subscriptionName)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case p := <-sub.ready:
			if time.Now().After(p.deadline) {
				continue
			}
			b.mu.Lock()
			b.inflight[p.env.ID] = p
			b.mu.Unlock()
			return p.env, true, nil
		case <-timer.C:
			return eff.Envelope{}, false, nil
		case <-ctx.Done():
			return eff.Envelope{}, false, ctx.Err()
		}
	}
}

// Ack resolves the parked delivery as consumed.
func (b *Broker) Ack(ctx context.Context, messageID string) error {
	p := b.take(messageID)
	if p == nil {
		return fmt.Errorf("rocketmq: unknown delivery %q", messageID)
	}
	p.decision <- decision{ack: true}
	return nil
}

// Nack resolves the parked delivery as failed, requesting redelivery
// after delay rounded up to the broker's delay-level ladder. Zero
// delay leaves the broker's own retry escalation in charge.
func (b *Broker) Nack(ctx context.Context, messageID string, delay time.Duration) error {
	p := b.take(messageID)
	if p == nil {
		return fmt.Errorf("rocketmq: unknown delivery %q", messageID)
	}
	p.decision <- decision{level: delayLevel(delay)}
	return nil
}

func (b *Broker) take(messageID string) *parked {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.inflight[messageID]
	delete(b.inflight, messageID)
	return p
}

// The broker's fixed redelivery delays, level 1 through 18.
var delayLevels = []time.Duration{
	time.Second, 5 * time.Second, 10 * time.Second, 30 * time.Second,
	time.Minute, 2 * time.Minute, 3 * time.Minute, 4 * time.Minute,
	5 * time.Minute, 6 * time.Minute, 7 * time.Minute, 8 * time.Minute,
	9 * time.Minute, 10 * time.Minute, 20 * time.Minute, 30 * time.Minute,
	time.Hour, 2 * time.Hour,
}

// delayLevel maps delay to the smallest level covering it. Delays
// beyond the ladder clamp to the top level.
func delayLevel(delay time.Duration) int {
	if delay <= 0 {
		return 0
	}
	for i, d := range delayLevels {
		if d >= delay {
			return i + 1
		}
	}
	return len(delayLevels)
}

// sendError reports a send the broker accepted but could not fully
// commit. Replication and flush timeouts clear on their own; an
// unknown error does not.
type sendError struct {
	status primitive.SendStatus
}

func (e *sendError) Error() string {
	return fmt.Sprintf("rocketmq: send status %d", e.status)
}

// Transient reports the verdict derived from the send status.
func (e *sendError) Transient() bool {
	switch e.status {
	case primitive.SendFlushDiskTimeout, primitive.SendFlushSlaveTimeout, primitive.SendSlaveNotAvailable:
		return true
	}
	return false
}
