// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"
	"time"

	"code.hybscloud.com/kont"
)

// Envelope is one delivered message: broker-assigned id, origin topic,
// opaque payload, and optional string properties.
type Envelope struct {
	ID         string
	Topic      string
	Payload    []byte
	Properties map[string]string
}

// PublishReceipt acknowledges a published message with its broker id.
type PublishReceipt struct {
	MessageID string
}

// ConsumeOutcome is the soft result of a consume attempt.
// A drained timeout is not an interpreter error; programs branch on it.
type ConsumeOutcome struct {
	delivered bool
	env       Envelope
}

// Delivery creates an outcome carrying a delivered envelope.
func Delivery(env Envelope) ConsumeOutcome {
	return ConsumeOutcome{delivered: true, env: env}
}

// NoDelivery creates an outcome for a consume that timed out empty.
func NoDelivery() ConsumeOutcome {
	return ConsumeOutcome{}
}

// Delivered returns the envelope and true, or zero and false.
func (o ConsumeOutcome) Delivered() (Envelope, bool) {
	if o.delivered {
		return o.env, true
	}
	return Envelope{}, false
}

// None returns true if the consume attempt drained its timeout empty.
func (o ConsumeOutcome) None() bool {
	return !o.delivered
}

// Acked acknowledges a completed positive acknowledgment.
type Acked struct{}

// Nacked acknowledges a completed negative acknowledgment.
type Nacked struct{}

// Publish is the effect operation for publishing one message to a topic.
// Perform(Publish{...}) resumes with a PublishReceipt.
type Publish struct {
	kont.Phantom[PublishReceipt]
	Topic      string
	Payload    []byte
	Properties map[string]string
}

// NewPublish creates a Publish effect. Panics on an empty topic.
func NewPublish(topic string, payload []byte, properties map[string]string) Publish {
	mustNonEmpty("topic", topic)
	return Publish{Topic: topic, Payload: payload, Properties: properties}
}

func (Publish) Category() Category { return CategoryMessaging }
func (Publish) EffectName() string { return "messaging.publish" }
func (Publish) sealedEffect() {}

// Consume is the effect operation for receiving one message from a
// subscription, waiting at most Timeout.
// Perform(Consume{...}) resumes with a ConsumeOutcome.
type Consume struct {
	kont.Phantom[ConsumeOutcome]
	Subscription string
	Timeout      time.Duration
}

// NewConsume creates a Consume effect.
// Panics on an empty subscription or non-positive timeout.
func NewConsume(subscription string, timeout time.Duration) Consume {
	mustNonEmpty("subscription", subscription)
	if timeout <= 0 {
		panic("eff: non-positive timeout")
	}
	return Consume{Subscription: subscription, Timeout: timeout}
}

func (Consume) Category() Category { return CategoryMessaging }
func (Consume) EffectName() string { return "messaging.consume" }
func (Consume) sealedEffect() {}

// Ack is the effect operation for positively acknowledging a delivery.
// Perform(Ack{...}) resumes with Acked.
type Ack struct {
	kont.Phantom[Acked]
	MessageID string
}

// NewAck creates an Ack effect. Panics on an empty message id.
func NewAck(messageID string) Ack {
	mustNonEmpty("message id", messageID)
	return Ack{MessageID: messageID}
}

func (Ack) Category() Category { return CategoryMessaging }
func (Ack) EffectName() string { return "messaging.ack" }
func (Ack) sealedEffect() {}

// Nack is the effect operation for negatively acknowledging a delivery,
// requesting redelivery after Delay. Zero delay requests immediate
// redelivery.
// Perform(Nack{...}) resumes with Nacked.
type Nack struct {
	kont.Phantom[Nacked]
	MessageID string
	Delay     time.Duration
}

// NewNack creates a Nack effect.
// Panics on an empty message id or negative delay.
func NewNack(messageID string, delay time.Duration) Nack {
	mustNonEmpty("message id", messageID)
	if delay < 0 {
		panic("eff: negative delay")
	}
	return Nack{MessageID: messageID, Delay: delay}
}

func (Nack) Category() Category { return CategoryMessaging }
func (Nack) EffectName() string { return "messaging.nack" }
func (Nack) sealedEffect() {}

// PublishMessage yields a Publish effect and resumes with its receipt.
func PublishMessage(topic string, payload []byte, properties map[string]string) Program[PublishReceipt] {
	return kont.Perform(NewPublish(topic, payload, properties))
}

// ConsumeMessage yields a Consume effect and resumes with its outcome.
func ConsumeMessage(subscription string, timeout time.Duration) Program[ConsumeOutcome] {
	return kont.Perform(NewConsume(subscription, timeout))
}

// AckMessage yields an Ack effect and resumes with Acked.
func AckMessage(messageID string) Program[Acked] {
	return kont.Perform(NewAck(messageID))
}

// NackMessage yields a Nack effect and resumes with Nacked.
func NackMessage(messageID string, delay time.Duration) Program[Nacked] {
	return kont.Perform(NewNack(messageID, delay))
}

// Broker is the pub/sub capability a messaging interpreter drives.
// Consume reports a drained timeout as ok=false with a nil error;
// errors are reserved for infrastructure failure.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte, properties map[string]string) (messageID string, err error)
	Consume(ctx context.Context, subscription string, timeout time.Duration) (env Envelope, ok bool, err error)
	Ack(ctx context.Context, messageID string) error
	Nack(ctx context.Context, messageID string, delay time.Duration) error
}
