// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"time"

	"code.hybscloud.com/kont"
)

// LookupBind looks up a record and passes the outcome to f.
// Fuses Perform(Lookup) + Bind.
func LookupBind[B any](collection, key string, f func(LookupOutcome) Program[B]) Program[B] {
	return kont.Bind(LookupRecord(collection, key), f)
}

// PersistThen persists a record and then continues with next.
// Fuses Perform(Persist) + Then.
func PersistThen[B any](collection string, rec Record, next Program[B]) Program[B] {
	return kont.Then(PersistRecord(collection, rec), next)
}

// GetBind reads a cache entry and passes the outcome to f.
// Fuses Perform(CacheGet) + Bind.
func GetBind[B any](key string, f func(CacheOutcome) Program[B]) Program[B] {
	return kont.Bind(GetCached(key), f)
}

// PutThen stores a cache entry and then continues with next.
// Fuses Perform(CachePut) + Then.
func PutThen[B any](key string, value []byte, ttl time.Duration, next Program[B]) Program[B] {
	return kont.Then(PutCached(key, value, ttl), next)
}

// PublishBind publishes a message and passes the receipt to f.
// Fuses Perform(Publish) + Bind.
func PublishBind[B any](topic string, payload []byte, properties map[string]string, f func(PublishReceipt) Program[B]) Program[B] {
	return kont.Bind(PublishMessage(topic, payload, properties), f)
}

// ConsumeBind polls a subscription and passes the outcome to f.
// Fuses Perform(Consume) + Bind.
func ConsumeBind[B any](subscription string, timeout time.Duration, f func(ConsumeOutcome) Program[B]) Program[B] {
	return kont.Bind(ConsumeMessage(subscription, timeout), f)
}

// SendThenReceive sends a text frame and waits for the peer's reply.
// Fuses Perform(SocketSend) + Then + Perform(SocketReceive).
func SendThenReceive(text string) Program[string] {
	return kont.Then(SendText(text), ReceiveText())
}

// VerifyBind verifies a token and passes the outcome to f.
// Fuses Perform(VerifyToken) + Bind.
func VerifyBind[B any](token string, f func(TokenOutcome) Program[B]) Program[B] {
	return kont.Bind(Verify(token), f)
}
