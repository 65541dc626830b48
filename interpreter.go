// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"
	"errors"
	"fmt"
)

// EffectReturn is the value an interpreter hands back for one effect.
// Effect names the effect that produced it; Value holds the outcome
// the program's continuation expects (LookupOutcome for a Lookup,
// CacheOutcome for a CacheGet, and so on). The runner resumes the
// suspended program with Value, which narrows it back to the concrete
// outcome type. An interpreter that returns a Value of the wrong type
// is defective and the resume panics.
type EffectReturn struct {
	Effect string
	Value  any
}

// Interpreter gives meaning to effects. Interpret never panics on
// capability failure and never retries; it reports failure as an Err
// carrying one of the InterpreterError variants. The soft outcomes of
// an effect (lookup miss, cache miss, empty poll, invalid token) are
// Ok values, not errors.
type Interpreter interface {
	Name() string
	Interpret(ctx context.Context, e Effect) Result[EffectReturn, InterpreterError]
}

func retOk(e Effect, v any) Result[EffectReturn, InterpreterError] {
	return Ok[EffectReturn, InterpreterError](EffectReturn{Effect: e.EffectName(), Value: v})
}

func retErr(err InterpreterError) Result[EffectReturn, InterpreterError] {
	return Err[EffectReturn, InterpreterError](err)
}

func unhandled(e Effect, interpreter string) Result[EffectReturn, InterpreterError] {
	return retErr(&UnhandledEffectError{Effect: e, Interpreter: interpreter})
}

// NewStorageInterpreter interprets storage effects against store.
// Lookup misses are Ok outcomes; only capability errors become
// StorageError, with Transient derived from the cause.
func NewStorageInterpreter(store Storage) Interpreter {
	return &storageInterpreter{store: store}
}

type storageInterpreter struct {
	store Storage
}

func (si *storageInterpreter) Name() string { return "storage" }

func (si *storageInterpreter) Interpret(ctx context.Context, e Effect) (res Result[EffectReturn, InterpreterError]) {
	defer func() {
		if r := recover(); r != nil {
			res = retErr(&StorageError{Effect: e, Cause: fmt.Errorf("interpreter panic: %v", r)})
		}
	}()
	switch op := e.(type) {
	case Lookup:
		rec, found, err := si.store.LookupByID(ctx, op.Collection, op.Key)
		if err != nil {
			return retErr(&StorageError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		if !found {
			return retOk(e, LookupNotFound())
		}
		return retOk(e, LookupFound(rec))
	case Persist:
		rec, err := si.store.Persist(ctx, op.Collection, op.Record)
		if err != nil {
			return retErr(&StorageError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		return retOk(e, rec)
	}
	return unhandled(e, si.Name())
}

// NewCacheInterpreter interprets cache effects against store.
// Misses, absent or expired, are Ok outcomes.
func NewCacheInterpreter(store CacheStore) Interpreter {
	return &cacheInterpreter{store: store}
}

type cacheInterpreter struct {
	store CacheStore
}

func (ci *cacheInterpreter) Name() string { return "cache" }

func (ci *cacheInterpreter) Interpret(ctx context.Context, e Effect) (res Result[EffectReturn, InterpreterError]) {
	defer func() {
		if r := recover(); r != nil {
			res = retErr(&CacheError{Effect: e, Cause: fmt.Errorf("interpreter panic: %v", r)})
		}
	}()
	switch op := e.(type) {
	case CacheGet:
		value, ttl, miss, err := ci.store.Get(ctx, op.Key)
		if err != nil {
			return retErr(&CacheError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		if miss != "" {
			return retOk(e, CacheMiss(miss))
		}
		return retOk(e, CacheHit(value, ttl))
	case CachePut:
		if err := ci.store.Put(ctx, op.Key, op.Value, op.TTL); err != nil {
			return retErr(&CacheError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		return retOk(e, Stored{})
	}
	return unhandled(e, ci.Name())
}

// NewMessagingInterpreter interprets messaging effects against broker.
// An empty poll is an Ok NoDelivery outcome, not an error.
func NewMessagingInterpreter(broker Broker) Interpreter {
	return &messagingInterpreter{broker: broker}
}

type messagingInterpreter struct {
	broker Broker
}

func (mi *messagingInterpreter) Name() string { return "messaging" }

func (mi *messagingInterpreter) Interpret(ctx context.Context, e Effect) (res Result[EffectReturn, InterpreterError]) {
	defer func() {
		if r := recover(); r != nil {
			res = retErr(&MessagingError{Effect: e, Cause: fmt.Errorf("interpreter panic: %v", r)})
		}
	}()
	switch op := e.(type) {
	case Publish:
		id, err := mi.broker.Publish(ctx, op.Topic, op.Payload, op.Properties)
		if err != nil {
			return retErr(&MessagingError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		return retOk(e, PublishReceipt{MessageID: id})
	case Consume:
		env, ok, err := mi.broker.Consume(ctx, op.Subscription, op.Timeout)
		if err != nil {
			return retErr(&MessagingError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		if !ok {
			return retOk(e, NoDelivery())
		}
		return retOk(e, Delivery(env))
	case Ack:
		if err := mi.broker.Ack(ctx, op.MessageID); err != nil {
			return retErr(&MessagingError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		return retOk(e, Acked{})
	case Nack:
		if err := mi.broker.Nack(ctx, op.MessageID, op.Delay); err != nil {
			return retErr(&MessagingError{Effect: e, Cause: err, Transient: TransientCause(err)})
		}
		return retOk(e, Nacked{})
	}
	return unhandled(e, mi.Name())
}

// Close codes reported when the capability cannot say better.
// 1006 is abnormal closure without a close frame, 1011 an internal
// error on the peer.
const (
	closeAbnormal = 1006
	closeInternal = 1011
)

// NewSocketInterpreter interprets socket effects against conn.
// Probing never fails; send, receive and close on a dead connection
// report SocketClosedError. A capability may return a
// *SocketClosedError itself to preserve the peer's close code.
func NewSocketInterpreter(conn Conn) Interpreter {
	return &socketInterpreter{conn: conn}
}

type socketInterpreter struct {
	conn Conn
}

func (si *socketInterpreter) Name() string { return "socket" }

func (si *socketInterpreter) Interpret(ctx context.Context, e Effect) (res Result[EffectReturn, InterpreterError]) {
	defer func() {
		if r := recover(); r != nil {
			res = retErr(&SocketClosedError{
				Effect: e,
				Code:   closeInternal,
				Reason: fmt.Sprint(r),
				Cause:  fmt.Errorf("interpreter panic: %v", r),
			})
		}
	}()
	switch op := e.(type) {
	case SocketProbe:
		return retOk(e, si.conn.IsOpen())
	case SocketSend:
		if err := si.conn.SendText(ctx, op.Text); err != nil {
			return retErr(closedError(e, err))
		}
		return retOk(e, Sent{})
	case SocketReceive:
		text, err := si.conn.ReceiveText(ctx)
		if err != nil {
			return retErr(closedError(e, err))
		}
		return retOk(e, text)
	case SocketClose:
		if err := si.conn.Close(op.Code, op.Reason); err != nil {
			return retErr(closedError(e, err))
		}
		return retOk(e, Closed{})
	}
	return unhandled(e, si.Name())
}

func closedError(e Effect, err error) InterpreterError {
	var ce *SocketClosedError
	if errors.As(err, &ce) {
		return &SocketClosedError{Effect: e, Code: ce.Code, Reason: ce.Reason, Cause: err}
	}
	return &SocketClosedError{Effect: e, Code: closeAbnormal, Reason: err.Error(), Cause: err}
}

// NewAuthInterpreter interprets auth effects against authority.
// Authority is infallible by contract: rejected tokens and denied
// access are Ok outcomes, so this interpreter has no error path.
func NewAuthInterpreter(authority Authority) Interpreter {
	return &authInterpreter{authority: authority}
}

type authInterpreter struct {
	authority Authority
}

func (ai *authInterpreter) Name() string { return "auth" }

func (ai *authInterpreter) Interpret(ctx context.Context, e Effect) Result[EffectReturn, InterpreterError] {
	switch op := e.(type) {
	case VerifyToken:
		return retOk(e, ai.authority.VerifyToken(ctx, op.Token))
	case CheckAccess:
		return retOk(e, ai.authority.CheckAccess(ctx, op.Subject, op.Action, op.Resource))
	}
	return unhandled(e, ai.Name())
}
