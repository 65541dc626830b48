// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"code.hybscloud.com/iox"
)

// InterpreterError is the closed union of interpreter failure shapes:
// StorageError, CacheError, MessagingError, SocketClosedError, and
// UnhandledEffectError. Every variant carries the effect that failed.
// Interpreters construct these; programs never do.
//
// Retryable reports whether the underlying cause is transient (timeout,
// connection refused, backpressure) rather than structural (malformed
// query, missing topic, permission denied). The runtime never retries;
// the flag informs the caller's own retry policy.
type InterpreterError interface {
	error
	FailedEffect() Effect
	Retryable() bool

	sealedInterpreterError()
}

// StorageError reports a storage capability failure.
type StorageError struct {
	Effect    Effect
	Cause     error
	Transient bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("eff: %s: %v", e.Effect.EffectName(), e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }
func (e *StorageError) FailedEffect() Effect { return e.Effect }
func (e *StorageError) Retryable() bool { return e.Transient }
func (e *StorageError) sealedInterpreterError() {}

// CacheError reports a cache capability failure.
type CacheError struct {
	Effect    Effect
	Cause     error
	Transient bool
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("eff: %s: %v", e.Effect.EffectName(), e.Cause)
}

func (e *CacheError) Unwrap() error { return e.Cause }
func (e *CacheError) FailedEffect() Effect { return e.Effect }
func (e *CacheError) Retryable() bool { return e.Transient }
func (e *CacheError) sealedInterpreterError() {}

// MessagingError reports a broker capability failure.
type MessagingError struct {
	Effect    Effect
	Cause     error
	Transient bool
}

func (e *MessagingError) Error() string {
	return fmt.Sprintf("eff: %s: %v", e.Effect.EffectName(), e.Cause)
}

func (e *MessagingError) Unwrap() error { return e.Cause }
func (e *MessagingError) FailedEffect() Effect { return e.Effect }
func (e *MessagingError) Retryable() bool { return e.Transient }
func (e *MessagingError) sealedInterpreterError() {}

// SocketClosedError reports an operation on a connection that is gone.
// Never retryable: the described connection cannot come back, a
// reconnect is a different collaborator.
//
// A Conn implementation may return a *SocketClosedError with Effect
// left nil to hand the peer's close code to the socket interpreter,
// which rewraps it with the failing effect filled in.
type SocketClosedError struct {
	Effect Effect
	Code   int
	Reason string
	Cause  error
}

func (e *SocketClosedError) Error() string {
	name := "socket"
	if e.Effect != nil {
		name = e.Effect.EffectName()
	}
	if e.Reason == "" {
		return fmt.Sprintf("eff: %s: connection closed (code %d)", name, e.Code)
	}
	return fmt.Sprintf("eff: %s: connection closed (code %d: %s)", name, e.Code, e.Reason)
}

func (e *SocketClosedError) Unwrap() error { return e.Cause }
func (e *SocketClosedError) FailedEffect() Effect { return e.Effect }
func (e *SocketClosedError) Retryable() bool { return false }
func (e *SocketClosedError) sealedInterpreterError() {}

// UnhandledEffectError reports an effect no category interpreter owns.
// Always a configuration defect, never transient; retrying cannot help.
type UnhandledEffectError struct {
	Effect      Effect
	Interpreter string
}

func (e *UnhandledEffectError) Error() string {
	return fmt.Sprintf("eff: unhandled effect %s in interpreter %s", e.Effect.EffectName(), e.Interpreter)
}

func (e *UnhandledEffectError) FailedEffect() Effect { return e.Effect }
func (e *UnhandledEffectError) Retryable() bool { return false }
func (e *UnhandledEffectError) sealedInterpreterError() {}

// TransientCause reports whether err looks transient: a deadline,
// a timeout, backpressure, or a connection-level network failure.
//
// An error in the chain implementing interface{ Transient() bool }
// classifies itself and its verdict is final. Adapters use this to
// carry protocol knowledge (SQLSTATE classes, broker flow control)
// past the generic checks.
func TransientCause(err error) bool {
	if err == nil {
		return false
	}
	var tc interface{ Transient() bool }
	if errors.As(err, &tc) {
		return tc.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if iox.IsWouldBlock(err) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ETIMEDOUT):
		return true
	}
	return false
}
