// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efftest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"code.hybscloud.com/eff"
)

// MustOk fails the test immediately when r is Err, otherwise it
// returns the Ok value.
func MustOk[T any, E any](t testing.TB, r eff.Result[T, E]) T {
	t.Helper()
	v, ok := r.Get()
	if !ok {
		e, _ := r.GetErr()
		t.Fatalf("result is Err(%v), want Ok", e)
	}
	return v
}

// MustErr fails the test immediately when r is Ok, otherwise it
// returns the error.
func MustErr[T any, E any](t testing.TB, r eff.Result[T, E]) E {
	t.Helper()
	e, ok := r.GetErr()
	if !ok {
		v, _ := r.Get()
		t.Fatalf("result is Ok(%v), want Err", v)
	}
	return e
}

// AssertOk asserts that r is Ok carrying want.
func AssertOk[T any, E any](t testing.TB, r eff.Result[T, E], want T) bool {
	t.Helper()
	v, ok := r.Get()
	if !ok {
		e, _ := r.GetErr()
		return assert.Fail(t, "result is Err, want Ok", "error: %v", e)
	}
	return assert.Equal(t, want, v)
}

// AssertErr asserts that r is Err. When target is non-nil it must be
// a pointer to an error variant, and the assertion additionally
// requires the error to match it (errors.As semantics).
func AssertErr[T any](t testing.TB, r eff.Result[T, eff.InterpreterError], target any) bool {
	t.Helper()
	e, ok := r.GetErr()
	if !ok {
		v, _ := r.Get()
		return assert.Fail(t, "result is Ok, want Err", "value: %v", v)
	}
	if target == nil {
		return true
	}
	return assert.ErrorAs(t, e, target)
}

// AssertErrContains asserts that r is Err with substr somewhere in
// the error message.
func AssertErrContains[T any](t testing.TB, r eff.Result[T, eff.InterpreterError], substr string) bool {
	t.Helper()
	e, ok := r.GetErr()
	if !ok {
		v, _ := r.Get()
		return assert.Fail(t, "result is Ok, want Err", "value: %v", v)
	}
	return assert.ErrorContains(t, e, substr)
}

// AssertRetryable asserts that r is Err and the error's retryability
// flag equals want.
func AssertRetryable[T any](t testing.TB, r eff.Result[T, eff.InterpreterError], want bool) bool {
	t.Helper()
	e, ok := r.GetErr()
	if !ok {
		v, _ := r.Get()
		return assert.Fail(t, "result is Ok, want Err", "value: %v", v)
	}
	return assert.Equal(t, want, e.Retryable(), "retryable flag")
}
