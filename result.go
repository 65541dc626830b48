// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Result represents a value that is either Ok (success) or Err (failure).
// Exactly one variant is populated; the zero value is not a valid Result
// and the constructors are the only way to obtain one.
type Result[T, E any] struct {
	isOk bool
	val  T
	err  E
}

// Ok creates an Ok (success) result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{isOk: true, val: v}
}

// Err creates an Err (failure) result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{isOk: false, err: e}
}

// IsOk returns true if this is an Ok result.
func (r Result[T, E]) IsOk() bool {
	return r.isOk
}

// IsErr returns true if this is an Err result.
func (r Result[T, E]) IsErr() bool {
	return !r.isOk
}

// Get returns the Ok value and true, or zero and false.
func (r Result[T, E]) Get() (T, bool) {
	if r.isOk {
		return r.val, true
	}
	var zero T
	return zero, false
}

// GetErr returns the Err value and true, or zero and false.
func (r Result[T, E]) GetErr() (E, bool) {
	if !r.isOk {
		return r.err, true
	}
	var zero E
	return zero, false
}

// MatchResult pattern matches on the Result, calling onOk or onErr.
func MatchResult[T, E, R any](r Result[T, E], onOk func(T) R, onErr func(E) R) R {
	if r.isOk {
		return onOk(r.val)
	}
	return onErr(r.err)
}

// MapResult applies a function to the Ok value.
func MapResult[T, E, U any](r Result[T, E], f func(T) U) Result[U, E] {
	if r.isOk {
		return Ok[U, E](f(r.val))
	}
	return Err[U, E](r.err)
}

// FlatMapResult sequences two Result computations.
func FlatMapResult[T, E, U any](r Result[T, E], f func(T) Result[U, E]) Result[U, E] {
	if r.isOk {
		return f(r.val)
	}
	return Err[U, E](r.err)
}

// MapErrResult applies a function to the Err value.
func MapErrResult[T, E, F any](r Result[T, E], f func(E) F) Result[T, F] {
	if r.isOk {
		return Ok[T, F](r.val)
	}
	return Err[T, F](f(r.err))
}
