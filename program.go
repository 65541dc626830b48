// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"code.hybscloud.com/kont"
)

// Program is a suspension-based description of a workflow: a computation
// that yields Effects one at a time and terminates in a value of type A.
// Constructing a Program performs no I/O.
//
// Program is an alias of [kont.Eff], so programs compose with kont.Bind,
// kont.Map, and kont.Then, and the perform constructors in this package.
// Delegating part of a workflow to another Program is ordinary
// continuation composition; from the Runner's point of view a delegating
// program is one uninterrupted sequence of suspensions.
//
// Between suspensions a program runs synchronously on the driving
// goroutine and must not block. An effect that can fail softly resumes
// with an outcome value (LookupOutcome, CacheOutcome, ConsumeOutcome,
// TokenOutcome, AccessOutcome) so the program can branch on it; only
// interpreter failures abort the run.
type Program[A any] = kont.Eff[A]

// Done creates a program that terminates immediately with v,
// yielding no effects.
func Done[A any](v A) Program[A] {
	return kont.Pure(v)
}
