// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package efftest

import (
	"fmt"

	"code.hybscloud.com/eff"
	"code.hybscloud.com/kont"
)

// Stepper drives an effect program one suspension at a time without an
// interpreter, so a test can inspect each pending effect and choose
// its outcome by hand.
type Stepper[A any] struct {
	susp    *kont.Suspension[A]
	value   A
	aborted bool
}

// Start evaluates p up to its first suspension.
func Start[A any](p eff.Program[A]) *Stepper[A] {
	value, susp := kont.Step(p)
	return &Stepper[A]{susp: susp, value: value}
}

// Done reports whether the program has no pending effect left.
func (s *Stepper[A]) Done() bool { return s.susp == nil }

// Effect returns the pending effect.
// Panics when the program is done or performed a non-effect operation.
func (s *Stepper[A]) Effect() eff.Effect {
	if s.susp == nil {
		panic("efftest: no pending effect")
	}
	e, ok := s.susp.Op().(eff.Effect)
	if !ok {
		panic(fmt.Sprintf("efftest: non-effect operation %T performed in program", s.susp.Op()))
	}
	return e
}

// Resume hands the pending effect its outcome and advances the
// program to the next suspension or to completion. outcome's dynamic
// type must match the effect's outcome type or the resume panics.
func (s *Stepper[A]) Resume(outcome any) {
	if s.susp == nil {
		panic("efftest: no pending effect")
	}
	s.value, s.susp = s.susp.Resume(outcome)
}

// Abort abandons the program without resuming the pending effect,
// mirroring the runner's fail-fast path. Aborting a done program is a
// no-op.
func (s *Stepper[A]) Abort() {
	if s.susp == nil {
		return
	}
	s.susp.Discard()
	s.susp = nil
	s.aborted = true
}

// Value returns the terminal value of a completed program.
// Panics while effects are pending or after Abort.
func (s *Stepper[A]) Value() A {
	if s.susp != nil {
		panic("efftest: program still pending")
	}
	if s.aborted {
		panic("efftest: program aborted")
	}
	return s.value
}
