// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package efftest provides test doubles for effect programs: scripted
// stub interpreters, a manual stepper, and result matchers. Nothing in
// here touches real I/O, so program logic is testable without any
// backend.
package efftest

import (
	"context"
	"fmt"

	"code.hybscloud.com/eff"
)

// Step is one scripted interpreter response.
type Step struct {
	value any
	err   eff.InterpreterError
}

// Return scripts an Ok response carrying the effect's outcome value.
func Return(v any) Step { return Step{value: v} }

// Fail scripts an Err response.
func Fail(err eff.InterpreterError) Step { return Step{err: err} }

// Stub is a scripted interpreter. It records every effect it is asked
// to interpret and answers from its script. Not safe for concurrent
// use; effect programs are single-threaded by contract.
type Stub struct {
	script    []Step
	fixed     Step
	scripted  bool
	interpret func(e eff.Effect) Step
	effects   []eff.Effect
}

// Fixed returns a stub answering every effect with Ok(v).
// Suitable for programs whose effects all share one outcome type.
func Fixed(v any) *Stub {
	return &Stub{fixed: Return(v)}
}

// Failing returns a stub answering every effect with Err(err).
func Failing(err eff.InterpreterError) *Stub {
	return &Stub{fixed: Fail(err)}
}

// Script returns a stub answering effects in order from steps.
// Running past the end of the script panics: a test that performs
// more effects than it scripted is broken.
func Script(steps ...Step) *Stub {
	return &Stub{script: steps, scripted: true}
}

// Func returns a stub that derives each response from the effect
// itself, for scripts that depend on effect payloads.
func Func(f func(e eff.Effect) Step) *Stub {
	return &Stub{interpret: f}
}

func (s *Stub) Name() string { return "stub" }

func (s *Stub) Interpret(_ context.Context, e eff.Effect) eff.Result[eff.EffectReturn, eff.InterpreterError] {
	s.effects = append(s.effects, e)
	st := s.fixed
	switch {
	case s.interpret != nil:
		st = s.interpret(e)
	case s.scripted:
		if len(s.script) == 0 {
			panic(fmt.Sprintf("efftest: script exhausted at effect %d (%s)", len(s.effects), e.EffectName()))
		}
		st = s.script[0]
		s.script = s.script[1:]
	}
	if st.err != nil {
		return eff.Err[eff.EffectReturn, eff.InterpreterError](st.err)
	}
	return eff.Ok[eff.EffectReturn, eff.InterpreterError](eff.EffectReturn{Effect: e.EffectName(), Value: st.value})
}

// Calls reports how many effects reached the stub.
func (s *Stub) Calls() int { return len(s.effects) }

// Effects returns the effects in interpretation order.
func (s *Stub) Effects() []eff.Effect { return s.effects }

// EffectNames returns the effect names in interpretation order.
func (s *Stub) EffectNames() []string {
	names := make([]string, len(s.effects))
	for i, e := range s.effects {
		names[i] = e.EffectName()
	}
	return names
}
