// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"
	"fmt"

	"code.hybscloud.com/kont"
)

// Run drives p against it to completion on the calling goroutine.
// Each suspension yields exactly one effect; the runner interprets
// it, resumes the program with the outcome, and repeats. The first
// Err from the interpreter abandons the rest of the program and
// becomes the run's result; effects after the failing one are never
// interpreted. A program that suspends zero times never touches the
// interpreter at all.
//
// ctx is handed to the interpreter for its own I/O deadlines. The
// runner itself does not watch ctx between steps: a program is a
// finite description and cancelling one mid-run would leave the
// failing-effect contract ambiguous.
//
// Performing anything other than an Effect is a defect and panics.
// Resuming an abandoned program is a defect too; the runner discards
// the suspension it abandons, so a later resume panics in kont.
func Run[A any](ctx context.Context, p Program[A], it Interpreter) Result[A, InterpreterError] {
	v, susp := kont.Step(p)
	for susp != nil {
		e, isEffect := susp.Op().(Effect)
		if !isEffect {
			panic(fmt.Sprintf("eff: non-effect operation %T performed in program", susp.Op()))
		}
		res := it.Interpret(ctx, e)
		ret, interpreted := res.Get()
		if !interpreted {
			ierr, _ := res.GetErr()
			susp.Discard()
			return Err[A, InterpreterError](ierr)
		}
		v, susp = susp.Resume(ret.Value)
	}
	return Ok[A, InterpreterError](v)
}
