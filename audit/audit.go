// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package audit decorates interpreters with structured audit records.
// Every interpreted effect emits one zerolog event carrying a fresh
// audit id, the interpreter and effect identity, the outcome, and the
// wall time the dispatch took. The delegate's result passes through
// untouched, so audited and bare interpreters are interchangeable.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"code.hybscloud.com/eff"
)

// Interpreter is an auditing decorator around a delegate interpreter.
type Interpreter struct {
	delegate eff.Interpreter
	logger   zerolog.Logger
}

var _ eff.Interpreter = (*Interpreter)(nil)

// New decorates delegate with audit records written to logger.
func New(delegate eff.Interpreter, logger zerolog.Logger) *Interpreter {
	return &Interpreter{
		delegate: delegate,
		logger:   logger.With().Str("component", "audit").Logger(),
	}
}

// Name reports the delegate's name; the decorator is transparent.
func (a *Interpreter) Name() string { return a.delegate.Name() }

// Interpret forwards e to the delegate and records its verdict.
// Successful dispatches log at info, failed ones at warn with the
// error and its retryability.
func (a *Interpreter) Interpret(ctx context.Context, e eff.Effect) eff.Result[eff.EffectReturn, eff.InterpreterError] {
	started := time.Now()
	res := a.delegate.Interpret(ctx, e)
	elapsed := time.Since(started)

	var evt *zerolog.Event
	if err, failed := res.GetErr(); failed {
		evt = a.logger.Warn().
			Str("outcome", "err").
			Str("error", err.Error()).
			Bool("is_retryable", err.Retryable())
	} else {
		evt = a.logger.Info().Str("outcome", "ok")
	}
	evt.Str("audit_id", uuid.NewString()).
		Str("interpreter", a.delegate.Name()).
		Str("category", e.Category().String()).
		Str("effect", e.EffectName()).
		Dur("duration", elapsed).
		Msg("effect interpreted")
	return res
}
