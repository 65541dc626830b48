// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"
)

// Categories binds one interpreter per effect category. A nil slot
// leaves that category uncovered; effects routed there come back as
// UnhandledEffectError.
type Categories struct {
	Storage   Interpreter
	Cache     Interpreter
	Messaging Interpreter
	Socket    Interpreter
	Auth      Interpreter
}

// NewComposite builds an interpreter that routes each effect to the
// category interpreter owning it. Routing looks only at the effect's
// category, so a program never observes which backend serves it.
func NewComposite(c Categories) Interpreter {
	return &composite{categories: c}
}

type composite struct {
	categories Categories
}

func (*composite) Name() string { return "composite" }

func (ci *composite) Interpret(ctx context.Context, e Effect) Result[EffectReturn, InterpreterError] {
	var it Interpreter
	switch e.Category() {
	case CategoryStorage:
		it = ci.categories.Storage
	case CategoryCache:
		it = ci.categories.Cache
	case CategoryMessaging:
		it = ci.categories.Messaging
	case CategorySocket:
		it = ci.categories.Socket
	case CategoryAuth:
		it = ci.categories.Auth
	}
	if it == nil {
		return unhandled(e, ci.Name())
	}
	return it.Interpret(ctx, e)
}
