// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// transientClasses are the SQLSTATE classes a retry can plausibly fix:
// 08 connection exception, 40 transaction rollback (serialization
// failure, deadlock detected), 53 insufficient resources, 57 operator
// intervention (statement canceled, shutdown in progress).
//
// Everything else, notably 22 data exception, 23 integrity constraint
// violation, and 42 syntax or access rule violation, is structural:
// the statement will fail the same way again.
var transientClasses = map[pq.ErrorClass]bool{
	"08": true,
	"40": true,
	"53": true,
	"57": true,
}

// stateError carries the SQLSTATE retryability verdict past
// eff.TransientCause's generic heuristics.
type stateError struct {
	cause     error
	transient bool
}

func (e *stateError) Error() string   { return e.cause.Error() }
func (e *stateError) Unwrap() error   { return e.cause }
func (e *stateError) Transient() bool { return e.transient }

// classify wraps pq errors with their class verdict. Non-pq errors
// (driver setup, network) pass through to the generic heuristics.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &stateError{cause: err, transient: transientClasses[pqErr.Code.Class()]}
	}
	return err
}
