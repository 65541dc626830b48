// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sqlite

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Result codes where the engine asks the caller to retry once the
// competing lock or interrupted statement clears. Constraint, schema
// and misuse codes stay structural.
var transientCodes = map[sqlite3.ErrNo]bool{
	sqlite3.ErrBusy:      true,
	sqlite3.ErrLocked:    true,
	sqlite3.ErrProtocol:  true,
	sqlite3.ErrInterrupt: true,
}

type resultError struct {
	cause     error
	transient bool
}

func (e *resultError) Error() string { return e.cause.Error() }
func (e *resultError) Unwrap() error { return e.cause }

// Transient reports the verdict derived from the primary result code.
func (e *resultError) Transient() bool { return e.transient }

// classify tags driver errors with a retryability verdict. Non-driver
// errors pass through untouched.
func classify(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return &resultError{cause: err, transient: transientCodes[se.Code]}
	}
	return err
}
