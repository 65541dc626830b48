// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sqlite

import (
	"errors"
	"io"
	"testing"

	sqlite3 "github.com/mattn/go-sqlite3"

	"code.hybscloud.com/eff"
)

func TestClassifyResultCodes(t *testing.T) {
	cases := []struct {
		name      string
		code      sqlite3.ErrNo
		transient bool
	}{
		{"busy", sqlite3.ErrBusy, true},
		{"locked", sqlite3.ErrLocked, true},
		{"interrupt", sqlite3.ErrInterrupt, true},
		{"constraint", sqlite3.ErrConstraint, false},
		{"mismatch", sqlite3.ErrMismatch, false},
	}
	for _, c := range cases {
		err := classify(sqlite3.Error{Code: c.code})
		if got := eff.TransientCause(err); got != c.transient {
			t.Errorf("%s classified transient=%v, want %v", c.name, got, c.transient)
		}
	}
}

func TestClassifyKeepsCause(t *testing.T) {
	err := classify(sqlite3.Error{Code: sqlite3.ErrConstraint})

	var se sqlite3.Error
	if !errors.As(err, &se) {
		t.Fatal("classified error lost the driver cause")
	}
	if se.Code != sqlite3.ErrConstraint {
		t.Fatalf("got code %d, want %d", se.Code, sqlite3.ErrConstraint)
	}
}

func TestClassifyPassesThroughNonDriver(t *testing.T) {
	if err := classify(io.EOF); err != io.EOF {
		t.Fatalf("non-driver error rewrapped: %v", err)
	}
	if err := classify(nil); err != nil {
		t.Fatalf("nil rewrapped: %v", err)
	}
}
