// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package redis

import (
	"errors"
	"strings"

	goredis "github.com/go-redis/redis/v8"
)

// Reply prefixes where the server asks the caller to come back later:
// replica promotion, cluster reshuffling, a script still loading.
// Everything else the server says (WRONGTYPE, ERR, NOAUTH) is
// structural.
var transientReplies = map[string]bool{
	"LOADING":     true,
	"READONLY":    true,
	"CLUSTERDOWN": true,
	"MASTERDOWN":  true,
	"TRYAGAIN":    true,
	"MOVED":       true,
	"ASK":         true,
}

type replyError struct {
	cause     error
	transient bool
}

func (e *replyError) Error() string { return e.cause.Error() }
func (e *replyError) Unwrap() error { return e.cause }

// Transient reports the verdict derived from the reply prefix.
func (e *replyError) Transient() bool { return e.transient }

// classify tags server replies with a retryability verdict keyed on
// the reply's first word. Non-reply errors (dial failures, timeouts)
// pass through untouched.
func classify(err error) error {
	var re goredis.Error
	if errors.As(err, &re) {
		prefix, _, _ := strings.Cut(re.Error(), " ")
		return &replyError{cause: err, transient: transientReplies[prefix]}
	}
	return err
}
