// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package redis

import (
	"net"
	"syscall"
	"testing"

	"code.hybscloud.com/eff"
)

// serverReply mimics a raw server reply the way the client library
// reports one.
type serverReply string

func (e serverReply) Error() string { return string(e) }
func (serverReply) RedisError()     {}

func TestClassifyReplyPrefixes(t *testing.T) {
	cases := []struct {
		reply     string
		transient bool
	}{
		{"LOADING Redis is loading the dataset in memory", true},
		{"READONLY You can't write against a read only replica.", true},
		{"TRYAGAIN Multiple keys request during rehashing of slot", true},
		{"MOVED 3999 127.0.0.1:6381", true},
		{"CLUSTERDOWN The cluster is down", true},
		{"WRONGTYPE Operation against a key holding the wrong kind of value", false},
		{"ERR syntax error", false},
		{"NOAUTH Authentication required.", false},
	}
	for _, c := range cases {
		err := classify(serverReply(c.reply))
		if got := eff.TransientCause(err); got != c.transient {
			t.Errorf("%q classified transient=%v, want %v", c.reply, got, c.transient)
		}
	}
}

func TestClassifyPassesThroughDialErrors(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	if err := classify(cause); err != cause {
		t.Fatalf("connection error rewrapped: %v", err)
	}
	// The generic network heuristics still call it transient.
	if !eff.TransientCause(cause) {
		t.Fatal("refused connection not transient")
	}
}
