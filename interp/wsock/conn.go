// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wsock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/eff"
)

// closeGrace bounds how long a close frame may wait for the transport.
const closeGrace = time.Second

// closeFrame records who closed the connection and why. Published once
// by whichever side's verdict lands first.
type closeFrame struct {
	code   int
	reason string
}

// Conn is one websocket connection implementing eff.Conn. Writes are
// serialized; gorilla allows one concurrent writer per connection.
// Each side must drive receives from at most one goroutine.
type Conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	closed  atomix.Uint32
	frame   atomic.Pointer[closeFrame]
}

// New wraps an upgraded or dialed websocket connection.
func New(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Dial connects to url and wraps the connection. The handshake
// response body is closed on failure.
func Dial(ctx context.Context, url string, header http.Header) (*Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("wsock: dial %s: %w", url, err)
	}
	return New(ws), nil
}

var upgrader = websocket.Upgrader{}

// Upgrade hijacks an HTTP request into a websocket connection. The
// default origin policy applies: cross-origin browser requests are
// rejected.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("wsock: upgrade: %w", err)
	}
	return New(ws), nil
}

// IsOpen implements eff.Conn. Never blocks; a silently dead transport
// reads open until an operation fails on it.
func (c *Conn) IsOpen() bool {
	return c.closed.Add(0) == 0
}

// SendText implements eff.Conn. A ctx deadline bounds the write.
func (c *Conn) SendText(ctx context.Context, text string) error {
	if !c.IsOpen() {
		return c.closedError(nil)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return c.fail(err)
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return c.fail(err)
	}
	return nil
}

// ReceiveText implements eff.Conn. A ctx deadline bounds the read;
// when it expires the connection is finished, not just the read.
// Binary frames are a protocol violation on a text-only connection and
// close it with 1003.
func (c *Conn) ReceiveText(ctx context.Context) (string, error) {
	if !c.IsOpen() {
		return "", c.closedError(nil)
	}
	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return "", c.fail(err)
	}
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() && ctx.Err() != nil {
			err = ctx.Err()
		}
		return "", c.fail(err)
	}
	if kind != websocket.TextMessage {
		c.closeOnce(websocket.CloseUnsupportedData, "text frames only", true)
		return "", c.closedError(nil)
	}
	return string(data), nil
}

// Close implements eff.Conn. The first close wins and publishes its
// frame; closing again returns the winning frame's error.
func (c *Conn) Close(code int, reason string) error {
	if !c.closeOnce(code, reason, true) {
		return c.closedError(nil)
	}
	return nil
}

// closeOnce records the frame and tears the transport down if this is
// the first close, reporting whether it won. handshake sends the close
// frame to the peer first; failure paths skip it, the peer is gone or
// has already spoken.
func (c *Conn) closeOnce(code int, reason string, handshake bool) bool {
	if c.closed.Add(1) != 1 {
		return false
	}
	c.frame.Store(&closeFrame{code: code, reason: reason})
	if handshake {
		msg := websocket.FormatCloseMessage(code, reason)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		c.writeMu.Unlock()
	}
	_ = c.ws.Close()
	return true
}

// fail finishes the connection on a transport error. A peer close
// frame keeps its code and reason; everything else reads as abnormal
// closure.
func (c *Conn) fail(err error) error {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		c.closeOnce(ce.Code, ce.Text, false)
	} else {
		c.closeOnce(websocket.CloseAbnormalClosure, err.Error(), false)
	}
	return c.closedError(err)
}

// closedError builds the close error from the published frame. An
// operation racing the closer may observe the connection closed before
// the frame is published; that window reports abnormal closure.
func (c *Conn) closedError(cause error) error {
	if f := c.frame.Load(); f != nil {
		return &eff.SocketClosedError{Code: f.code, Reason: f.reason, Cause: cause}
	}
	return &eff.SocketClosedError{Code: websocket.CloseAbnormalClosure, Reason: "connection closed", Cause: cause}
}
