// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory

import (
	"context"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"

	"code.hybscloud.com/eff"
)

// frameCapacity is the bounded capacity for loopback frame queues.
// 16 amortizes producer-side cached-index refresh cost while keeping
// a conversation's worth of frames buffered without peer progress.
const frameCapacity = 16

// closeFrame records who closed the pair and why. Published once by
// the first closer.
type closeFrame struct {
	code   int
	reason string
}

// loopbackPair holds both connections, queues, and shared close state
// in a single allocation. SPSC queues are embedded as values; only the
// ring buffers are separate heap objects.
type loopbackPair struct {
	a      Loopback
	b      Loopback
	closed atomix.Uint32
	frame  atomic.Pointer[closeFrame]
	textAB lfq.SPSC[string]
	textBA lfq.SPSC[string]
}

// Loopback is one side of an in-process connection pair implementing
// eff.Conn. Each direction is a single-producer single-consumer
// bounded queue, so each side must be driven by at most one goroutine.
//
// I/O is non-blocking at the queue and converted to blocking here:
// a full send queue or empty receive queue backs off adaptively until
// the peer makes progress, the pair closes, or ctx is done.
type Loopback struct {
	sendQ    *lfq.SPSC[string]
	recvQ    *lfq.SPSC[string]
	closed   *atomix.Uint32
	frame    *atomic.Pointer[closeFrame]
	sendSlot string
	serial   Serial
}

// Pipe creates a connected loopback pair. Frames written to one side
// are received by the other in FIFO order.
func Pipe() (*Loopback, *Loopback) {
	s := nextSerial()

	pair := &loopbackPair{}
	pair.textAB.Init(frameCapacity)
	pair.textBA.Init(frameCapacity)

	pair.a = Loopback{
		sendQ:  &pair.textAB,
		recvQ:  &pair.textBA,
		closed: &pair.closed,
		frame:  &pair.frame,
		serial: s,
	}
	pair.b = Loopback{
		sendQ:  &pair.textBA,
		recvQ:  &pair.textAB,
		closed: &pair.closed,
		frame:  &pair.frame,
		serial: s,
	}
	return &pair.a, &pair.b
}

// Serial returns the serial number assigned to this side's pair.
// Both sides of a pair share the serial.
func (l *Loopback) Serial() Serial {
	return l.serial
}

// IsOpen implements eff.Conn. Never blocks.
func (l *Loopback) IsOpen() bool {
	return l.closed.Add(0) == 0
}

// SendText implements eff.Conn. Blocks while the peer's receive queue
// is full, backing off with iox.Backoff.
func (l *Loopback) SendText(ctx context.Context, text string) error {
	var bo iox.Backoff
	for {
		if !l.IsOpen() {
			return l.closedError()
		}
		l.sendSlot = text
		err := l.sendQ.Enqueue(&l.sendSlot)
		if err == nil {
			return nil
		}
		if !iox.IsWouldBlock(err) {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		bo.Wait()
	}
}

// ReceiveText implements eff.Conn. Frames sent before a close remain
// receivable; the queue drains before the close error surfaces.
func (l *Loopback) ReceiveText(ctx context.Context) (string, error) {
	var bo iox.Backoff
	for {
		text, err := l.recvQ.Dequeue()
		if err == nil {
			return text, nil
		}
		if !iox.IsWouldBlock(err) {
			return "", err
		}
		if !l.IsOpen() {
			return "", l.closedError()
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		bo.Wait()
	}
}

// Close implements eff.Conn. The first close on either side wins and
// publishes its frame; later operations on both sides report it.
// Closing an already closed pair returns the winning frame's error.
func (l *Loopback) Close(code int, reason string) error {
	if l.closed.Add(1) == 1 {
		l.frame.Store(&closeFrame{code: code, reason: reason})
		return nil
	}
	return l.closedError()
}

// closedError builds the close error from the published frame. A peer
// racing the closer may observe the pair closed before the frame is
// published; that window reports abnormal closure, as a real transport
// would.
func (l *Loopback) closedError() error {
	if f := l.frame.Load(); f != nil {
		return &eff.SocketClosedError{Code: f.code, Reason: f.reason}
	}
	return &eff.SocketClosedError{Code: 1006, Reason: "connection closed"}
}
