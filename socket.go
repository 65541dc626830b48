// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"

	"code.hybscloud.com/kont"
)

// Sent acknowledges a completed text send.
type Sent struct{}

// Closed acknowledges a completed close handshake.
type Closed struct{}

// SocketProbe is the effect operation for checking connection liveness.
// Perform(SocketProbe{}) resumes with a bool: true while the
// connection is open.
type SocketProbe struct {
	kont.Phantom[bool]
}

func (SocketProbe) Category() Category { return CategorySocket }
func (SocketProbe) EffectName() string { return "socket.probe" }
func (SocketProbe) sealedEffect() {}

// SocketSend is the effect operation for sending one text frame.
// Perform(SocketSend{...}) resumes with Sent.
type SocketSend struct {
	kont.Phantom[Sent]
	Text string
}

func (SocketSend) Category() Category { return CategorySocket }
func (SocketSend) EffectName() string { return "socket.send" }
func (SocketSend) sealedEffect() {}

// SocketReceive is the effect operation for receiving one text frame.
// Perform(SocketReceive{}) resumes with the received string.
type SocketReceive struct {
	kont.Phantom[string]
}

func (SocketReceive) Category() Category { return CategorySocket }
func (SocketReceive) EffectName() string { return "socket.receive" }
func (SocketReceive) sealedEffect() {}

// SocketClose is the effect operation for closing the connection with a
// close code and reason.
// Perform(SocketClose{...}) resumes with Closed.
type SocketClose struct {
	kont.Phantom[Closed]
	Code   int
	Reason string
}

func (SocketClose) Category() Category { return CategorySocket }
func (SocketClose) EffectName() string { return "socket.close" }
func (SocketClose) sealedEffect() {}

// ProbeSocket yields a SocketProbe effect and resumes with liveness.
func ProbeSocket() Program[bool] {
	return kont.Perform(SocketProbe{})
}

// SendText yields a SocketSend effect and resumes with Sent.
func SendText(text string) Program[Sent] {
	return kont.Perform(SocketSend{Text: text})
}

// ReceiveText yields a SocketReceive effect and resumes with the frame.
func ReceiveText() Program[string] {
	return kont.Perform(SocketReceive{})
}

// CloseSocket yields a SocketClose effect and resumes with Closed.
func CloseSocket(code int, reason string) Program[Closed] {
	return kont.Perform(SocketClose{Code: code, Reason: reason})
}

// Conn is the single-connection capability a socket interpreter drives.
// One interpreter owns one connection; programs needing several
// connections compose several socket interpreters at the caller level.
//
// SendText and ReceiveText report a peer gone away with an error the
// interpreter maps to SocketClosedError; IsOpen never blocks.
type Conn interface {
	IsOpen() bool
	SendText(ctx context.Context, text string) error
	ReceiveText(ctx context.Context) (string, error)
	Close(code int, reason string) error
}
