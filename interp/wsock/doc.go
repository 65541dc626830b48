// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wsock adapts gorilla/websocket connections to the
// single-connection socket capability, one adapter per connection on
// both the dialing and the accepting side.
//
// Peer close frames keep their code and reason through the adapter,
// so a program failing on a closed socket sees what the peer said.
// Read errors are permanent in gorilla, deadline expiries included,
// so the first failed receive finishes the connection.
package wsock
