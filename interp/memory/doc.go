// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package memory provides in-process capability backends: a revisioned
// record store, a TTL cache, a pub/sub hub with ack/nack redelivery,
// and a loopback connection pair.
//
// All backends live entirely in memory and are safe for concurrent
// use. The store, cache, and hub never fail for infrastructure
// reasons; the only errors they return are contract violations such
// as consuming from an unknown subscription.
//
// The loopback pair is backed by bounded lock-free SPSC queues from
// lfq, one per direction, with a shared atomic close counter. It is
// the in-process stand-in for a network connection: same close-code
// semantics, same blocking behavior, no sockets.
package memory
