// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rocketmq provides a broker backend over Apache RocketMQ.
// Publishing is a synchronous send; consuming bridges the client's
// push model to the poll model: each pushed message is parked until
// the consuming program acks or nacks it, and the park's outcome
// becomes the push callback's verdict.
//
// A nack's delay maps to the broker's fixed delay-level ladder, the
// smallest level covering the requested delay. A delivery neither
// acked nor nacked within the park timeout is released for
// redelivery, so a crashed or abandoned program cannot hold messages
// forever.
package rocketmq
