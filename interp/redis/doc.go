// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package redis provides cache and broker backends over a Redis
// server: a byte cache with per-key TTLs, and a pub/sub broker on
// Redis Streams with consumer groups.
//
// Stream entries carry the payload and message properties as entry
// fields. Publish receipts are stream-qualified entry ids
// ("jobs/1526919030474-55"); delivery ids append the subscription
// ("...@jobs-sub") so acknowledgments stay unambiguous when several
// groups read one stream.
//
// Server reply codes decide retryability: LOADING, READONLY, TRYAGAIN
// and cluster redirections are transient, command and type errors are
// structural. Connection-level failures fall through to the generic
// network heuristics.
package redis
