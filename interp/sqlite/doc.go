// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sqlite provides a record store backed by an embedded SQLite
// database, suitable for single-node deployments and tests. Records
// live in the same eff_records table shape the postgres backend uses,
// with revisions bumped by an upsert.
//
// Driver result codes decide retryability: lock contention (BUSY,
// LOCKED, PROTOCOL) and interrupted statements are transient, while
// constraint and schema violations are structural.
package sqlite
