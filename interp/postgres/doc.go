// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package postgres provides an eff.Storage backend on PostgreSQL.
//
// Records live in one table keyed (collection, id); Persist is an
// upsert that bumps the stored revision. Failures carry a SQLSTATE
// retryability verdict that eff.TransientCause honors: connection
// trouble and transaction rollbacks are transient, malformed
// statements and constraint violations are structural.
package postgres
