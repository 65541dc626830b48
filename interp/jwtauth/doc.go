// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package jwtauth provides an authority over HMAC-signed JWTs and a
// role policy table. The accepted signing method is pinned to HS256;
// tokens carrying any other algorithm are rejected before signature
// checking.
//
// The authority is infallible: malformed tokens, bad signatures,
// expiry, and policy refusals all fold into invalid or denied
// outcomes with a reason, never an error.
package jwtauth
