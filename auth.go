// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

import (
	"context"

	"code.hybscloud.com/kont"
)

// Claims are the verified assertions carried by a token.
type Claims map[string]any

// TokenOutcome is the soft result of a token verification.
// An invalid token is never an interpreter error.
type TokenOutcome struct {
	valid  bool
	claims Claims
	reason string
}

// TokenValid creates an outcome carrying verified claims.
func TokenValid(claims Claims) TokenOutcome {
	return TokenOutcome{valid: true, claims: claims}
}

// TokenInvalid creates an outcome for a rejected token.
func TokenInvalid(reason string) TokenOutcome {
	return TokenOutcome{reason: reason}
}

// Valid returns the claims and true, or nil and false.
func (o TokenOutcome) Valid() (Claims, bool) {
	if o.valid {
		return o.claims, true
	}
	return nil, false
}

// Invalid returns the rejection reason and true, or empty and false.
func (o TokenOutcome) Invalid() (string, bool) {
	if !o.valid {
		return o.reason, true
	}
	return "", false
}

// AccessOutcome is the soft result of an access check.
// A denial is never an interpreter error.
type AccessOutcome struct {
	granted bool
	reason  string
}

// AccessGranted creates an outcome for a permitted action.
func AccessGranted() AccessOutcome {
	return AccessOutcome{granted: true}
}

// AccessDenied creates an outcome for a refused action.
func AccessDenied(reason string) AccessOutcome {
	return AccessOutcome{reason: reason}
}

// Granted returns true if the action is permitted.
func (o AccessOutcome) Granted() bool {
	return o.granted
}

// Denied returns the refusal reason and true, or empty and false.
func (o AccessOutcome) Denied() (string, bool) {
	if !o.granted {
		return o.reason, true
	}
	return "", false
}

// VerifyToken is the effect operation for verifying a bearer token.
// Perform(VerifyToken{...}) resumes with a TokenOutcome.
type VerifyToken struct {
	kont.Phantom[TokenOutcome]
	Token string
}

// NewVerifyToken creates a VerifyToken effect. Panics on an empty token.
func NewVerifyToken(token string) VerifyToken {
	mustNonEmpty("token", token)
	return VerifyToken{Token: token}
}

func (VerifyToken) Category() Category { return CategoryAuth }
func (VerifyToken) EffectName() string { return "auth.verify" }
func (VerifyToken) sealedEffect() {}

// CheckAccess is the effect operation for deciding whether a subject may
// perform an action on a resource.
// Perform(CheckAccess{...}) resumes with an AccessOutcome.
type CheckAccess struct {
	kont.Phantom[AccessOutcome]
	Subject  string
	Action   string
	Resource string
}

// NewCheckAccess creates a CheckAccess effect. Panics on empty arguments.
func NewCheckAccess(subject, action, resource string) CheckAccess {
	mustNonEmpty("subject", subject)
	mustNonEmpty("action", action)
	mustNonEmpty("resource", resource)
	return CheckAccess{Subject: subject, Action: action, Resource: resource}
}

func (CheckAccess) Category() Category { return CategoryAuth }
func (CheckAccess) EffectName() string { return "auth.access" }
func (CheckAccess) sealedEffect() {}

// Verify yields a VerifyToken effect and resumes with its outcome.
func Verify(token string) Program[TokenOutcome] {
	return kont.Perform(NewVerifyToken(token))
}

// Access yields a CheckAccess effect and resumes with its outcome.
func Access(subject, action, resource string) Program[AccessOutcome] {
	return kont.Perform(NewCheckAccess(subject, action, resource))
}

// Authority is the verification capability an auth interpreter drives.
// It is infallible by contract: every failure mode, including the
// authority's own infrastructure trouble, folds into an invalid or
// denied outcome with a reason. This is why the interpreter error
// union carries no auth variant.
type Authority interface {
	VerifyToken(ctx context.Context, token string) TokenOutcome
	CheckAccess(ctx context.Context, subject, action, resource string) AccessOutcome
}
