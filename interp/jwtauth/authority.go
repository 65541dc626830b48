// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"code.hybscloud.com/eff"
)

// Rule grants one action on one resource. "*" matches any action or
// any resource.
type Rule struct {
	Action   string
	Resource string
}

func (r Rule) permits(action, resource string) bool {
	return matches(r.Action, action) && matches(r.Resource, resource)
}

func matches(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// Policy binds subjects to roles and roles to grants. Access is
// default-deny: a subject with no matching grant is refused.
type Policy struct {
	Bindings map[string][]string
	Grants   map[string][]Rule
}

// Config configures an Authority. Key is the HS256 signing secret.
// Issuer, when set, pins the iss claim. Leeway allows bounded clock
// skew on time-based claims.
type Config struct {
	Key    []byte
	Issuer string
	Leeway time.Duration
	Policy Policy
}

// Authority verifies HS256 bearer tokens and answers access checks
// from a role policy table. It implements eff.Authority.
type Authority struct {
	key    []byte
	parser *jwt.Parser
	policy Policy
}

var _ eff.Authority = (*Authority)(nil)

// New creates an Authority from cfg. Panics on an empty key; running
// with no secret verifies nothing.
func New(cfg Config) *Authority {
	if len(cfg.Key) == 0 {
		panic("jwtauth: empty signing key")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &Authority{
		key:    cfg.Key,
		parser: jwt.NewParser(opts...),
		policy: cfg.Policy,
	}
}

// VerifyToken parses and verifies token, folding every failure mode
// into an invalid outcome with a reason.
func (a *Authority) VerifyToken(ctx context.Context, token string) eff.TokenOutcome {
	parsed, err := a.parser.Parse(token, a.keyFor)
	if err != nil {
		return eff.TokenInvalid(rejectReason(err))
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return eff.TokenInvalid("unexpected claims shape")
	}
	claims := make(eff.Claims, len(mc))
	for k, v := range mc {
		claims[k] = v
	}
	return eff.TokenValid(claims)
}

func (a *Authority) keyFor(*jwt.Token) (interface{}, error) {
	return a.key, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "token not yet valid"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "issuer mismatch"
	default:
		return "token invalid"
	}
}

// CheckAccess walks the subject's roles looking for a grant that
// permits action on resource.
func (a *Authority) CheckAccess(ctx context.Context, subject, action, resource string) eff.AccessOutcome {
	roles := a.policy.Bindings[subject]
	if len(roles) == 0 {
		return eff.AccessDenied("subject has no roles")
	}
	for _, role := range roles {
		for _, rule := range a.policy.Grants[role] {
			if rule.permits(action, resource) {
				return eff.AccessGranted()
			}
		}
	}
	return eff.AccessDenied(fmt.Sprintf("no role grants %s on %s", action, resource))
}
