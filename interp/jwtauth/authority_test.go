// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package jwtauth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"code.hybscloud.com/kont"

	"code.hybscloud.com/eff"
	"code.hybscloud.com/eff/efftest"
	"code.hybscloud.com/eff/interp/jwtauth"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func signTest(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return token
}

func testPolicy() jwtauth.Policy {
	return jwtauth.Policy{
		Bindings: map[string][]string{
			"u-admin":  {"admin"},
			"u-reader": {"reader"},
		},
		Grants: map[string][]jwtauth.Rule{
			"admin":  {{Action: "*", Resource: "*"}},
			"reader": {{Action: "read", Resource: "orders"}},
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	authority := jwtauth.New(jwtauth.Config{Key: testKey})
	token := signTest(t, testKey, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	out := authority.VerifyToken(context.Background(), token)
	claims, ok := out.Valid()
	if !ok {
		reason, _ := out.Invalid()
		t.Fatalf("token rejected: %s", reason)
	}
	if claims["sub"] != "u-1" {
		t.Fatalf("sub claim %v, want u-1", claims["sub"])
	}
}

func TestVerifyRejections(t *testing.T) {
	otherKey := []byte("ffffffffffffffffffffffffffffffff")
	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	cases := []struct {
		name   string
		token  string
		reason string
	}{
		{
			"expired",
			signTest(t, testKey, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()}),
			"token expired",
		},
		{
			"wrong key",
			signTest(t, otherKey, jwt.MapClaims{"sub": "u-1"}),
			"signature invalid",
		},
		{
			"unsigned algorithm",
			noneSigned,
			"signature invalid",
		},
		{
			"not yet valid",
			signTest(t, testKey, jwt.MapClaims{"sub": "u-1", "nbf": time.Now().Add(time.Hour).Unix()}),
			"token not yet valid",
		},
		{
			"malformed",
			"not.a.token",
			"token malformed",
		},
	}

	authority := jwtauth.New(jwtauth.Config{Key: testKey})
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := authority.VerifyToken(context.Background(), c.token)
			reason, invalid := out.Invalid()
			if !invalid {
				t.Fatal("bad token accepted")
			}
			if reason != c.reason {
				t.Fatalf("reason %q, want %q", reason, c.reason)
			}
		})
	}
}

func TestVerifyPinnedIssuer(t *testing.T) {
	authority := jwtauth.New(jwtauth.Config{Key: testKey, Issuer: "effd"})

	foreign := signTest(t, testKey, jwt.MapClaims{"sub": "u-1", "iss": "someone else"})
	out := authority.VerifyToken(context.Background(), foreign)
	if reason, _ := out.Invalid(); reason != "issuer mismatch" {
		t.Fatalf("reason %q, want issuer mismatch", reason)
	}

	own := signTest(t, testKey, jwt.MapClaims{"sub": "u-1", "iss": "effd"})
	if _, ok := authority.VerifyToken(context.Background(), own).Valid(); !ok {
		t.Fatal("token with pinned issuer rejected")
	}
}

func TestVerifyLeewayAbsorbsSkew(t *testing.T) {
	authority := jwtauth.New(jwtauth.Config{Key: testKey, Leeway: time.Minute})
	justExpired := signTest(t, testKey, jwt.MapClaims{
		"sub": "u-1",
		"exp": time.Now().Add(-10 * time.Second).Unix(),
	})

	if _, ok := authority.VerifyToken(context.Background(), justExpired).Valid(); !ok {
		t.Fatal("token within leeway rejected")
	}
}

func TestCheckAccess(t *testing.T) {
	authority := jwtauth.New(jwtauth.Config{Key: testKey, Policy: testPolicy()})
	ctx := context.Background()

	cases := []struct {
		name                      string
		subject, action, resource string
		granted                   bool
	}{
		{"admin wildcard", "u-admin", "delete", "orders", true},
		{"reader exact grant", "u-reader", "read", "orders", true},
		{"reader wrong action", "u-reader", "write", "orders", false},
		{"reader wrong resource", "u-reader", "read", "payments", false},
		{"unknown subject", "u-ghost", "read", "orders", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := authority.CheckAccess(ctx, c.subject, c.action, c.resource)
			if out.Granted() != c.granted {
				reason, _ := out.Denied()
				t.Fatalf("granted=%v (%s), want %v", out.Granted(), reason, c.granted)
			}
		})
	}
}

func TestDenialCarriesReason(t *testing.T) {
	authority := jwtauth.New(jwtauth.Config{Key: testKey, Policy: testPolicy()})

	out := authority.CheckAccess(context.Background(), "u-reader", "write", "orders")
	reason, denied := out.Denied()
	if !denied || reason != "no role grants write on orders" {
		t.Fatalf("reason %q, want %q", reason, "no role grants write on orders")
	}
}

// TestThroughInterpreter verifies a token and checks access in one
// program against the auth interpreter.
func TestThroughInterpreter(t *testing.T) {
	authority := jwtauth.New(jwtauth.Config{Key: testKey, Policy: testPolicy()})
	token := signTest(t, testKey, jwt.MapClaims{
		"sub": "u-reader",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	program := eff.VerifyBind(token, func(out eff.TokenOutcome) eff.Program[bool] {
		claims, ok := out.Valid()
		if !ok {
			return eff.Done(false)
		}
		sub, _ := claims["sub"].(string)
		return kont.Map(eff.Access(sub, "read", "orders"), eff.AccessOutcome.Granted)
	})

	res := eff.Run(context.Background(), program, eff.NewAuthInterpreter(authority))
	if granted := efftest.MustOk(t, res); !granted {
		t.Fatal("reader denied read on orders")
	}
}
