// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package eff

// Category partitions the effect taxonomy into disjoint capability groups.
// Every concrete effect belongs to exactly one category, and a composite
// interpreter routes by category alone.
type Category uint8

const (
	CategoryStorage Category = iota
	CategoryCache
	CategoryMessaging
	CategorySocket
	CategoryAuth
)

// categoryNames is indexed by Category. Used for effect names,
// diagnostics, and metric labels.
var categoryNames = [...]string{
	CategoryStorage:   "storage",
	CategoryCache:     "cache",
	CategoryMessaging: "messaging",
	CategorySocket:    "socket",
	CategoryAuth:      "auth",
}

// String returns the lowercase category name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Effect is the closed union of effect operations accepted by the runtime.
// An effect is an immutable description of one unit of I/O: constructing
// one performs nothing, and it is consumed by exactly one interpreter
// dispatch. The set of implementations is sealed to this package; a
// composite interpreter may therefore dispatch by Category exhaustively.
type Effect interface {
	// Category returns the capability group this effect belongs to.
	Category() Category
	// EffectName returns the stable dotted name of the variant,
	// e.g. "storage.lookup". Used in diagnostics, audit records,
	// and metric labels.
	EffectName() string

	sealedEffect()
}

// mustNonEmpty panics if an identifier argument is empty.
// Effect constructors validate only what needs no I/O; an empty
// identifier is a programming defect, not an interpreter error.
func mustNonEmpty(field, v string) {
	if v == "" {
		panic("eff: empty " + field)
	}
}
