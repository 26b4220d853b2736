// Package scope defines the named formatting scopes an editor can toggle
// (bold, heading, link, ...) and the registry that maps them to markup tags.
package scope

import (
	"fmt"
	"math/bits"
)

// MaxScopes is the largest number of scopes a Registry can hold.
const MaxScopes = 64

// Status is the runtime state of a scope at the caret.
type Status int

const (
	Inactive Status = iota
	Active
	Disabled
)

func (s Status) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Disabled:
		return "disabled"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Scope is a named formatting concern with its markup tag.
type Scope struct {
	Key string
	Tag string
	// Block scopes apply to the whole paragraph instead of the selection.
	Block bool
	// Touch scopes are tappable inline spans such as links.
	Touch bool
	// Exclusive lists scopes deactivated when this one becomes active.
	Exclusive []string
	// Disables lists scopes disabled while this one is active.
	Disables []string
}

// Set is a set of scopes belonging to one Registry. Bit i stands for the
// i-th registered scope, so iteration order is registration order and two
// sets compare equal with ==. The zero Set carries no scopes and marks
// unstyled text.
type Set uint64

func (s Set) IsEmpty() bool {
	return s == 0
}

func (s Set) Len() int {
	return bits.OnesCount64(uint64(s))
}

func (s Set) Union(o Set) Set {
	return s | o
}

func (s Set) Without(o Set) Set {
	return s &^ o
}

func (s Set) Intersects(o Set) bool {
	return s&o != 0
}

// Indexes returns registry indexes of the members in registration order.
func (s Set) Indexes() []int {
	out := make([]int, 0, s.Len())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros64(v))
	}
	return out
}
