package typing

import (
	"slices"

	"github.com/kobzarvs/vtext/internal/scope"
)

// Transition is a cascade policy's answer to a toggle. Precedence when a key
// appears in several lists: Disable, then Deactivate, then Activate.
type Transition struct {
	Activate   []string
	Deactivate []string
	Disable    []string
}

// Policy decides which other scopes change when key is toggled.
// prevActive holds the keys active before the toggle, excluding key.
type Policy interface {
	OnToggle(key string, willBeActive bool, prevActive []string) Transition
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(key string, willBeActive bool, prevActive []string) Transition

func (f PolicyFunc) OnToggle(key string, willBeActive bool, prevActive []string) Transition {
	return f(key, willBeActive, prevActive)
}

// RulePolicy derives cascades from the registry's scope definitions:
//   - activating a scope deactivates the default scope, its Exclusive
//     partners, any active scope naming it as exclusive, and every other
//     block scope when it is a block scope; it disables its Disables list
//   - activating the default scope deactivates everything else
//   - deactivating a scope lifts the disables it imposed unless another
//     active scope still imposes them
type RulePolicy struct {
	reg *scope.Registry
}

func NewRulePolicy(reg *scope.Registry) *RulePolicy {
	return &RulePolicy{reg: reg}
}

func (p *RulePolicy) OnToggle(key string, willBeActive bool, prevActive []string) Transition {
	var t Transition
	sc, ok := p.reg.Scope(key)
	if !ok {
		return t
	}
	def := p.reg.DefaultKey()

	if !willBeActive {
		for _, k := range sc.Disables {
			if !p.disabledByOthers(k, prevActive) {
				t.Deactivate = append(t.Deactivate, k)
			}
		}
		return t
	}

	if key == def {
		for _, k := range p.reg.Keys() {
			if k != def {
				t.Deactivate = append(t.Deactivate, k)
			}
		}
		return t
	}

	t.Deactivate = append(t.Deactivate, def)
	t.Deactivate = append(t.Deactivate, sc.Exclusive...)
	for _, k := range prevActive {
		other, ok := p.reg.Scope(k)
		if !ok {
			continue
		}
		if slices.Contains(other.Exclusive, key) || (sc.Block && other.Block) {
			t.Deactivate = append(t.Deactivate, k)
		}
	}
	t.Disable = append(t.Disable, sc.Disables...)
	return t
}

func (p *RulePolicy) disabledByOthers(key string, active []string) bool {
	for _, k := range active {
		other, ok := p.reg.Scope(k)
		if ok && slices.Contains(other.Disables, key) {
			return true
		}
	}
	return false
}
