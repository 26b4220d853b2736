// Package typing holds the typing state machine: the per-scope
// active/inactive/disabled status at the caret and the cascade rules applied
// when the user toggles a scope.
package typing

import (
	"fmt"

	"github.com/kobzarvs/vtext/internal/logger"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

// Change is the message a Machine emits after every state change. The
// coordinator applies Attributes to the buffer and forwards the sets to
// controls.
type Change struct {
	// Key is the toggled scope, empty for Fetch and Reset.
	Key      string
	Active   scope.Set
	Inactive scope.Set
	Disabled scope.Set
	// Enabled lists scopes whose controls become usable again.
	Enabled    scope.Set
	Attributes style.Attributes
	// Block is set when Key is a block scope; the result then applies to
	// the paragraph instead of the selection.
	Block bool
}

// Machine tracks scope status for one editing session. It is not safe for
// concurrent use.
type Machine struct {
	reg      *scope.Registry
	resolver style.Resolver
	policy   Policy
	status   []scope.Status
}

// New returns a machine in its initial state: the default scope active and
// every other scope inactive.
func New(reg *scope.Registry, resolver style.Resolver, policy Policy) (*Machine, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if policy == nil {
		return nil, ErrNilPolicy
	}
	m := &Machine{
		reg:      reg,
		resolver: resolver,
		policy:   policy,
		status:   make([]scope.Status, reg.Len()),
	}
	m.Reset()
	return m, nil
}

func (m *Machine) Registry() *scope.Registry {
	return m.reg
}

// Status returns the status of key. Unknown keys panic.
func (m *Machine) Status(key string) scope.Status {
	return m.status[m.index(key)]
}

// Active returns the currently active set.
func (m *Machine) Active() scope.Set {
	return m.collect(scope.Active)
}

// Disabled returns the currently disabled set.
func (m *Machine) Disabled() scope.Set {
	return m.collect(scope.Disabled)
}

// Attributes resolves the current active set.
func (m *Machine) Attributes() style.Attributes {
	return m.resolver.Resolve(m.Active())
}

// Toggle flips key between active and inactive and applies the policy's
// cascade. It reports false, with no change, when key is disabled. Toggling
// a key outside the registry is a programming error and panics.
func (m *Machine) Toggle(key string) (Change, bool) {
	idx := m.index(key)
	var willBeActive bool
	switch m.status[idx] {
	case scope.Active:
		willBeActive = false
	case scope.Inactive:
		willBeActive = true
	default:
		logger.Debug("typing: toggle ignored", "key", key, "status", m.status[idx].String())
		return Change{}, false
	}

	self := m.reg.SetOf(key)
	prev := m.Active().Without(self)
	t := m.policy.OnToggle(key, willBeActive, m.reg.KeysOf(prev))

	active := prev
	var inactive scope.Set
	if willBeActive {
		active = active.Union(self)
	} else {
		inactive = self
	}
	active = active.Union(m.reg.SetOf(t.Activate...))
	inactive = inactive.Union(m.reg.SetOf(t.Deactivate...))
	disabled := m.reg.SetOf(t.Disable...)

	active = active.Without(inactive).Without(disabled)
	inactive = inactive.Without(disabled)
	if active.IsEmpty() {
		active = m.reg.Default()
	}

	for i := range m.status {
		bit := scope.Set(1) << uint(i)
		switch {
		case active.Intersects(bit):
			m.status[i] = scope.Active
		case inactive.Intersects(bit):
			m.status[i] = scope.Inactive
		case disabled.Intersects(bit):
			m.status[i] = scope.Disabled
		}
	}

	sc := m.reg.At(idx)
	final := m.Active()
	ch := Change{
		Key:        key,
		Active:     final,
		Inactive:   inactive.Without(final),
		Disabled:   disabled.Without(final),
		Enabled:    inactive.Without(final),
		Attributes: m.resolver.Resolve(final),
		Block:      sc.Block,
	}
	logger.Debug("typing: toggle", "key", key, "on", willBeActive,
		"active", m.reg.KeysOf(ch.Active), "disabled", m.reg.KeysOf(ch.Disabled))
	return ch, true
}

// Fetch re-derives the state from the scope set found in the text, e.g.
// the character before a relocated caret. The default scope is ignored
// when other scopes are present; an empty remainder resets.
func (m *Machine) Fetch(found scope.Set) Change {
	keys := found.Without(m.reg.Default())
	if keys.IsEmpty() {
		return m.Reset()
	}
	var disabled scope.Set
	for _, sc := range m.reg.ScopesOf(keys) {
		disabled = disabled.Union(m.reg.SetOf(sc.Disables...))
	}
	disabled = disabled.Without(keys)
	for i := range m.status {
		bit := scope.Set(1) << uint(i)
		switch {
		case keys.Intersects(bit):
			m.status[i] = scope.Active
		case disabled.Intersects(bit):
			m.status[i] = scope.Disabled
		default:
			m.status[i] = scope.Inactive
		}
	}
	return m.snapshot()
}

// Reset activates the default scope and marks everything else inactive.
func (m *Machine) Reset() Change {
	def := m.reg.Default()
	for i := range m.status {
		if def.Intersects(scope.Set(1) << uint(i)) {
			m.status[i] = scope.Active
		} else {
			m.status[i] = scope.Inactive
		}
	}
	return m.snapshot()
}

func (m *Machine) snapshot() Change {
	active := m.Active()
	inactive := m.collect(scope.Inactive)
	return Change{
		Active:     active,
		Inactive:   inactive,
		Disabled:   m.Disabled(),
		Enabled:    inactive,
		Attributes: m.resolver.Resolve(active),
	}
}

func (m *Machine) collect(st scope.Status) scope.Set {
	var s scope.Set
	for i, v := range m.status {
		if v == st {
			s |= scope.Set(1) << uint(i)
		}
	}
	return s
}

func (m *Machine) index(key string) int {
	for i := 0; i < m.reg.Len(); i++ {
		if m.reg.At(i).Key == key {
			return i
		}
	}
	logger.Error("typing: unknown scope", "key", key)
	panic(fmt.Sprintf("typing: unknown scope %q", key))
}
