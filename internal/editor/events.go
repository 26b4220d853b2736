package editor

import (
	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/typing"
)

type EventKind int

const (
	// StateChanged: the scope status at the caret changed.
	StateChanged EventKind = iota
	// TextChanged: text or attributes in the buffer changed.
	TextChanged
)

func (k EventKind) String() string {
	switch k {
	case StateChanged:
		return "state"
	case TextChanged:
		return "text"
	}
	return "unknown"
}

type Event struct {
	Kind EventKind
	// Change is set for StateChanged.
	Change    typing.Change
	Selection buffer.Range
}

// Listener must not call back into the Editor that notifies it.
type Listener func(Event)

// Subscribe registers l. Listeners run in registration order. The returned
// function removes l.
func (e *Editor) Subscribe(l Listener) func() {
	e.listeners = append(e.listeners, l)
	i := len(e.listeners) - 1
	return func() {
		e.listeners[i] = nil
	}
}

func (e *Editor) emit(ev Event) {
	for _, l := range e.listeners {
		if l != nil {
			l(ev)
		}
	}
}

// Control is a toolbar button or similar toggle bound to one scope.
type Control interface {
	SetSelected(bool)
	SetEnabled(bool)
}

// Bind keeps c in step with the status of key: selected while the scope is
// active, disabled while it is disabled. The returned function toggles the
// scope, for use as the control's tap action.
func (e *Editor) Bind(key string, c Control) func() {
	bit := e.reg.SetOf(key)
	st := e.machine.Status(key)
	c.SetSelected(st == scope.Active)
	c.SetEnabled(st != scope.Disabled)

	e.Subscribe(func(ev Event) {
		if ev.Kind != StateChanged {
			return
		}
		ch := ev.Change
		switch {
		case ch.Active.Intersects(bit):
			c.SetSelected(true)
			c.SetEnabled(true)
		case ch.Disabled.Intersects(bit):
			c.SetSelected(false)
			c.SetEnabled(false)
		case ch.Inactive.Intersects(bit):
			c.SetSelected(false)
			if ch.Enabled.Intersects(bit) {
				c.SetEnabled(true)
			}
		}
	})
	return func() {
		e.ToggleScope(key)
	}
}
