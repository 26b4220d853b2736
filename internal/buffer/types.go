package buffer

import (
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

// Mode is the kind of the mutation in progress. It is set when a mutation
// starts and consumed by the commit pass that ends it.
type Mode int

const (
	ModeIdle Mode = iota
	// ModeTyping: characters inserted from the keyboard.
	ModeTyping
	// ModeRemoving: characters deleted from the keyboard.
	ModeRemoving
	// ModeInstalling: text or attributes set directly (import, restyle).
	ModeInstalling
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeTyping:
		return "typing"
	case ModeRemoving:
		return "removing"
	case ModeInstalling:
		return "installing"
	}
	return "unknown"
}

// Attr is everything attached to one character. Scopes is kept apart from
// the resolved Style so scope membership never depends on what a resolver
// puts in its attributes.
type Attr struct {
	Scopes scope.Set
	Style  style.Attributes
	// Accessory names the accessory pattern that matched this character and
	// Value holds the whole matched text.
	Accessory string
	Value     string
}

// Range is a span of rune offsets, like a text selection.
type Range struct {
	Location int
	Length   int
}

func (r Range) End() int {
	return r.Location + r.Length
}

func (r Range) IsEmpty() bool {
	return r.Length == 0
}

// Segment is a piece of text sharing one Attr.
type Segment struct {
	Text string
	Attr Attr
}

// Run is a maximal segment of the buffer with equal attributes.
type Run struct {
	Range
	Segment
}
