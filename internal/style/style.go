// Package style resolves a set of active scopes into the concrete attributes
// written onto styled text.
package style

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/scope"
)

// Attributes is the resolved formatting of one character. It is a plain
// comparable value: two characters belong to the same run only if their
// Attributes are equal.
type Attributes struct {
	Style tcell.Style
	// Link is the target of a touch scope such as <a href="...">.
	Link string
}

// Resolver maps an active scope set to attributes. Implementations must be
// pure: the same set always yields the same Attributes, since results from
// live typing and from markup import are compared when building runs.
type Resolver interface {
	Resolve(active scope.Set) Attributes
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(active scope.Set) Attributes

func (f ResolverFunc) Resolve(active scope.Set) Attributes {
	return f(active)
}

// Spec is a declarative style fragment. Unset fields leave the underlying
// style untouched so fragments compose in order.
type Spec struct {
	Foreground string
	Background string
	Bold       bool
	Italic     bool
	Underline  bool
	Strike     bool
	Dim        bool
	Reverse    bool
}

// Apply layers s over st.
func (s Spec) Apply(st tcell.Style) tcell.Style {
	if s.Foreground != "" {
		st = st.Foreground(ParseColor(s.Foreground, tcell.ColorDefault))
	}
	if s.Background != "" {
		st = st.Background(ParseColor(s.Background, tcell.ColorDefault))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.Strike {
		st = st.StrikeThrough(true)
	}
	if s.Dim {
		st = st.Dim(true)
	}
	if s.Reverse {
		st = st.Reverse(true)
	}
	return st
}

// IsZero reports whether s changes nothing.
func (s Spec) IsZero() bool {
	return s == Spec{}
}

// ParseColor accepts "#rrggbb", a named color or "default".
func ParseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
