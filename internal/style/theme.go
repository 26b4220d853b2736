package style

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/scope"
)

var ErrUnknownScope = errors.New("style for unregistered scope")

// ThemeResolver resolves sets by folding each member's Spec over a base
// style in registration order.
type ThemeResolver struct {
	base  tcell.Style
	specs []Spec
}

// NewThemeResolver builds a resolver for reg. specs is keyed by scope key;
// scopes without an entry resolve to the base style.
func NewThemeResolver(reg *scope.Registry, base tcell.Style, specs map[string]Spec) (*ThemeResolver, error) {
	r := &ThemeResolver{
		base:  base,
		specs: make([]Spec, reg.Len()),
	}
	for key, spec := range specs {
		found := false
		for i := 0; i < reg.Len(); i++ {
			if reg.At(i).Key == key {
				r.specs[i] = spec
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScope, key)
		}
	}
	return r, nil
}

func (r *ThemeResolver) Resolve(active scope.Set) Attributes {
	st := r.base
	for _, i := range active.Indexes() {
		if i < len(r.specs) {
			st = r.specs[i].Apply(st)
		}
	}
	return Attributes{Style: st}
}

// Base returns the style used for unstyled text.
func (r *ThemeResolver) Base() tcell.Style {
	return r.base
}
