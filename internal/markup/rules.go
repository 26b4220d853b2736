package markup

import (
	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

// rule is what a single registered tag contributes on its own.
type rule struct {
	set   scope.Set
	attrs style.Attributes
}

// RuleDecoder parses the whole document first and then applies one rule
// per registered tag to each text span.
type RuleDecoder struct {
	reg      *scope.Registry
	resolver style.Resolver
	mutator  AttributeMutator
	// rules by scope key
	rules map[string]rule
}

// NewRuleDecoder builds the rule table for reg. mutator may be nil.
func NewRuleDecoder(reg *scope.Registry, resolver style.Resolver, mutator AttributeMutator) *RuleDecoder {
	rules := make(map[string]rule, reg.Len())
	for i := 0; i < reg.Len(); i++ {
		sc := reg.At(i)
		set := reg.SetOf(sc.Key)
		rules[sc.Key] = rule{set: set, attrs: resolver.Resolve(set)}
	}
	return &RuleDecoder{reg: reg, resolver: resolver, mutator: mutator, rules: rules}
}

type span struct {
	text  string
	stack []*element
}

func (d *RuleDecoder) Decode(src string) ([]buffer.Segment, error) {
	var (
		spans []span
		stack []*element
	)
	err := tokenize(d.reg, src, func(t token) {
		switch {
		case t.start != nil:
			stack = append(stack, t.start)
		case t.end:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			if t.text != "" {
				spans = append(spans, span{text: t.text, stack: append([]*element(nil), stack...)})
			}
		}
	})
	if err != nil {
		return nil, err
	}

	var segs []buffer.Segment
	for _, sp := range spans {
		set, attrs, ok := d.apply(sp.stack)
		if !ok {
			continue
		}
		attrs = mutate(d.reg, d.mutator, sp.stack, attrs)
		segs = appendSegment(segs, buffer.Segment{
			Text: textUnescaper.Replace(sp.text),
			Attr: buffer.Attr{Scopes: set, Style: attrs},
		})
	}
	return segs, nil
}

func (d *RuleDecoder) apply(stack []*element) (scope.Set, style.Attributes, bool) {
	var matched []rule
	for _, el := range stack {
		if r, ok := d.rules[el.key]; ok {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return 0, style.Attributes{}, false
	}
	set := effective(d.reg, stack)
	for _, r := range matched {
		if r.set == set {
			return set, r.attrs, true
		}
	}
	// Nested scopes resolve as one set so the result matches what typing
	// the same scopes would produce.
	return set, d.resolver.Resolve(set), true
}
