package markup

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/logger"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

// Decoder turns markup into styled segments. On error no segments are
// returned.
type Decoder interface {
	Decode(src string) ([]buffer.Segment, error)
}

// Text is attached to the union of its enclosing registered scopes. The
// default scope only survives when nothing else encloses the text. Text
// outside every registered tag and unknown tags themselves are dropped;
// the text inside an unknown tag is kept.

type element struct {
	set   scope.Set
	key   string
	attrs map[string]string
}

// token is one parsed piece of a document: a start, an end or text.
type token struct {
	start *element
	end   bool
	text  string
}

func newElement(reg *scope.Registry, se xml.StartElement) *element {
	el := &element{}
	if key, ok := reg.KeyForTag(se.Name.Local); ok {
		el.key = key
		el.set = reg.SetOf(key)
	}
	if len(se.Attr) > 0 {
		el.attrs = make(map[string]string, len(se.Attr))
		for _, a := range se.Attr {
			el.attrs[a.Name.Local] = a.Value
		}
	}
	return el
}

func effective(reg *scope.Registry, stack []*element) scope.Set {
	var set scope.Set
	for _, el := range stack {
		set = set.Union(el.set)
	}
	if def := reg.Default(); set != def && set.Intersects(def) {
		set = set.Without(def)
	}
	return set
}

// tokenize reads src to the end. The whole document is validated before
// anything is returned.
func tokenize(reg *scope.Registry, src string, emit func(token)) error {
	d := xml.NewDecoder(strings.NewReader(src))
	depth := 0
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return parseError(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			emit(token{start: newElement(reg, t)})
		case xml.EndElement:
			depth--
			emit(token{end: true})
		case xml.CharData:
			emit(token{text: string(t)})
		}
	}
	if depth != 0 {
		return parseError(errors.New("unexpected end of document"))
	}
	return nil
}

func parseError(err error) error {
	pe := &ParseError{Err: err}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		pe.Line = se.Line
		pe.Err = errors.New(se.Msg)
	}
	logger.Warn("markup parse failed", "line", pe.Line, "error", pe.Err)
	return pe
}

// StreamDecoder resolves attributes while walking the document, keeping a
// stack of open elements.
type StreamDecoder struct {
	reg      *scope.Registry
	resolver style.Resolver
	mutator  AttributeMutator
}

// NewStreamDecoder returns a decoder for reg. mutator may be nil.
func NewStreamDecoder(reg *scope.Registry, resolver style.Resolver, mutator AttributeMutator) *StreamDecoder {
	return &StreamDecoder{reg: reg, resolver: resolver, mutator: mutator}
}

func (d *StreamDecoder) Decode(src string) ([]buffer.Segment, error) {
	var (
		segs  []buffer.Segment
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
			set := effective(d.reg, stack)
			if set.IsEmpty() || t.text == "" {
				return
			}
			attrs := mutate(d.reg, d.mutator, stack, d.resolver.Resolve(set))
			segs = appendSegment(segs, buffer.Segment{
				Text: textUnescaper.Replace(t.text),
				Attr: buffer.Attr{Scopes: set, Style: attrs},
			})
		}
	})
	if err != nil {
		return nil, err
	}
	return segs, nil
}

func mutate(reg *scope.Registry, m AttributeMutator, stack []*element, attrs style.Attributes) style.Attributes {
	if m == nil {
		return attrs
	}
	for _, el := range stack {
		if el.key == "" || len(el.attrs) == 0 {
			continue
		}
		sc, _ := reg.Scope(el.key)
		if next, ok := m.MutateAttributes(sc, el.attrs, attrs); ok {
			attrs = next
		}
	}
	return attrs
}

// appendSegment merges s into the last segment when their attributes are
// equal. The decoder emits text in several pieces around entities.
func appendSegment(segs []buffer.Segment, s buffer.Segment) []buffer.Segment {
	if n := len(segs); n > 0 && segs[n-1].Attr == s.Attr {
		segs[n-1].Text += s.Text
		return segs
	}
	return append(segs, s)
}
