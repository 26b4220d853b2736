package markup

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

func newTestRegistry(t *testing.T) *scope.Registry {
	t.Helper()
	reg, err := scope.NewRegistry([]scope.Scope{
		{Key: "normal", Tag: "p"},
		{Key: "bold", Tag: "b"},
		{Key: "italic", Tag: "i"},
		{Key: "link", Tag: "a", Touch: true},
	}, "normal")
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	return reg
}

func newTestResolver(t *testing.T, reg *scope.Registry) style.Resolver {
	t.Helper()
	res, err := style.NewThemeResolver(reg, tcell.StyleDefault, map[string]style.Spec{
		"bold":   {Bold: true},
		"italic": {Italic: true},
		"link":   {Underline: true, Foreground: "blue"},
	})
	if err != nil {
		t.Fatalf("NewThemeResolver error: %v", err)
	}
	return res
}

func decoders(t *testing.T, reg *scope.Registry) map[string]Decoder {
	res := newTestResolver(t, reg)
	return map[string]Decoder{
		"stream": NewStreamDecoder(reg, res, LinkHook{}),
		"rules":  NewRuleDecoder(reg, res, LinkHook{}),
	}
}

func TestRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	docs := []string{
		`<content><p>plain\n</p><b>bold</b></content>`,
		`<content><b>bold <i>both</i></b><p> tail</p></content>`,
		`<content><p>a &amp; b &lt; c &gt; d</p></content>`,
		`<content><p>see </p><a href="https://example.com/?a=1&amp;b=2">here</a></content>`,
		`<content><a href="https://x.example">site</a><a>more</a></content>`,
		`<content><p>C:\\new\nline&#xD;end</p></content>`,
	}
	for name, dec := range decoders(t, reg) {
		enc := NewEncoder(reg, LinkHook{})
		for _, doc := range docs {
			segs, err := dec.Decode(doc)
			if err != nil {
				t.Fatalf("%s: Decode(%q) error: %v", name, doc, err)
			}
			buf := buffer.New(nil, nil)
			buf.Install(segs)
			if got := enc.Encode(buf.Runs(), "content"); got != doc {
				t.Fatalf("%s: round trip = %q, want %q", name, got, doc)
			}
		}
	}
}

func TestDecodeUnionAndDefault(t *testing.T) {
	reg := newTestRegistry(t)
	res := newTestResolver(t, reg)
	for name, dec := range decoders(t, reg) {
		segs, err := dec.Decode(`<content>skipped<p>x<b>y<i>z</i></b></p><u>w</u></content>`)
		if err != nil {
			t.Fatalf("%s: Decode error: %v", name, err)
		}
		want := []struct {
			text string
			set  scope.Set
		}{
			{"x", reg.SetOf("normal")},
			{"y", reg.SetOf("bold")},
			{"z", reg.SetOf("bold", "italic")},
		}
		if len(segs) != len(want) {
			t.Fatalf("%s: segments = %d (%#v), want %d", name, len(segs), segs, len(want))
		}
		for i, w := range want {
			if segs[i].Text != w.text || segs[i].Attr.Scopes != w.set {
				t.Fatalf("%s: segment %d = %q %v, want %q %v", name, i, segs[i].Text, segs[i].Attr.Scopes, w.text, w.set)
			}
			if segs[i].Attr.Style != res.Resolve(w.set) {
				t.Fatalf("%s: segment %d style differs from resolver", name, i)
			}
		}
	}
}

func TestDecodeUnknownTagIsTransparent(t *testing.T) {
	reg := newTestRegistry(t)
	for name, dec := range decoders(t, reg) {
		segs, err := dec.Decode(`<b>one <span>two</span></b>`)
		if err != nil {
			t.Fatalf("%s: Decode error: %v", name, err)
		}
		if len(segs) != 1 || segs[0].Text != "one two" {
			t.Fatalf("%s: segments = %#v, want one bold segment", name, segs)
		}
	}
}

func TestDecodeLink(t *testing.T) {
	reg := newTestRegistry(t)
	for name, dec := range decoders(t, reg) {
		segs, err := dec.Decode(`<a href="https://example.com">x</a>`)
		if err != nil {
			t.Fatalf("%s: Decode error: %v", name, err)
		}
		if len(segs) != 1 || segs[0].Attr.Style.Link != "https://example.com" {
			t.Fatalf("%s: segments = %#v, want link", name, segs)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	reg := newTestRegistry(t)
	docs := []string{
		"<b>bold",
		"<b>bold</i>",
		"<content>\n<b>x</b>\n<b</content>",
	}
	for name, dec := range decoders(t, reg) {
		for _, doc := range docs {
			segs, err := dec.Decode(doc)
			if err == nil {
				t.Fatalf("%s: Decode(%q) = %#v, want error", name, doc, segs)
			}
			if segs != nil {
				t.Fatalf("%s: Decode(%q) returned partial segments", name, doc)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("%s: error %v does not wrap ErrMalformed", name, err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("%s: error %v is not a ParseError", name, err)
			}
		}
	}
}

func TestParseErrorLine(t *testing.T) {
	reg := newTestRegistry(t)
	dec := NewStreamDecoder(reg, newTestResolver(t, reg), nil)
	_, err := dec.Decode("<content>\n<b>x</b>\n<b>y</i></content>")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a ParseError", err)
	}
	if pe.Line != 3 {
		t.Fatalf("line = %d, want 3", pe.Line)
	}
}

func TestEncodeMergesSeams(t *testing.T) {
	reg := newTestRegistry(t)
	bold := reg.SetOf("bold")
	both := reg.SetOf("bold", "italic")
	runs := []buffer.Run{
		{Segment: buffer.Segment{Text: "a", Attr: buffer.Attr{Scopes: both}}},
		{Segment: buffer.Segment{Text: "b", Attr: buffer.Attr{Scopes: both, Accessory: "mention", Value: "b"}}},
		{Segment: buffer.Segment{Text: "c", Attr: buffer.Attr{Scopes: bold}}},
		{Segment: buffer.Segment{Text: "", Attr: buffer.Attr{Scopes: bold}}},
		{Segment: buffer.Segment{Text: "skipped"}},
	}
	got := NewEncoder(reg, nil).Encode(runs, "")
	if want := "<b><i>ab</i>c</b>"; got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeEscapes(t *testing.T) {
	reg := newTestRegistry(t)
	runs := []buffer.Run{
		{Segment: buffer.Segment{Text: "1 < 2 & 3 > 0\nnext", Attr: buffer.Attr{Scopes: reg.Default()}}},
	}
	got := NewEncoder(reg, nil).Encode(runs, "doc")
	if want := `<doc><p>1 &lt; 2 &amp; 3 &gt; 0\nnext</p></doc>`; got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}

func TestEncodeInvalidCharacters(t *testing.T) {
	reg := newTestRegistry(t)
	runs := []buffer.Run{
		{Segment: buffer.Segment{Text: "a\x01b\rc\x1b", Attr: buffer.Attr{Scopes: reg.Default()}}},
	}
	got := NewEncoder(reg, nil).Encode(runs, "content")
	if want := "<content><p>a\uFFFDb&#xD;c\uFFFD</p></content>"; got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
	for name, dec := range decoders(t, reg) {
		segs, err := dec.Decode(got)
		if err != nil {
			t.Fatalf("%s: Decode(%q) error: %v", name, got, err)
		}
		if len(segs) != 1 || segs[0].Text != "a\uFFFDb\rc\uFFFD" {
			t.Fatalf("%s: segments = %#v", name, segs)
		}
	}
}

func TestBackslashRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	const text = `dir\new` + "\n" + `a\\b\`
	runs := []buffer.Run{
		{Segment: buffer.Segment{Text: text, Attr: buffer.Attr{Scopes: reg.SetOf("bold")}}},
	}
	out := NewEncoder(reg, nil).Encode(runs, "")
	for name, dec := range decoders(t, reg) {
		segs, err := dec.Decode(out)
		if err != nil {
			t.Fatalf("%s: Decode(%q) error: %v", name, out, err)
		}
		if len(segs) != 1 || segs[0].Text != text {
			t.Fatalf("%s: Decode(%q) = %#v, want %q", name, out, segs, text)
		}
	}
}

func TestEncodeKeepsLinkTargetsApart(t *testing.T) {
	reg := newTestRegistry(t)
	res := newTestResolver(t, reg)
	link := reg.SetOf("link")
	target, _ := LinkHook{}.MutateAttributes(scope.Scope{Key: "link", Tag: "a", Touch: true},
		map[string]string{"href": "https://x.example"}, res.Resolve(link))
	runs := []buffer.Run{
		{Segment: buffer.Segment{Text: "site", Attr: buffer.Attr{Scopes: link, Style: target}}},
		{Segment: buffer.Segment{Text: "more", Attr: buffer.Attr{Scopes: link, Style: res.Resolve(link)}}},
	}
	got := NewEncoder(reg, LinkHook{}).Encode(runs, "")
	if want := `<a href="https://x.example">site</a><a>more</a>`; got != want {
		t.Fatalf("Encode = %q, want %q", got, want)
	}
}
