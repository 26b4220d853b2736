package buffer

import (
	"errors"
	"net/url"
	"regexp"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

const (
	normalSet scope.Set = 1 << iota
	boldSet
	italicSet
)

var (
	plainAttr = Attr{Scopes: normalSet, Style: style.Attributes{Style: tcell.StyleDefault}}
	boldAttr  = Attr{Scopes: boldSet, Style: style.Attributes{Style: tcell.StyleDefault.Bold(true)}}
)

type touches struct {
	names  []string
	values []string
	links  []string
}

func (t *touches) HandleTouch(name, value string) {
	t.names = append(t.names, name)
	t.values = append(t.values, value)
}

func (t *touches) HandleLink(u *url.URL) {
	t.links = append(t.links, u.String())
}

func newTestBuffer(segs ...Segment) *Buffer {
	b := New(nil, nil)
	b.SetTypingAttr(plainAttr)
	if len(segs) > 0 {
		b.Install(segs)
	}
	return b
}

func TestTypingUsesTypingAttributes(t *testing.T) {
	b := newTestBuffer(Segment{Text: "ab", Attr: plainAttr})
	b.SetTypingAttr(boldAttr)
	if err := b.Insert(1, "XY"); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got := b.String(); got != "aXYb" {
		t.Fatalf("text = %q, want %q", got, "aXYb")
	}
	for i, want := range []Attr{plainAttr, boldAttr, boldAttr, plainAttr} {
		if got, _ := b.At(i); got != want {
			t.Fatalf("attr %d = %+v, want %+v", i, got, want)
		}
	}
	if b.Mode() != ModeIdle {
		t.Fatalf("mode = %v, want idle after commit", b.Mode())
	}
}

func TestReplaceRawInheritsNeighbour(t *testing.T) {
	b := newTestBuffer(Segment{Text: "ab", Attr: boldAttr})
	b.SetTypingAttr(plainAttr)
	if err := b.ReplaceRaw(Range{Location: 2}, "c"); err != nil {
		t.Fatalf("ReplaceRaw error: %v", err)
	}
	if got, _ := b.At(2); got != boldAttr {
		t.Fatalf("attr = %+v, want bold", got)
	}
}

func TestDeleteAndBounds(t *testing.T) {
	b := newTestBuffer(Segment{Text: "hello", Attr: plainAttr})
	if err := b.Delete(Range{Location: 1, Length: 3}); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if got := b.String(); got != "ho" {
		t.Fatalf("text = %q, want %q", got, "ho")
	}
	if err := b.Delete(Range{Location: 1, Length: 5}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	if got := b.String(); got != "ho" {
		t.Fatalf("text changed on failed delete: %q", got)
	}
}

func TestRunsSplitOnAttributeChange(t *testing.T) {
	b := newTestBuffer(
		Segment{Text: "one ", Attr: plainAttr},
		Segment{Text: "two", Attr: boldAttr},
		Segment{Text: " three", Attr: plainAttr},
	)
	runs := b.Runs()
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	if runs[1].Text != "two" || runs[1].Location != 4 || runs[1].Length != 3 || runs[1].Attr != boldAttr {
		t.Fatalf("run 1 = %+v", runs[1])
	}
	if err := b.ApplyAttr(Range{Location: 0, Length: 4}, boldAttr); err != nil {
		t.Fatalf("ApplyAttr error: %v", err)
	}
	if runs = b.Runs(); len(runs) != 2 || runs[0].Text != "one two" {
		t.Fatalf("runs after restyle = %+v", runs)
	}
}

func TestParagraphRange(t *testing.T) {
	b := newTestBuffer(Segment{Text: "first\nsecond\nthird", Attr: plainAttr})
	cases := []struct {
		in   Range
		want Range
	}{
		{Range{Location: 2}, Range{Location: 0, Length: 6}},
		{Range{Location: 5}, Range{Location: 0, Length: 6}},
		{Range{Location: 6}, Range{Location: 6, Length: 7}},
		{Range{Location: 8, Length: 7}, Range{Location: 6, Length: 12}},
		{Range{Location: 18}, Range{Location: 13, Length: 5}},
	}
	for _, tc := range cases {
		if got := b.ParagraphRange(tc.in); got != tc.want {
			t.Fatalf("ParagraphRange(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestMoveCaretJumpReportsScopes(t *testing.T) {
	b := newTestBuffer(
		Segment{Text: "abc", Attr: plainAttr},
		Segment{Text: "def", Attr: boldAttr},
	)
	ev := b.MoveCaret(Range{Location: 1})
	if ev.Jumped || ev.Refetch {
		t.Fatalf("step of one reported as jump: %+v", ev)
	}
	ev = b.MoveCaret(Range{Location: 5})
	if !ev.Jumped || !ev.Refetch || !ev.Found || ev.Scopes != boldSet {
		t.Fatalf("jump = %+v, want bold scopes", ev)
	}
	ev = b.MoveCaret(Range{Location: 2, Length: 3})
	if !ev.Jumped || ev.Refetch {
		t.Fatalf("selection jump = %+v, want no refetch", ev)
	}
	ev = b.MoveCaret(Range{Location: 0})
	if !ev.Refetch || ev.Found {
		t.Fatalf("document start = %+v, want refetch without scopes", ev)
	}
	b.SyncCaret(6)
	ev = b.MoveCaret(Range{Location: 5})
	if ev.Jumped {
		t.Fatalf("step after SyncCaret reported as jump: %+v", ev)
	}
}

func TestAccessoryDetectionWhileTyping(t *testing.T) {
	mention := Accessory{
		Name:         "mention",
		Pattern:      regexp.MustCompile(`@\w+`),
		DetectLength: 10,
		Style:        style.Spec{Underline: true},
	}
	tb := &touches{}
	b := New([]Accessory{mention}, tb)
	b.SetTypingAttr(plainAttr)
	for i, r := range "hi @bob" {
		if err := b.Insert(i, string(r)); err != nil {
			t.Fatalf("Insert error: %v", err)
		}
	}
	a, _ := b.At(4)
	if a.Accessory != "mention" || a.Value != "@bob" {
		t.Fatalf("accessory = %q/%q, want mention/@bob", a.Accessory, a.Value)
	}
	if a.Style.Style != tcell.StyleDefault {
		t.Fatalf("accessory style written into the resolved style")
	}
	if st, _ := b.DisplayStyle(4); st != tcell.StyleDefault.Underline(true) {
		t.Fatalf("accessory style not applied")
	}
	if a.Scopes != normalSet {
		t.Fatalf("scopes changed by accessory: %v", a.Scopes)
	}
	if a, _ := b.At(1); a.Accessory != "" {
		t.Fatalf("plain text tagged: %+v", a)
	}

	b.MoveCaret(Range{Location: 0})
	b.MoveCaret(Range{Location: 6})
	if len(tb.names) != 1 || tb.names[0] != "mention" || tb.values[0] != "@bob" {
		t.Fatalf("touches = %+v", tb)
	}
}

func TestAccessoryClearedByRemoval(t *testing.T) {
	tag := Accessory{Name: "hashtag", Pattern: regexp.MustCompile(`#\w+`), DetectLength: 20}
	tb := &touches{}
	b := New([]Accessory{tag}, tb)
	b.SetTypingAttr(plainAttr)
	if err := b.Insert(0, "x #tag"); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if a, _ := b.At(2); a.Value != "#tag" {
		t.Fatalf("value = %q, want #tag", a.Value)
	}
	if err := b.Delete(Range{Location: 3, Length: 3}); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if a, _ := b.At(2); a.Accessory != "" || a.Value != "" {
		t.Fatalf("stale accessory after removal: %+v", a)
	}
	b.MoveCaret(Range{Location: 0})
	b.MoveCaret(Range{Location: 3})
	if len(tb.names) != 0 {
		t.Fatalf("touches = %+v, want none", tb)
	}

	if err := b.Insert(3, "go"); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := b.Delete(Range{Location: 4, Length: 1}); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if a, _ := b.At(2); a.Value != "#g" {
		t.Fatalf("value after shortening = %q, want #g", a.Value)
	}
}

func TestAccessoryDetectionOnInstall(t *testing.T) {
	tag := Accessory{Name: "hashtag", Pattern: regexp.MustCompile(`#\w+`)}
	b := New([]Accessory{tag}, nil)
	b.Install([]Segment{{Text: "see #go and #zap", Attr: plainAttr}})
	var tagged []string
	for _, r := range b.Runs() {
		if r.Attr.Accessory != "" {
			tagged = append(tagged, r.Attr.Value)
		}
	}
	if len(tagged) != 2 || tagged[0] != "#go" || tagged[1] != "#zap" {
		t.Fatalf("tagged = %v, want [#go #zap]", tagged)
	}
}

func TestLinkTouch(t *testing.T) {
	tb := &touches{}
	b := New(nil, tb)
	link := Attr{Scopes: italicSet, Style: style.Attributes{Link: "https://example.com/x"}}
	b.Install([]Segment{{Text: "go ", Attr: plainAttr}, {Text: "here", Attr: link}})
	b.MoveCaret(Range{Location: 6})
	if len(tb.links) != 1 || tb.links[0] != "https://example.com/x" {
		t.Fatalf("links = %v", tb.links)
	}
}
