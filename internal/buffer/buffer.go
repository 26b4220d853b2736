// Package buffer implements the styled character buffer behind an editor:
// the text, one Attr per character, and the edit-mode bookkeeping that
// decides which attributes newly inserted text receives.
package buffer

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/kobzarvs/vtext/internal/logger"
	"github.com/kobzarvs/vtext/internal/scope"
)

// Buffer is owned by a single editing session and is not safe for
// concurrent use.
type Buffer struct {
	text   []rune
	attrs  []Attr
	mode   Mode
	typing Attr

	prevLocation int

	accessories []Accessory
	touch       TouchHandler
}

// New returns an empty buffer. accessories and touch may be nil.
func New(accessories []Accessory, touch TouchHandler) *Buffer {
	return &Buffer{
		accessories: slices.Clone(accessories),
		touch:       touch,
	}
}

func (b *Buffer) Len() int {
	return len(b.text)
}

func (b *Buffer) String() string {
	return string(b.text)
}

// Mode reports the pending edit mode. It is idle between mutations.
func (b *Buffer) Mode() Mode {
	return b.mode
}

// At returns the attributes of the character at i.
func (b *Buffer) At(i int) (Attr, bool) {
	if i < 0 || i >= len(b.attrs) {
		return Attr{}, false
	}
	return b.attrs[i], true
}

// TypingAttr is the attribute set given to typed characters.
func (b *Buffer) TypingAttr() Attr {
	return b.typing
}

func (b *Buffer) SetTypingAttr(a Attr) {
	b.typing = a
}

// Replace swaps the text in r for s, as the platform does for keyboard
// input. Inserted text takes the typing attributes unless an install is in
// progress, in which case it inherits from its neighbour.
func (b *Buffer) Replace(r Range, s string) error {
	if err := b.check(r); err != nil {
		return err
	}
	if b.mode != ModeInstalling {
		if s == "" {
			b.mode = ModeRemoving
		} else {
			b.mode = ModeTyping
		}
	}

	ins := []rune(s)
	fill := b.neighbour(r)
	if b.mode == ModeTyping {
		fill = b.typing
	}
	attrs := make([]Attr, len(ins))
	for i := range attrs {
		attrs[i] = fill
	}
	b.text = slices.Replace(b.text, r.Location, r.End(), ins...)
	b.attrs = slices.Replace(b.attrs, r.Location, r.End(), attrs...)

	b.commit(Range{Location: r.Location, Length: len(ins)})
	return nil
}

// ReplaceRaw swaps the text in r for s as an install: the new text
// inherits its neighbour's attributes instead of the typing attributes.
func (b *Buffer) ReplaceRaw(r Range, s string) error {
	if err := b.check(r); err != nil {
		return err
	}
	b.mode = ModeInstalling
	return b.Replace(r, s)
}

// Insert types s at loc.
func (b *Buffer) Insert(loc int, s string) error {
	return b.Replace(Range{Location: loc}, s)
}

// Delete removes the text in r.
func (b *Buffer) Delete(r Range) error {
	return b.Replace(r, "")
}

// ApplyAttr overwrites the attributes in r verbatim, e.g. when a toggle
// restyles a selection or paragraph.
func (b *Buffer) ApplyAttr(r Range, a Attr) error {
	if err := b.check(r); err != nil {
		return err
	}
	if r.IsEmpty() {
		return nil
	}
	b.mode = ModeInstalling
	for i := r.Location; i < r.End(); i++ {
		b.attrs[i] = a
	}
	b.commit(r)
	return nil
}

// Install replaces the whole buffer with segs, keeping their attributes
// verbatim.
func (b *Buffer) Install(segs []Segment) {
	b.mode = ModeInstalling
	n := 0
	for _, seg := range segs {
		n += utf8.RuneCountInString(seg.Text)
	}
	text := make([]rune, 0, n)
	attrs := make([]Attr, 0, n)
	for _, seg := range segs {
		for _, r := range seg.Text {
			text = append(text, r)
			attrs = append(attrs, seg.Attr)
		}
	}
	b.text = text
	b.attrs = attrs
	b.prevLocation = 0
	logger.Debug("buffer: install", "segments", len(segs), "runes", n)
	b.commit(Range{Length: len(text)})
}

// EndEditing drops any pending edit mode, e.g. when the view resigns
// focus mid-edit.
func (b *Buffer) EndEditing() {
	b.mode = ModeIdle
}

// Runs splits the buffer into maximal runs of equal attributes.
func (b *Buffer) Runs() []Run {
	var runs []Run
	start := 0
	for i := 1; i <= len(b.attrs); i++ {
		if i < len(b.attrs) && b.attrs[i] == b.attrs[start] {
			continue
		}
		runs = append(runs, Run{
			Range:   Range{Location: start, Length: i - start},
			Segment: Segment{Text: string(b.text[start:i]), Attr: b.attrs[start]},
		})
		start = i
	}
	return runs
}

// ParagraphRange widens r to the paragraphs it touches, including the
// terminating newline of the last one.
func (b *Buffer) ParagraphRange(r Range) Range {
	loc := min(max(r.Location, 0), len(b.text))
	start := loc
	for start > 0 && b.text[start-1] != '\n' {
		start--
	}
	last := loc
	if r.Length > 0 {
		last = min(r.End()-1, len(b.text))
	}
	end := last
	for end < len(b.text) && b.text[end] != '\n' {
		end++
	}
	if end < len(b.text) {
		end++
	}
	return Range{Location: start, Length: end - start}
}

// CaretEvent describes what a caret move found.
type CaretEvent struct {
	// Jumped is set when the caret moved more than one position, i.e. it
	// was placed rather than carried along by typing.
	Jumped bool
	// Refetch asks the caller to re-derive typing state from Scopes.
	Refetch bool
	// Scopes are the scopes of the character before the caret; Found is
	// false when there is no such character or it carries none.
	Scopes scope.Set
	Found  bool
	// Before is the whole Attr of that character.
	Before Attr
}

// MoveCaret records a new selection. A jump with an empty selection
// dispatches taps and reports the scopes before the caret.
func (b *Buffer) MoveCaret(sel Range) CaretEvent {
	delta := sel.Location - b.prevLocation
	ev := CaretEvent{Jumped: delta > 1 || delta < -1}
	if ev.Jumped && sel.IsEmpty() {
		b.touchAt(sel.Location)
		ev.Refetch = true
		if sel.Location > 0 && sel.Location <= len(b.attrs) {
			ev.Before = b.attrs[sel.Location-1]
			ev.Scopes = ev.Before.Scopes
			ev.Found = !ev.Scopes.IsEmpty()
		}
		logger.Debug("buffer: caret jump", "from", b.prevLocation, "to", sel.Location, "found", ev.Found)
	}
	b.prevLocation = sel.Location
	return ev
}

// SyncCaret records loc as the caret without jump detection, for a caret
// carried along by an edit.
func (b *Buffer) SyncCaret(loc int) {
	b.prevLocation = loc
}

func (b *Buffer) commit(edited Range) {
	b.detectAccessories(edited)
	b.mode = ModeIdle
}

func (b *Buffer) neighbour(r Range) Attr {
	if r.Location > 0 {
		return b.attrs[r.Location-1]
	}
	if r.End() < len(b.attrs) {
		return b.attrs[r.End()]
	}
	return b.typing
}

func (b *Buffer) check(r Range) error {
	if r.Location < 0 || r.Length < 0 || r.End() > len(b.text) {
		return fmt.Errorf("%w: [%d,%d) of %d", ErrOutOfRange, r.Location, r.End(), len(b.text))
	}
	return nil
}
