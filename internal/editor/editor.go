// Package editor wires the typing state machine, the styled buffer and the
// markup codec into the surface a UI drives: scope toggles, text edits,
// caret changes and markup import/export.
package editor

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/config"
	"github.com/kobzarvs/vtext/internal/logger"
	"github.com/kobzarvs/vtext/internal/markup"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
	"github.com/kobzarvs/vtext/internal/typing"
)

// Options are the collaborators of an Editor. Registry and Resolver are
// required; the rest fall back to the registry-driven defaults.
type Options struct {
	Registry    *scope.Registry
	Resolver    style.Resolver
	Policy      typing.Policy
	Accessories []buffer.Accessory
	Touch       buffer.TouchHandler
	// TagAttributer and Mutator default to markup.LinkHook.
	TagAttributer markup.TagAttributer
	Mutator       markup.AttributeMutator
	// Decoder defaults to a markup.RuleDecoder.
	Decoder markup.Decoder
	RootTag string
}

// Editor is one editing session. Every method runs on the caller's
// goroutine and listeners are called synchronously; none of it is safe for
// concurrent use.
type Editor struct {
	reg     *scope.Registry
	machine *typing.Machine
	buf     *buffer.Buffer
	enc     *markup.Encoder
	dec     markup.Decoder
	root    string

	sel       buffer.Range
	listeners []Listener
}

// New builds an editor from cfg. touch may be nil.
func New(cfg config.Config, touch buffer.TouchHandler) (*Editor, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	res, err := cfg.Resolver(reg)
	if err != nil {
		return nil, err
	}
	accs, err := cfg.BufferAccessories()
	if err != nil {
		return nil, err
	}
	opts := Options{
		Registry:    reg,
		Resolver:    res,
		Accessories: accs,
		Touch:       touch,
		RootTag:     cfg.Editor.RootTag,
	}
	if cfg.Editor.Decoder == config.DecoderStream {
		opts.Decoder = markup.NewStreamDecoder(reg, res, markup.LinkHook{})
	}
	return NewWith(opts)
}

func NewWith(opts Options) (*Editor, error) {
	if opts.Registry == nil {
		return nil, typing.ErrNilRegistry
	}
	if opts.Resolver == nil {
		return nil, typing.ErrNilResolver
	}
	if opts.Policy == nil {
		opts.Policy = typing.NewRulePolicy(opts.Registry)
	}
	if opts.TagAttributer == nil {
		opts.TagAttributer = markup.LinkHook{}
	}
	if opts.Mutator == nil {
		opts.Mutator = markup.LinkHook{}
	}
	if opts.Decoder == nil {
		opts.Decoder = markup.NewRuleDecoder(opts.Registry, opts.Resolver, opts.Mutator)
	}
	m, err := typing.New(opts.Registry, opts.Resolver, opts.Policy)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		reg:     opts.Registry,
		machine: m,
		buf:     buffer.New(opts.Accessories, opts.Touch),
		enc:     markup.NewEncoder(opts.Registry, opts.TagAttributer),
		dec:     opts.Decoder,
		root:    opts.RootTag,
	}
	e.buf.SetTypingAttr(typingAttr(m.Reset()))
	return e, nil
}

func typingAttr(ch typing.Change) buffer.Attr {
	return buffer.Attr{Scopes: ch.Active, Style: ch.Attributes}
}

func (e *Editor) Registry() *scope.Registry {
	return e.reg
}

func (e *Editor) RootTag() string {
	return e.root
}

func (e *Editor) Text() string {
	return e.buf.String()
}

func (e *Editor) Len() int {
	return e.buf.Len()
}

func (e *Editor) Runs() []buffer.Run {
	return e.buf.Runs()
}

// At returns the attributes of the character at i.
func (e *Editor) At(i int) (buffer.Attr, bool) {
	return e.buf.At(i)
}

// StyleAt is the style the character at i is drawn with.
func (e *Editor) StyleAt(i int) (tcell.Style, bool) {
	return e.buf.DisplayStyle(i)
}

func (e *Editor) Selection() buffer.Range {
	return e.sel
}

// Status reports the status of key. Unknown keys panic.
func (e *Editor) Status(key string) scope.Status {
	return e.machine.Status(key)
}

// ActiveKeys lists the active scopes in registration order.
func (e *Editor) ActiveKeys() []string {
	return e.reg.KeysOf(e.machine.Active())
}

// TypingAttr is what the next typed character receives.
func (e *Editor) TypingAttr() buffer.Attr {
	return e.buf.TypingAttr()
}

// ToggleScope flips key at the caret. With a selection the new typing
// attributes are applied over it; block scopes apply to the paragraphs
// the selection touches. It reports false when key is disabled.
func (e *Editor) ToggleScope(key string) bool {
	ch, ok := e.machine.Toggle(key)
	if !ok {
		logger.Debug("editor: toggle rejected", "key", key)
		return false
	}
	e.apply(ch)
	return true
}

// apply is the single place a typing.Change reaches the buffer and the
// listeners.
func (e *Editor) apply(ch typing.Change) {
	attr := typingAttr(ch)
	e.buf.SetTypingAttr(attr)

	if ch.Key != "" {
		target := e.sel
		if ch.Block {
			target = e.buf.ParagraphRange(e.sel)
		}
		if !target.IsEmpty() {
			if err := e.buf.ApplyAttr(target, attr); err != nil {
				logger.Error("editor: restyle failed", "range", target, "error", err)
			} else {
				e.emit(Event{Kind: TextChanged, Selection: e.sel})
			}
		}
	}
	e.emit(Event{Kind: StateChanged, Change: ch, Selection: e.sel})
}

// ApplyMarkup replaces the whole text with the decoded markup. On a parse
// error the buffer is left untouched.
func (e *Editor) ApplyMarkup(src string) error {
	segs, err := e.dec.Decode(src)
	if err != nil {
		return err
	}
	e.buf.Install(segs)
	e.sel = buffer.Range{}
	logger.Debug("editor: markup applied", "segments", len(segs), "runes", e.buf.Len())
	e.emit(Event{Kind: TextChanged, Selection: e.sel})
	e.apply(e.machine.Reset())
	return nil
}

// ExportMarkup encodes the buffer, wrapped in root when it is non-empty.
func (e *Editor) ExportMarkup(root string) string {
	return e.enc.Encode(e.buf.Runs(), root)
}

// Export encodes the buffer with the configured root tag.
func (e *Editor) Export() string {
	return e.ExportMarkup(e.root)
}

// SetSelection is the caret-change intake. A caret placed away from its
// previous position re-derives the typing state from the text before it.
func (e *Editor) SetSelection(sel buffer.Range) {
	sel = e.clamp(sel)
	ev := e.buf.MoveCaret(sel)
	e.sel = sel
	if !ev.Refetch {
		return
	}
	if ev.Found {
		e.apply(e.carryLink(e.machine.Fetch(ev.Scopes), ev.Before))
		return
	}
	e.apply(e.machine.Reset())
}

// carryLink keeps the link target of the text before the caret, so text
// typed there joins the same link.
func (e *Editor) carryLink(ch typing.Change, before buffer.Attr) typing.Change {
	link := before.Style.Link
	if link == "" {
		return ch
	}
	for _, sc := range e.reg.ScopesOf(ch.Active) {
		if sc.Touch {
			ch.Attributes.Link = link
			ch.Attributes.Style = ch.Attributes.Style.Url(link)
			return ch
		}
	}
	return ch
}

func (e *Editor) clamp(sel buffer.Range) buffer.Range {
	n := e.buf.Len()
	sel.Location = min(max(sel.Location, 0), n)
	sel.Length = min(max(sel.Length, 0), n-sel.Location)
	return sel
}

// InsertText types s over the selection and leaves the caret after it.
func (e *Editor) InsertText(s string) error {
	if err := e.buf.Replace(e.sel, s); err != nil {
		return err
	}
	e.moveAfterEdit(e.sel.Location + utf8.RuneCountInString(s))
	return nil
}

// DeleteBackward removes the selection, or the character before the caret.
func (e *Editor) DeleteBackward() error {
	r := e.sel
	if r.IsEmpty() {
		if r.Location == 0 {
			return nil
		}
		r = buffer.Range{Location: r.Location - 1, Length: 1}
	}
	if err := e.buf.Delete(r); err != nil {
		return err
	}
	e.moveAfterEdit(r.Location)
	return nil
}

// DeleteForward removes the selection, or the character after the caret.
func (e *Editor) DeleteForward() error {
	r := e.sel
	if r.IsEmpty() {
		if r.Location >= e.buf.Len() {
			return nil
		}
		r.Length = 1
	}
	if err := e.buf.Delete(r); err != nil {
		return err
	}
	e.moveAfterEdit(r.Location)
	return nil
}

func (e *Editor) moveAfterEdit(loc int) {
	e.sel = buffer.Range{Location: loc}
	e.buf.SyncCaret(loc)
	e.emit(Event{Kind: TextChanged, Selection: e.sel})
}

// EndEditing drops any half-finished edit, e.g. when the view loses focus.
func (e *Editor) EndEditing() {
	e.buf.EndEditing()
}
