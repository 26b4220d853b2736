package buffer

import (
	"net/url"
	"regexp"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/vtext/internal/logger"
	"github.com/kobzarvs/vtext/internal/style"
)

// Accessory is an inline tap target detected by pattern, such as a mention
// or hashtag. It is tracked apart from scopes.
type Accessory struct {
	Name    string
	Pattern *regexp.Regexp
	// DetectLength is how far before and after a typed edit to look for
	// matches. Zero means one character.
	DetectLength int
	Style        style.Spec
}

// TouchHandler receives taps on accessories and links.
type TouchHandler interface {
	HandleTouch(name, value string)
	HandleLink(u *url.URL)
}

// detectAccessories re-marks accessories around an edit. Marks of every
// span touching the window are cleared first, so edits that break a match
// leave no stale tap target behind.
func (b *Buffer) detectAccessories(edited Range) {
	if len(b.accessories) == 0 || len(b.text) == 0 {
		return
	}
	for _, acc := range b.accessories {
		if acc.Pattern == nil {
			continue
		}
		var window Range
		switch b.mode {
		case ModeTyping, ModeRemoving:
			detect := acc.DetectLength
			if edited.Length > 1 {
				detect = edited.Length
			} else if detect < 1 {
				detect = 1
			}
			start := max(0, edited.Location-detect)
			end := min(len(b.text), edited.End()+detect)
			window = Range{Location: start, Length: end - start}
		case ModeInstalling:
			window = edited
		default:
			return
		}
		if window.Length <= 0 {
			continue
		}
		window = b.clearAccessory(acc.Name, window)
		b.markMatches(acc, window)
	}
}

// clearAccessory drops name from window and from the spans of name that
// reach into it, and returns the widened window.
func (b *Buffer) clearAccessory(name string, window Range) Range {
	start, end := window.Location, window.End()
	for start > 0 && b.attrs[start-1].Accessory == name {
		start--
	}
	for end < len(b.attrs) && b.attrs[end].Accessory == name {
		end++
	}
	for i := start; i < end; i++ {
		if b.attrs[i].Accessory == name {
			b.attrs[i].Accessory = ""
			b.attrs[i].Value = ""
		}
	}
	return Range{Location: start, Length: end - start}
}

func (b *Buffer) markMatches(acc Accessory, window Range) {
	sub := string(b.text[window.Location:window.End()])
	for _, m := range acc.Pattern.FindAllStringIndex(sub, -1) {
		if m[0] == m[1] {
			continue
		}
		from := window.Location + utf8.RuneCountInString(sub[:m[0]])
		to := from + utf8.RuneCountInString(sub[m[0]:m[1]])
		value := sub[m[0]:m[1]]
		for i := from; i < to; i++ {
			b.attrs[i].Accessory = acc.Name
			b.attrs[i].Value = value
		}
		logger.Debug("buffer: accessory", "name", acc.Name, "value", value, "at", from)
	}
}

// DisplayStyle is the style character i is drawn with: its resolved style
// with the style of its accessory on top.
func (b *Buffer) DisplayStyle(i int) (tcell.Style, bool) {
	a, ok := b.At(i)
	if !ok {
		return tcell.StyleDefault, false
	}
	st := a.Style.Style
	if a.Accessory == "" {
		return st, true
	}
	for _, acc := range b.accessories {
		if acc.Name == a.Accessory {
			return acc.Style.Apply(st), true
		}
	}
	return st, true
}

// touchAt dispatches a tap on the character before loc.
func (b *Buffer) touchAt(loc int) {
	if b.touch == nil || loc <= 0 || loc > len(b.attrs) {
		return
	}
	a := b.attrs[loc-1]
	if a.Style.Link != "" {
		u, err := url.Parse(a.Style.Link)
		if err != nil {
			logger.Warn("buffer: bad link", "link", a.Style.Link, "err", err)
			return
		}
		b.touch.HandleLink(u)
		return
	}
	if a.Accessory != "" {
		b.touch.HandleTouch(a.Accessory, a.Value)
	}
}
