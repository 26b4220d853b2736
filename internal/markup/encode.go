// Package markup converts styled buffer runs to a tag based markup and back.
//
//	<content><p>plain\n</p><b>bold <i>and italic</i></b></content>
//
// Newlines in text are written as the two characters `\n` and a backslash
// as `\\`. `&`, `<`, `>` and carriage returns are written as XML references;
// characters XML cannot carry become U+FFFD.
package markup

import (
	"strings"

	"github.com/kobzarvs/vtext/internal/buffer"
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

var (
	attrEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\r", "&#xD;", "\n", "&#xA;", "\t", "&#x9;")
	textUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n")
)

// isXMLChar reports whether r may appear in an XML 1.0 document.
func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

func escapeText(sb *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '\r':
			sb.WriteString("&#xD;")
		case '\n':
			sb.WriteString(`\n`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			if !isXMLChar(r) {
				r = '\uFFFD'
			}
			sb.WriteRune(r)
		}
	}
}

// Encoder writes runs as markup. It holds no state between calls.
type Encoder struct {
	reg  *scope.Registry
	hook TagAttributer
}

// NewEncoder returns an encoder for reg. hook may be nil.
func NewEncoder(reg *scope.Registry, hook TagAttributer) *Encoder {
	return &Encoder{reg: reg, hook: hook}
}

// openTag is an opening tag as written, attributes included.
type openTag struct {
	tag  string
	text string
}

// Encode writes runs in order. Each run's scopes become tags nested in
// registration order; runs without scopes or text are skipped. Tags whose
// opening text is identical to the one already open stay open across runs,
// so a run boundary inside a tag does not split the element. A non-empty
// root wraps the result.
func (e *Encoder) Encode(runs []buffer.Run, root string) string {
	var sb strings.Builder
	if root != "" {
		sb.WriteString("<" + root + ">")
	}
	var open []openTag
	for _, r := range runs {
		if r.Attr.Scopes.IsEmpty() || r.Text == "" {
			continue
		}
		scopes := e.reg.ScopesOf(r.Attr.Scopes)
		if len(scopes) == 0 {
			continue
		}
		next := make([]openTag, len(scopes))
		for i, sc := range scopes {
			next[i] = openTag{tag: sc.Tag, text: e.openText(sc, r.Attr.Style)}
		}
		keep := 0
		for keep < len(open) && keep < len(next) && open[keep] == next[keep] {
			keep++
		}
		closeTags(&sb, open[keep:])
		for _, t := range next[keep:] {
			sb.WriteString(t.text)
		}
		escapeText(&sb, r.Text)
		open = next
	}
	closeTags(&sb, open)
	if root != "" {
		sb.WriteString("</" + root + ">")
	}
	return sb.String()
}

func closeTags(sb *strings.Builder, tags []openTag) {
	for i := len(tags) - 1; i >= 0; i-- {
		sb.WriteString("</" + tags[i].tag + ">")
	}
}

func (e *Encoder) openText(sc scope.Scope, attrs style.Attributes) string {
	var sb strings.Builder
	sb.WriteString("<" + sc.Tag)
	if e.hook != nil {
		if extra, ok := e.hook.TagAttribute(sc, attrs); ok && extra != "" {
			sb.WriteString(" " + extra)
		}
	}
	sb.WriteString(">")
	return sb.String()
}
