package markup

import (
	"github.com/kobzarvs/vtext/internal/scope"
	"github.com/kobzarvs/vtext/internal/style"
)

// TagAttributer adds a `name="value"` pair to the opening tag of sc.
type TagAttributer interface {
	TagAttribute(sc scope.Scope, attrs style.Attributes) (string, bool)
}

// AttributeMutator folds the attributes of a parsed tag back into the
// resolved attributes of the text it wraps.
type AttributeMutator interface {
	MutateAttributes(sc scope.Scope, tagAttrs map[string]string, base style.Attributes) (style.Attributes, bool)
}

// LinkHook round-trips the link target of touch scopes through an href
// attribute: <a href="https://...">text</a>.
type LinkHook struct{}

func (LinkHook) TagAttribute(sc scope.Scope, attrs style.Attributes) (string, bool) {
	if !sc.Touch || attrs.Link == "" {
		return "", false
	}
	return `href="` + attrEscaper.Replace(attrs.Link) + `"`, true
}

func (LinkHook) MutateAttributes(sc scope.Scope, tagAttrs map[string]string, base style.Attributes) (style.Attributes, bool) {
	href, ok := tagAttrs["href"]
	if !sc.Touch || !ok || href == "" {
		return base, false
	}
	base.Link = href
	base.Style = base.Style.Url(href)
	return base, true
}
