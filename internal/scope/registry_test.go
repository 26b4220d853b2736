package scope

import (
	"errors"
	"reflect"
	"testing"
)

func testScopes() []Scope {
	return []Scope{
		{Key: "normal", Tag: "p"},
		{Key: "bold", Tag: "b"},
		{Key: "italic", Tag: "i"},
		{Key: "heading", Tag: "h1", Block: true, Disables: []string{"bold", "italic"}},
		{Key: "link", Tag: "a", Touch: true},
	}
}

func TestRegistryLookups(t *testing.T) {
	r, err := NewRegistry(testScopes(), "normal")
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	if got := r.DefaultKey(); got != "normal" {
		t.Fatalf("DefaultKey = %q, want %q", got, "normal")
	}
	if tag, ok := r.TagForKey("heading"); !ok || tag != "h1" {
		t.Fatalf("TagForKey(heading) = %q %v, want h1 true", tag, ok)
	}
	if key, ok := r.KeyForTag("a"); !ok || key != "link" {
		t.Fatalf("KeyForTag(a) = %q %v, want link true", key, ok)
	}
	if _, ok := r.KeyForTag("span"); ok {
		t.Fatalf("KeyForTag(span) ok = true, want false")
	}
	if got := r.Tags(); !reflect.DeepEqual(got, []string{"p", "b", "i", "h1", "a"}) {
		t.Fatalf("Tags = %v", got)
	}
}

func TestSetKeepsRegistrationOrder(t *testing.T) {
	r, err := NewRegistry(testScopes(), "normal")
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	s := r.SetOf("link", "italic", "bold", "unknown")
	if got := r.KeysOf(s); !reflect.DeepEqual(got, []string{"bold", "italic", "link"}) {
		t.Fatalf("KeysOf = %v, want [bold italic link]", got)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
	if !r.Contains(s, "italic") || r.Contains(s, "normal") {
		t.Fatalf("Contains mismatch for %v", r.KeysOf(s))
	}
	if s != r.SetOf("bold", "italic", "link") {
		t.Fatalf("sets built in different order differ")
	}
	if got := r.KeysOf(s.Without(r.SetOf("italic"))); !reflect.DeepEqual(got, []string{"bold", "link"}) {
		t.Fatalf("Without = %v", got)
	}
	if got := r.KeysOf(r.Blocks()); !reflect.DeepEqual(got, []string{"heading"}) {
		t.Fatalf("Blocks = %v", got)
	}
}

func TestNewRegistryErrors(t *testing.T) {
	cases := []struct {
		name   string
		scopes []Scope
		def    string
		want   error
	}{
		{"dup key", []Scope{{Key: "a", Tag: "a"}, {Key: "a", Tag: "b"}}, "a", ErrDuplicateKey},
		{"dup tag", []Scope{{Key: "a", Tag: "x"}, {Key: "b", Tag: "x"}}, "a", ErrDuplicateTag},
		{"empty tag", []Scope{{Key: "a"}}, "a", ErrEmptyTag},
		{"default", []Scope{{Key: "a", Tag: "a"}}, "z", ErrUnknownDefault},
		{"partner", []Scope{{Key: "a", Tag: "a", Disables: []string{"nope"}}}, "a", ErrUnknownPartner},
	}
	for _, tc := range cases {
		if _, err := NewRegistry(tc.scopes, tc.def); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
	many := make([]Scope, MaxScopes+1)
	for i := range many {
		many[i] = Scope{Key: string(rune('A' + i)), Tag: string(rune('A' + i))}
	}
	if _, err := NewRegistry(many, "A"); !errors.Is(err, ErrTooManyScopes) {
		t.Fatalf("too many: err = %v", err)
	}
}
