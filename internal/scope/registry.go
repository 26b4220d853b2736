package scope

import "fmt"

// Registry is the immutable, ordered set of scopes an editor is configured
// with. Registration order decides tag nesting in exported markup.
type Registry struct {
	scopes       []Scope
	byKey        map[string]int
	byTag        map[string]int
	defaultIndex int
}

// NewRegistry validates scopes and builds a registry. defaultKey names the
// scope that is active whenever nothing else is.
func NewRegistry(scopes []Scope, defaultKey string) (*Registry, error) {
	if len(scopes) > MaxScopes {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyScopes, len(scopes), MaxScopes)
	}
	r := &Registry{
		scopes: make([]Scope, len(scopes)),
		byKey:  make(map[string]int, len(scopes)),
		byTag:  make(map[string]int, len(scopes)),
	}
	for i, s := range scopes {
		if s.Key == "" {
			return nil, fmt.Errorf("%w: index %d", ErrEmptyKey, i)
		}
		if s.Tag == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyTag, s.Key)
		}
		if _, dup := r.byKey[s.Key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, s.Key)
		}
		if _, dup := r.byTag[s.Tag]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTag, s.Tag)
		}
		s.Exclusive = append([]string(nil), s.Exclusive...)
		s.Disables = append([]string(nil), s.Disables...)
		r.scopes[i] = s
		r.byKey[s.Key] = i
		r.byTag[s.Tag] = i
	}
	idx, ok := r.byKey[defaultKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefault, defaultKey)
	}
	r.defaultIndex = idx
	for _, s := range r.scopes {
		for _, k := range append(append([]string(nil), s.Exclusive...), s.Disables...) {
			if _, ok := r.byKey[k]; !ok {
				return nil, fmt.Errorf("%w: %q -> %q", ErrUnknownPartner, s.Key, k)
			}
		}
	}
	return r, nil
}

func (r *Registry) Len() int {
	return len(r.scopes)
}

// At returns the i-th registered scope.
func (r *Registry) At(i int) Scope {
	return r.scopes[i]
}

func (r *Registry) Scope(key string) (Scope, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return Scope{}, false
	}
	return r.scopes[i], true
}

func (r *Registry) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

func (r *Registry) DefaultKey() string {
	return r.scopes[r.defaultIndex].Key
}

// Default returns the set holding only the default scope.
func (r *Registry) Default() Set {
	return Set(1) << uint(r.defaultIndex)
}

func (r *Registry) TagForKey(key string) (string, bool) {
	i, ok := r.byKey[key]
	if !ok {
		return "", false
	}
	return r.scopes[i].Tag, true
}

func (r *Registry) KeyForTag(tag string) (string, bool) {
	i, ok := r.byTag[tag]
	if !ok {
		return "", false
	}
	return r.scopes[i].Key, true
}

// Keys lists every scope key in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.scopes))
	for i, s := range r.scopes {
		out[i] = s.Key
	}
	return out
}

// Tags lists every markup tag in registration order.
func (r *Registry) Tags() []string {
	out := make([]string, len(r.scopes))
	for i, s := range r.scopes {
		out[i] = s.Tag
	}
	return out
}

// SetOf builds a set from keys. Unregistered keys are ignored.
func (r *Registry) SetOf(keys ...string) Set {
	var s Set
	for _, k := range keys {
		if i, ok := r.byKey[k]; ok {
			s |= Set(1) << uint(i)
		}
	}
	return s
}

// KeysOf returns the keys in s in registration order.
func (r *Registry) KeysOf(s Set) []string {
	idx := s.Indexes()
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		if i < len(r.scopes) {
			out = append(out, r.scopes[i].Key)
		}
	}
	return out
}

// ScopesOf returns the scopes in s in registration order.
func (r *Registry) ScopesOf(s Set) []Scope {
	idx := s.Indexes()
	out := make([]Scope, 0, len(idx))
	for _, i := range idx {
		if i < len(r.scopes) {
			out = append(out, r.scopes[i])
		}
	}
	return out
}

func (r *Registry) Contains(s Set, key string) bool {
	i, ok := r.byKey[key]
	return ok && s&(Set(1)<<uint(i)) != 0
}

// Blocks returns the set of all block scopes.
func (r *Registry) Blocks() Set {
	var s Set
	for i, sc := range r.scopes {
		if sc.Block {
			s |= Set(1) << uint(i)
		}
	}
	return s
}
