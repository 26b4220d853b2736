package scope

import "errors"

// Configuration errors returned by NewRegistry.
var (
	ErrEmptyKey       = errors.New("scope key is empty")
	ErrEmptyTag       = errors.New("scope tag is empty")
	ErrDuplicateKey   = errors.New("duplicate scope key")
	ErrDuplicateTag   = errors.New("duplicate scope tag")
	ErrTooManyScopes  = errors.New("too many scopes")
	ErrUnknownDefault = errors.New("default scope is not registered")
	ErrUnknownPartner = errors.New("scope references an unregistered partner")
)
