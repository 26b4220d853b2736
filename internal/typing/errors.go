package typing

import "errors"

var (
	ErrNilRegistry = errors.New("typing: registry is nil")
	ErrNilResolver = errors.New("typing: attribute resolver is nil")
	ErrNilPolicy   = errors.New("typing: cascade policy is nil")
)
