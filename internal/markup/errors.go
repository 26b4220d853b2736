package markup

import (
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed markup")

// ParseError reports markup that could not be parsed. Decoding never
// returns partial output alongside a ParseError.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("markup: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("markup: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}
