package buffer

import "errors"

// ErrOutOfRange indicates a range outside the buffer.
var ErrOutOfRange = errors.New("range out of bounds")
