package demangle

import (
	"errors"
	"fmt"
)

// Failure reasons. Every error returned by this package wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	// ErrTruncated indicates the input ended before a production was complete.
	ErrTruncated = errors.New("demangle: truncated input")

	// ErrMalformed indicates a length prefix or list shape that does not
	// line up with the surrounding grammar.
	ErrMalformed = errors.New("demangle: malformed input")

	// ErrInvalidSubstitution indicates a back-reference to an entry that was
	// never recorded.
	ErrInvalidSubstitution = errors.New("demangle: invalid substitution")

	// ErrUnknownCode indicates an operator, special-name, builtin or
	// abbreviation code missing from the fixed tables.
	ErrUnknownCode = errors.New("demangle: unknown code")

	// ErrUnexpectedCharacter indicates a character that starts no valid
	// alternative of the current production.
	ErrUnexpectedCharacter = errors.New("demangle: unexpected character")
)

// Error describes a decode failure and where it happened.
type Error struct {
	Input  string // Full symbol being decoded
	Offset int    // Byte offset of the failure within Input
	Detail string // Production-specific description
	Err    error  // One of the Err* reasons above
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v at offset %d in %q: %s", e.Err, e.Offset, e.Input, e.Detail)
	}
	return fmt.Sprintf("%v at offset %d in %q", e.Err, e.Offset, e.Input)
}

func (e *Error) Unwrap() error { return e.Err }

// Reason returns the failure reason of err, or nil if err did not come from
// this package.
func Reason(err error) error {
	var de *Error
	if errors.As(err, &de) {
		return de.Err
	}
	for _, r := range []error{ErrTruncated, ErrMalformed, ErrInvalidSubstitution, ErrUnknownCode, ErrUnexpectedCharacter} {
		if errors.Is(err, r) {
			return r
		}
	}
	return nil
}
