package demangle

import (
	"fmt"
	"math"
	"strings"
)

// maxNumber is where decoded numbers saturate.
const maxNumber = math.MaxInt32

// cursor is a read position over a mangled name. Reads return substrings of
// the input, never copies.
type cursor struct {
	input  string
	offset int
}

func newCursor(input string, offset int) *cursor {
	return &cursor{input: input, offset: offset}
}

// Offset returns the current read position.
func (c *cursor) Offset() int {
	return c.offset
}

// Remaining returns the number of unread bytes.
func (c *cursor) Remaining() int {
	if c.offset >= len(c.input) {
		return 0
	}
	return len(c.input) - c.offset
}

func (c *cursor) atEnd() bool {
	return c.offset >= len(c.input)
}

// peek returns the next byte without consuming it, or 0 at end of input.
func (c *cursor) peek() byte {
	if c.offset >= len(c.input) {
		return 0
	}
	return c.input[c.offset]
}

// peekAt returns the byte i positions ahead, or 0 past the end.
func (c *cursor) peekAt(i int) byte {
	if c.offset+i >= len(c.input) {
		return 0
	}
	return c.input[c.offset+i]
}

// peekN returns up to n upcoming bytes without consuming them.
func (c *cursor) peekN(n int) string {
	end := c.offset + n
	if end > len(c.input) {
		end = len(c.input)
	}
	return c.input[c.offset:end]
}

func (c *cursor) hasPrefix(s string) bool {
	return strings.HasPrefix(c.input[c.offset:], s)
}

// next consumes one byte.
func (c *cursor) next() (byte, error) {
	if c.offset >= len(c.input) {
		return 0, c.fail(ErrTruncated, "expected a character")
	}
	b := c.input[c.offset]
	c.offset++
	return b, nil
}

// take consumes exactly n bytes.
func (c *cursor) take(n int) (string, error) {
	if n < 0 || c.offset+n > len(c.input) {
		return "", c.fail(ErrTruncated, fmt.Sprintf("need %d characters, have %d", n, c.Remaining()))
	}
	s := c.input[c.offset : c.offset+n]
	c.offset += n
	return s, nil
}

// skip consumes b if it is the next byte and reports whether it did.
func (c *cursor) skip(b byte) bool {
	if c.peek() == b {
		c.offset++
		return true
	}
	return false
}

// expect consumes b or fails.
func (c *cursor) expect(b byte) error {
	if c.atEnd() {
		return c.fail(ErrTruncated, fmt.Sprintf("expected %q", b))
	}
	if c.input[c.offset] != b {
		return c.fail(ErrUnexpectedCharacter, fmt.Sprintf("expected %q, found %q", b, c.input[c.offset]))
	}
	c.offset++
	return nil
}

// takeToken consumes the first of tokens that the input continues with.
func (c *cursor) takeToken(tokens ...string) (string, error) {
	for _, tok := range tokens {
		if c.hasPrefix(tok) {
			c.offset += len(tok)
			return tok, nil
		}
	}
	if c.atEnd() {
		return "", c.fail(ErrTruncated, "expected one of "+strings.Join(tokens, ", "))
	}
	return "", c.fail(ErrUnknownCode, fmt.Sprintf("%q is not one of %s", c.peekN(2), strings.Join(tokens, ", ")))
}

// takeNumber consumes a maximal run of decimal digits.
func (c *cursor) takeNumber() (int, error) {
	start := c.offset
	n := 0
	for c.offset < len(c.input) && isDigit(c.input[c.offset]) {
		n = accumulate(n, 10, int(c.input[c.offset]-'0'))
		c.offset++
	}
	if c.offset == start {
		if c.atEnd() {
			return 0, c.fail(ErrTruncated, "expected a number")
		}
		return 0, c.fail(ErrUnexpectedCharacter, fmt.Sprintf("expected a number, found %q", c.peek()))
	}
	return n, nil
}

// takeSignedNumber consumes an optional 'n' sign marker followed by digits.
func (c *cursor) takeSignedNumber() (int64, error) {
	neg := c.skip('n')
	n, err := c.takeNumber()
	if err != nil {
		return 0, err
	}
	if neg {
		return -int64(n), nil
	}
	return int64(n), nil
}

// takeSeqID consumes a base-36 sequence id terminated by '_' and returns
// its value plus one; a bare '_' yields zero.
func (c *cursor) takeSeqID() (int, error) {
	if c.skip('_') {
		return 0, nil
	}
	start := c.offset
	n := 0
	for {
		b := c.peek()
		switch {
		case isDigit(b):
			n = accumulate(n, 36, int(b-'0'))
		case b >= 'A' && b <= 'Z':
			n = accumulate(n, 36, int(b-'A')+10)
		case b == '_':
			if c.offset == start {
				return 0, c.fail(ErrUnexpectedCharacter, "empty sequence id")
			}
			c.offset++
			return n + 1, nil
		case b == 0 && c.atEnd():
			return 0, c.fail(ErrTruncated, "unterminated sequence id")
		default:
			return 0, c.fail(ErrUnexpectedCharacter, fmt.Sprintf("bad sequence id character %q", b))
		}
		c.offset++
	}
}

// accumulate appends digit d in the given base to n, saturating at maxNumber.
func accumulate(n, base, d int) int {
	if n > (maxNumber-d)/base {
		return maxNumber
	}
	return n*base + d
}

// fail builds an *Error positioned at the current offset.
func (c *cursor) fail(reason error, detail string) error {
	return &Error{Input: c.input, Offset: c.offset, Detail: detail, Err: reason}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }
