package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrUnexpectedEnd is returned when the input ends in the middle of a value.
	ErrUnexpectedEnd = errors.New("resp: unexpected end of input")

	// ErrInvalidInput is returned when the input is not a valid encoding.
	ErrInvalidInput = errors.New("resp: invalid input")
)

// invalidInput wraps ErrInvalidInput with a diagnostic
func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Cursor
// --------------------------------------------------------------------------

// terminator ends every line of the protocol
var terminator = []byte{'\r', '\n'}

// Cursor is a forward-only reader over an immutable byte buffer.
// Bytes that have been read can not be un-read. A failed read leaves the
// position unchanged.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor creates a cursor positioned at the start of buf
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the number of bytes consumed so far
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Read returns the next n bytes and advances past them.
// The returned slice aliases the underlying buffer.
func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, invalidInput("negative read length %d", n)
	}
	if c.Remaining() < n {
		return nil, ErrUnexpectedEnd
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadByte returns the next byte and advances past it
func (c *Cursor) ReadByte() (byte, error) {
	if c.Remaining() < 1 {
		return 0, ErrUnexpectedEnd
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// ReadLine returns the bytes up to the next CRLF (excluding it) and advances
// past the terminator. If no terminator follows, ErrUnexpectedEnd is returned.
func (c *Cursor) ReadLine() ([]byte, error) {
	i := bytes.Index(c.buf[c.pos:], terminator)
	if i < 0 {
		return nil, ErrUnexpectedEnd
	}
	line := c.buf[c.pos : c.pos+i : c.pos+i]
	c.pos += i + len(terminator)
	return line, nil
}

// ReadText reads a line and validates it as UTF-8 text
func (c *Cursor) ReadText() (string, error) {
	start := c.pos
	line, err := c.ReadLine()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(line) {
		c.pos = start
		return "", invalidInput("invalid utf-8 text %q", line)
	}
	return string(line), nil
}

// ReadInteger reads a line and parses it as a base-10 signed 64-bit integer
func (c *Cursor) ReadInteger() (int64, error) {
	start := c.pos
	line, err := c.ReadLine()
	if err != nil {
		return 0, err
	}
	if !utf8.Valid(line) {
		c.pos = start
		return 0, invalidInput("invalid utf-8 in integer %q", line)
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		c.pos = start
		return 0, invalidInput("invalid integer %q", line)
	}
	return n, nil
}

// expectTerminator consumes the next two bytes and checks that they are CRLF
func (c *Cursor) expectTerminator() error {
	start := c.pos
	b, err := c.Read(len(terminator))
	if err != nil {
		return err
	}
	if !bytes.Equal(b, terminator) {
		c.pos = start
		return invalidInput("expected CRLF, got %q", b)
	}
	return nil
}
