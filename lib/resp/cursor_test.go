package resp

import (
	"errors"
	"testing"
)

// TestCursorRead tests fixed length reads and the position on failure
func TestCursorRead(t *testing.T) {
	c := NewCursor([]byte("hello"))

	b, err := c.Read(3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(b) != "hel" {
		t.Errorf("Expected hel, got %q", b)
	}

	if _, err := c.Read(3); !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("Expected ErrUnexpectedEnd, got %v", err)
	}
	if c.Pos() != 3 {
		t.Errorf("Expected position 3 after failed read, got %d", c.Pos())
	}

	b, err = c.Read(2)
	if err != nil || string(b) != "lo" {
		t.Errorf("Expected lo, got %q (%v)", b, err)
	}
	if c.Remaining() != 0 {
		t.Errorf("Expected 0 remaining bytes, got %d", c.Remaining())
	}
}

// TestCursorReadByte tests single byte reads
func TestCursorReadByte(t *testing.T) {
	c := NewCursor([]byte("+"))

	b, err := c.ReadByte()
	if err != nil || b != '+' {
		t.Errorf("Expected '+', got %q (%v)", b, err)
	}

	if _, err := c.ReadByte(); !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("Expected ErrUnexpectedEnd, got %v", err)
	}
}

// TestCursorReadLine tests line reads with and without terminator
func TestCursorReadLine(t *testing.T) {
	c := NewCursor([]byte("OK\r\nrest"))

	line, err := c.ReadLine()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(line) != "OK" {
		t.Errorf("Expected OK, got %q", line)
	}
	if c.Pos() != 4 {
		t.Errorf("Expected position 4, got %d", c.Pos())
	}

	// no terminator left
	if _, err := c.ReadLine(); !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("Expected ErrUnexpectedEnd, got %v", err)
	}
	if c.Pos() != 4 {
		t.Errorf("Expected position unchanged at 4, got %d", c.Pos())
	}

	// a lone CR is not a terminator
	c = NewCursor([]byte("a\rb\r\n"))
	line, err = c.ReadLine()
	if err != nil || string(line) != "a\rb" {
		t.Errorf("Expected a\\rb, got %q (%v)", line, err)
	}

	// empty line
	c = NewCursor([]byte("\r\n"))
	line, err = c.ReadLine()
	if err != nil || len(line) != 0 {
		t.Errorf("Expected empty line, got %q (%v)", line, err)
	}
}

// TestCursorReadText tests utf-8 validation of lines
func TestCursorReadText(t *testing.T) {
	c := NewCursor([]byte("héllo\r\n"))
	s, err := c.ReadText()
	if err != nil || s != "héllo" {
		t.Errorf("Expected héllo, got %q (%v)", s, err)
	}

	c = NewCursor([]byte("\xff\xfe\r\n"))
	if _, err := c.ReadText(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

// TestCursorReadInteger tests integer lines
func TestCursorReadInteger(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		err      error
	}{
		{"0\r\n", 0, nil},
		{"42\r\n", 42, nil},
		{"-1\r\n", -1, nil},
		{"+7\r\n", 7, nil},
		{"9223372036854775807\r\n", 9223372036854775807, nil},
		{"-9223372036854775808\r\n", -9223372036854775808, nil},
		{"9223372036854775808\r\n", 0, ErrInvalidInput},
		{"12a\r\n", 0, ErrInvalidInput},
		{"\r\n", 0, ErrInvalidInput},
		{"1.5\r\n", 0, ErrInvalidInput},
		{"12", 0, ErrUnexpectedEnd},
	}

	for _, tt := range tests {
		c := NewCursor([]byte(tt.input))
		n, err := c.ReadInteger()
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("Input %q: expected error %v, got %v", tt.input, tt.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Input %q: unexpected error %v", tt.input, err)
			continue
		}
		if n != tt.expected {
			t.Errorf("Input %q: expected %d, got %d", tt.input, tt.expected, n)
		}
	}
}
