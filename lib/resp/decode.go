package resp

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxDepth is the aggregate nesting limit used when a Decoder has none set
	DefaultMaxDepth = 64

	// maxPrealloc caps the capacity reserved for an aggregate before its
	// elements have actually been read
	maxPrealloc = 1024
)

// Decoder parses protocol values from byte buffers.
// The zero value is ready to use and applies DefaultMaxDepth.
type Decoder struct {
	// MaxDepth is the maximum nesting of arrays, maps and sets.
	// A top level array has depth 1. Values <= 0 select DefaultMaxDepth.
	MaxDepth int
}

// NewDecoder creates a decoder with the given nesting limit
func NewDecoder(maxDepth int) *Decoder {
	return &Decoder{MaxDepth: maxDepth}
}

var defaultDecoder = &Decoder{}

// Parse decodes the value at the front of b using the default decoder.
// Bytes after the first value are ignored.
func Parse(b []byte) (Value, error) {
	return defaultDecoder.Parse(b)
}

// ParseFrame decodes the value at the front of b using the default decoder and
// returns the number of bytes it occupied.
func ParseFrame(b []byte) (Value, int, error) {
	return defaultDecoder.ParseFrame(b)
}

// Parse decodes the value at the front of b. Bytes after the first value are ignored.
func (d *Decoder) Parse(b []byte) (Value, error) {
	v, _, err := d.ParseFrame(b)
	return v, err
}

// ParseFrame decodes the value at the front of b and returns the number of
// bytes it occupied. If b holds only a prefix of a value, the returned error
// wraps ErrUnexpectedEnd and the caller may retry once more bytes are available.
func (d *Decoder) ParseFrame(b []byte) (Value, int, error) {
	c := NewCursor(b)
	v, err := d.parse(c, 0)
	if err != nil {
		return nil, 0, err
	}
	return v, c.Pos(), nil
}

func (d *Decoder) maxDepth() int {
	if d == nil || d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

// --------------------------------------------------------------------------
// Productions
// --------------------------------------------------------------------------

// parse reads one discriminator byte and dispatches to the matching production.
// depth is the number of aggregates enclosing the value.
func (d *Decoder) parse(c *Cursor, depth int) (Value, error) {
	kind, err := c.ReadByte()
	if err != nil {
		return nil, err
	}

	switch kind {
	case '+':
		s, err := c.ReadText()
		if err != nil {
			return nil, err
		}
		return SimpleString(s), nil

	case '-':
		s, err := c.ReadText()
		if err != nil {
			return nil, err
		}
		return Error(s), nil

	case ':':
		n, err := c.ReadInteger()
		if err != nil {
			return nil, err
		}
		return Integer(n), nil

	case '$':
		n, err := readLength(c, true)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return NullBulkString{}, nil
		}
		s, err := readBlob(c, n)
		if err != nil {
			return nil, err
		}
		return BulkString(s), nil

	case '*':
		n, err := readLength(c, true)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return Null{}, nil
		}
		elems, err := d.parseSequence(c, n, depth)
		if err != nil {
			return nil, err
		}
		return Array(elems), nil

	case '_':
		if err := c.expectTerminator(); err != nil {
			return nil, err
		}
		return Null{}, nil

	case '#':
		b, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		var v Boolean
		switch b {
		case 't':
			v = True
		case 'f':
			v = False
		default:
			return nil, invalidInput("invalid boolean %q", b)
		}
		if err := c.expectTerminator(); err != nil {
			return nil, err
		}
		return v, nil

	case ',':
		return parseDouble(c)

	case '(':
		s, err := c.ReadText()
		if err != nil {
			return nil, err
		}
		if !isBigNumber(s) {
			return nil, invalidInput("invalid big number %q", s)
		}
		return BigNumber(s), nil

	case '!':
		n, err := readLength(c, false)
		if err != nil {
			return nil, err
		}
		s, err := readBlob(c, n)
		if err != nil {
			return nil, err
		}
		return BulkError(s), nil

	case '=':
		n, err := readLength(c, false)
		if err != nil {
			return nil, err
		}
		s, err := readBlob(c, n)
		if err != nil {
			return nil, err
		}
		if len(s) < 4 || s[3] != ':' {
			return nil, invalidInput("invalid verbatim string %q", s)
		}
		return VerbatimString{Encoding: s[:3], Text: s[4:]}, nil

	case '%':
		n, err := readLength(c, false)
		if err != nil {
			return nil, err
		}
		if err := d.enter(depth); err != nil {
			return nil, err
		}
		pairs := make([]Pair, 0, min(n, maxPrealloc))
		for i := 0; i < n; i++ {
			k, err := d.parse(c, depth+1)
			if err != nil {
				return nil, err
			}
			v, err := d.parse(c, depth+1)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
		return Map(pairs), nil

	case '~':
		n, err := readLength(c, false)
		if err != nil {
			return nil, err
		}
		elems, err := d.parseSequence(c, n, depth)
		if err != nil {
			return nil, err
		}
		return Set(elems), nil

	default:
		return nil, invalidInput("unexpected discriminator byte %q", kind)
	}
}

// enter checks that one more level of nesting is allowed
func (d *Decoder) enter(depth int) error {
	if depth+1 > d.maxDepth() {
		return invalidInput("nesting exceeds maximum depth %d", d.maxDepth())
	}
	return nil
}

// parseSequence decodes n values nested one level below depth
func (d *Decoder) parseSequence(c *Cursor, n int, depth int) ([]Value, error) {
	if err := d.enter(depth); err != nil {
		return nil, err
	}
	elems := make([]Value, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		v, err := d.parse(c, depth+1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// readLength reads a length or count line. If allowNull is set, -1 is
// returned as is. Any other negative number is invalid.
func readLength(c *Cursor, allowNull bool) (int, error) {
	n, err := c.ReadInteger()
	if err != nil {
		return 0, err
	}
	if n == -1 && allowNull {
		return -1, nil
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, invalidInput("invalid length %d", n)
	}
	return int(n), nil
}

// readBlob reads n bytes of UTF-8 text followed by the terminator
func readBlob(c *Cursor, n int) (string, error) {
	b, err := c.Read(n)
	if err != nil {
		return "", err
	}
	if err := c.expectTerminator(); err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", invalidInput("invalid utf-8 text %q", b)
	}
	return string(b), nil
}

// parseDouble reads a double line. The literals inf, -inf and nan map to
// their own value kinds, everything else must be a finite decimal number.
func parseDouble(c *Cursor) (Value, error) {
	s, err := c.ReadText()
	if err != nil {
		return nil, err
	}
	switch s {
	case "inf":
		return PositiveInfinity{}, nil
	case "-inf":
		return NegativeInfinity{}, nil
	case "nan":
		return NaN{}, nil
	}
	// only decimal notation, ParseFloat would also take hex floats and
	// digit separators
	if strings.ContainsAny(s, "xX_") {
		return nil, invalidInput("invalid double %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, invalidInput("invalid double %q", s)
	}
	return Double(f), nil
}

// isBigNumber reports whether s is a sign followed by at least one decimal digit
func isBigNumber(s string) bool {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TypeName returns a short human readable name of the value kind
func TypeName(v Value) string {
	switch v.(type) {
	case SimpleString:
		return "simple string"
	case Error:
		return "error"
	case Integer:
		return "integer"
	case BulkString:
		return "bulk string"
	case NullBulkString:
		return "null bulk string"
	case Array:
		return "array"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Double, PositiveInfinity, NegativeInfinity, NaN:
		return "double"
	case BigNumber:
		return "big number"
	case BulkError:
		return "bulk error"
	case VerbatimString:
		return "verbatim string"
	case Map:
		return "map"
	case Set:
		return "set"
	default:
		return "unknown"
	}
}
