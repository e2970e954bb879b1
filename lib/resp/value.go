package resp

import (
	"math"
	"strconv"
)

// --------------------------------------------------------------------------
// Value (closed sum type)
// --------------------------------------------------------------------------

// Value is a single protocol value. The set of implementations is closed:
// only the types declared in this file implement Value.
type Value interface {
	// appendTo appends the canonical encoding of the value to dst
	appendTo(dst []byte) []byte
}

type (
	// SimpleString is a short, newline-free status text (+OK)
	SimpleString string

	// Error is a short, newline-free error text (-ERR ...)
	Error string

	// Integer is a signed 64-bit number (:42)
	Integer int64

	// BulkString is a length-prefixed string ($5 hello)
	BulkString string

	// NullBulkString is the absent form of BulkString ($-1)
	NullBulkString struct{}

	// Array is an ordered sequence of values (*2 ...)
	Array []Value

	// Null is the RESP3 null (_) and the legacy null array (*-1)
	Null struct{}

	// Boolean is true (#t) or false (#f)
	Boolean bool

	// Double is a finite floating point number (,1.5)
	Double float64

	// PositiveInfinity is the double literal inf
	PositiveInfinity struct{}

	// NegativeInfinity is the double literal -inf
	NegativeInfinity struct{}

	// NaN is the double literal nan
	NaN struct{}

	// BigNumber is a signed arbitrary precision integer kept as text ((+123)
	BigNumber string

	// BulkError is a length-prefixed error text (!5 error)
	BulkError string

	// VerbatimString is a text with a three character encoding tag (=8 txt:text)
	VerbatimString struct {
		Encoding string
		Text     string
	}

	// Map is an ordered sequence of key value pairs (%1 ...)
	Map []Pair

	// Set is an ordered sequence of values (~2 ...)
	Set []Value
)

// Pair is one entry of a Map
type Pair struct {
	Key   Value
	Value Value
}

// Booleans
const (
	True  = Boolean(true)
	False = Boolean(false)
)

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Encode returns the canonical encoding of v.
// A nil value is encoded as Null.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the canonical encoding of v to dst and returns the
// extended buffer.
func AppendValue(dst []byte, v Value) []byte {
	if v == nil {
		return Null{}.appendTo(dst)
	}
	return v.appendTo(dst)
}

// appendLine appends prefix, text and the terminator
func appendLine(dst []byte, prefix byte, text string) []byte {
	dst = append(dst, prefix)
	dst = append(dst, text...)
	return append(dst, terminator...)
}

// appendLength appends prefix, a decimal length and the terminator
func appendLength(dst []byte, prefix byte, n int) []byte {
	dst = append(dst, prefix)
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, terminator...)
}

// appendBlob appends a length-prefixed payload followed by the terminator
func appendBlob(dst []byte, prefix byte, payload string) []byte {
	dst = appendLength(dst, prefix, len(payload))
	dst = append(dst, payload...)
	return append(dst, terminator...)
}

func (s SimpleString) appendTo(dst []byte) []byte { return appendLine(dst, '+', string(s)) }

func (e Error) appendTo(dst []byte) []byte { return appendLine(dst, '-', string(e)) }

func (i Integer) appendTo(dst []byte) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, int64(i), 10)
	return append(dst, terminator...)
}

func (b BulkString) appendTo(dst []byte) []byte { return appendBlob(dst, '$', string(b)) }

func (NullBulkString) appendTo(dst []byte) []byte { return append(dst, "$-1\r\n"...) }

func (a Array) appendTo(dst []byte) []byte {
	dst = appendLength(dst, '*', len(a))
	for _, v := range a {
		dst = AppendValue(dst, v)
	}
	return dst
}

func (Null) appendTo(dst []byte) []byte { return append(dst, "_\r\n"...) }

func (b Boolean) appendTo(dst []byte) []byte {
	if b {
		return append(dst, "#t\r\n"...)
	}
	return append(dst, "#f\r\n"...)
}

// appendTo renders the shortest decimal form without exponent.
// Non-finite numbers use the literal forms of the infinity and NaN values.
func (d Double) appendTo(dst []byte) []byte {
	f := float64(d)
	switch {
	case math.IsInf(f, 1):
		return PositiveInfinity{}.appendTo(dst)
	case math.IsInf(f, -1):
		return NegativeInfinity{}.appendTo(dst)
	case math.IsNaN(f):
		return NaN{}.appendTo(dst)
	}
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, f, 'f', -1, 64)
	return append(dst, terminator...)
}

func (PositiveInfinity) appendTo(dst []byte) []byte { return append(dst, ",inf\r\n"...) }

func (NegativeInfinity) appendTo(dst []byte) []byte { return append(dst, ",-inf\r\n"...) }

func (NaN) appendTo(dst []byte) []byte { return append(dst, ",nan\r\n"...) }

func (n BigNumber) appendTo(dst []byte) []byte { return appendLine(dst, '(', string(n)) }

func (e BulkError) appendTo(dst []byte) []byte { return appendBlob(dst, '!', string(e)) }

// appendTo writes the length of tag, colon and text as one payload
func (v VerbatimString) appendTo(dst []byte) []byte {
	dst = appendLength(dst, '=', len(v.Encoding)+1+len(v.Text))
	dst = append(dst, v.Encoding...)
	dst = append(dst, ':')
	dst = append(dst, v.Text...)
	return append(dst, terminator...)
}

func (m Map) appendTo(dst []byte) []byte {
	dst = appendLength(dst, '%', len(m))
	for _, p := range m {
		dst = AppendValue(dst, p.Key)
		dst = AppendValue(dst, p.Value)
	}
	return dst
}

func (s Set) appendTo(dst []byte) []byte {
	dst = appendLength(dst, '~', len(s))
	for _, v := range s {
		dst = AppendValue(dst, v)
	}
	return dst
}
