package resp

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

// TestEncode tests the byte exact encoding of every value kind
func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"SimpleString", SimpleString("OK"), "+OK\r\n"},
		{"Error", Error("ERR bad"), "-ERR bad\r\n"},
		{"Integer", Integer(1), ":1\r\n"},
		{"NegativeInteger", Integer(-42), ":-42\r\n"},
		{"BulkString", BulkString("hi"), "$2\r\nhi\r\n"},
		{"EmptyBulkString", BulkString(""), "$0\r\n\r\n"},
		{"NullBulkString", NullBulkString{}, "$-1\r\n"},
		{"Array", Array{Integer(1)}, "*1\r\n:1\r\n"},
		{"EmptyArray", Array{}, "*0\r\n"},
		{"Null", Null{}, "_\r\n"},
		{"True", True, "#t\r\n"},
		{"False", False, "#f\r\n"},
		{"Double", Double(1.5), ",1.5\r\n"},
		{"WholeDouble", Double(100), ",100\r\n"},
		{"SmallDouble", Double(0.001), ",0.001\r\n"},
		{"PositiveInfinity", PositiveInfinity{}, ",inf\r\n"},
		{"NegativeInfinity", NegativeInfinity{}, ",-inf\r\n"},
		{"NaN", NaN{}, ",nan\r\n"},
		{"InfDouble", Double(math.Inf(1)), ",inf\r\n"},
		{"NaNDouble", Double(math.NaN()), ",nan\r\n"},
		{"BigNumber", BigNumber("+123"), "(+123\r\n"},
		{"BulkError", BulkError("e"), "!1\r\ne\r\n"},
		{"VerbatimString", VerbatimString{Encoding: "txt", Text: "hi"}, "=6\r\ntxt:hi\r\n"},
		{"Map", Map{{Key: SimpleString("k"), Value: Integer(1)}}, "%1\r\n+k\r\n:1\r\n"},
		{"Set", Set{BulkString("v")}, "~1\r\n$1\r\nv\r\n"},
		{"Nested", Array{Array{Null{}}, BulkString("x")}, "*2\r\n*1\r\n_\r\n$1\r\nx\r\n"},
		{"NilIsNull", nil, "_\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Encode(tt.value))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestAppendValue tests that encoding appends to an existing buffer
func TestAppendValue(t *testing.T) {
	buf := []byte("+OK\r\n")
	buf = AppendValue(buf, Integer(7))
	if string(buf) != "+OK\r\n:7\r\n" {
		t.Errorf("Expected both values in buffer, got %q", buf)
	}
}

// TestParse tests decoding of every value kind
func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"+OK\r\n", SimpleString("OK")},
		{"-ERR x\r\n", Error("ERR x")},
		{":-5\r\n", Integer(-5)},
		{"$5\r\nhello\r\n", BulkString("hello")},
		{"$0\r\n\r\n", BulkString("")},
		{"$4\r\na\r\nb\r\n", BulkString("a\r\nb")},
		{"$-1\r\n", NullBulkString{}},
		{"*-1\r\n", Null{}},
		{"*0\r\n", Array{}},
		{"*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n", Array{BulkString("ECHO"), BulkString("hi")}},
		{"_\r\n", Null{}},
		{"#t\r\n", True},
		{"#f\r\n", False},
		{",1.5\r\n", Double(1.5)},
		{",-2\r\n", Double(-2)},
		{",1e3\r\n", Double(1000)},
		{",inf\r\n", PositiveInfinity{}},
		{",-inf\r\n", NegativeInfinity{}},
		{",nan\r\n", NaN{}},
		{"(-12345678901234567890\r\n", BigNumber("-12345678901234567890")},
		{"!3\r\nbad\r\n", BulkError("bad")},
		{"=8\r\nmkd:text\r\n", VerbatimString{Encoding: "mkd", Text: "text"}},
		{"=4\r\ntxt:\r\n", VerbatimString{Encoding: "txt", Text: ""}},
		{"%2\r\n+a\r\n:1\r\n+b\r\n#f\r\n", Map{{SimpleString("a"), Integer(1)}, {SimpleString("b"), False}}},
		{"%0\r\n", Map{}},
		{"~2\r\n:1\r\n:2\r\n", Set{Integer(1), Integer(2)}},
		{"*2\r\n#t\r\n!1\r\ne\r\n", Array{True, BulkError("e")}},
	}

	for _, tt := range tests {
		v, err := Parse([]byte(tt.input))
		if err != nil {
			t.Errorf("Input %q: unexpected error %v", tt.input, err)
			continue
		}
		if !reflect.DeepEqual(v, tt.expected) {
			t.Errorf("Input %q: expected %#v, got %#v", tt.input, tt.expected, v)
		}
	}
}

// TestParseErrors tests that every failure wraps one of the two error kinds
func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"", ErrUnexpectedEnd},
		{"+OK", ErrUnexpectedEnd},
		{"$5\r\nhel", ErrUnexpectedEnd},
		{"$5\r\nhello", ErrUnexpectedEnd},
		{"*2\r\n:1\r\n", ErrUnexpectedEnd},
		{"#t", ErrUnexpectedEnd},
		{"_\r", ErrUnexpectedEnd},
		{"?\r\n", ErrInvalidInput},
		{"GET key\r\n", ErrInvalidInput},
		{":abc\r\n", ErrInvalidInput},
		{"$-2\r\n", ErrInvalidInput},
		{"*-2\r\n", ErrInvalidInput},
		{"$3\r\nabcd\r\n", ErrInvalidInput},
		{"$2\r\n\xff\xfe\r\n", ErrInvalidInput},
		{"_x\r\n", ErrInvalidInput},
		{"#x\r\n", ErrInvalidInput},
		{"#tt\r\n", ErrInvalidInput},
		{",abc\r\n", ErrInvalidInput},
		{",Infinity\r\n", ErrInvalidInput},
		{",1e400\r\n", ErrInvalidInput},
		{",0x1p-2\r\n", ErrInvalidInput},
		{",-0X10P0\r\n", ErrInvalidInput},
		{",1_000\r\n", ErrInvalidInput},
		{"(123\r\n", ErrInvalidInput},
		{"(+12a\r\n", ErrInvalidInput},
		{"(+\r\n", ErrInvalidInput},
		{"!-1\r\n", ErrInvalidInput},
		{"=3\r\ntxt\r\n", ErrInvalidInput},
		{"=5\r\ntext1\r\n", ErrInvalidInput},
		{"%-1\r\n", ErrInvalidInput},
		{"~-1\r\n", ErrInvalidInput},
	}

	for _, tt := range tests {
		_, err := Parse([]byte(tt.input))
		if !errors.Is(err, tt.err) {
			t.Errorf("Input %q: expected %v, got %v", tt.input, tt.err, err)
		}
	}
}

// TestParseFrame tests byte accounting for pipelined and partial input
func TestParseFrame(t *testing.T) {
	ping := "*1\r\n$4\r\nPING\r\n"
	echo := "*2\r\n$4\r\nECHO\r\n$5\r\nHello\r\n"
	buf := []byte(ping + echo)

	v, n, err := ParseFrame(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != len(ping) {
		t.Errorf("Expected %d consumed bytes, got %d", len(ping), n)
	}
	if !reflect.DeepEqual(v, Array{BulkString("PING")}) {
		t.Errorf("Expected PING array, got %#v", v)
	}

	v, n, err = ParseFrame(buf[n:])
	if err != nil || n != len(echo) {
		t.Fatalf("Expected %d consumed bytes, got %d (%v)", len(echo), n, err)
	}
	if !reflect.DeepEqual(v, Array{BulkString("ECHO"), BulkString("Hello")}) {
		t.Errorf("Expected ECHO array, got %#v", v)
	}

	// every strict prefix is incomplete
	for i := 0; i < len(echo); i++ {
		if _, n, err := ParseFrame([]byte(echo[:i])); !errors.Is(err, ErrUnexpectedEnd) || n != 0 {
			t.Errorf("Prefix %q: expected ErrUnexpectedEnd and 0 bytes, got %d (%v)", echo[:i], n, err)
		}
	}
}

// TestMaxDepth tests the nesting limit of the decoder
func TestMaxDepth(t *testing.T) {
	nested := func(depth int) []byte {
		return []byte(strings.Repeat("*1\r\n", depth) + ":1\r\n")
	}

	d := NewDecoder(3)
	if _, err := d.Parse(nested(3)); err != nil {
		t.Errorf("Expected depth 3 to be accepted, got %v", err)
	}
	if _, err := d.Parse(nested(4)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for depth 4, got %v", err)
	}

	// maps and sets count as nesting too
	if _, err := d.Parse([]byte("%1\r\n~1\r\n*1\r\n*1\r\n:1\r\n:1\r\n")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for mixed nesting, got %v", err)
	}

	// zero value decoder uses the default limit
	var zero Decoder
	if _, err := zero.Parse(nested(DefaultMaxDepth)); err != nil {
		t.Errorf("Expected default depth to be accepted, got %v", err)
	}
	if _, err := zero.Parse(nested(DefaultMaxDepth + 1)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput beyond default depth, got %v", err)
	}
}

// TestHugeCountDoesNotAllocate tests that a large announced count fails on missing input
func TestHugeCountDoesNotAllocate(t *testing.T) {
	if _, err := Parse([]byte("*2000000000\r\n")); !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("Expected ErrUnexpectedEnd, got %v", err)
	}
	if _, err := Parse([]byte("$2000000000\r\nabc")); !errors.Is(err, ErrUnexpectedEnd) {
		t.Errorf("Expected ErrUnexpectedEnd, got %v", err)
	}
}

// TestRoundTripValues tests decode(encode(v)) == v
func TestRoundTripValues(t *testing.T) {
	values := []Value{
		SimpleString("PONG"),
		SimpleString(""),
		Error("ERR invalid command"),
		Integer(0),
		Integer(math.MinInt64),
		Integer(math.MaxInt64),
		BulkString("binary\r\nsafe"),
		BulkString("ünïcödé"),
		NullBulkString{},
		Array{},
		Array{BulkString("SET"), BulkString("k"), BulkString("v")},
		Null{},
		True,
		False,
		Double(3.25),
		Double(-0.5),
		Double(123456789),
		PositiveInfinity{},
		NegativeInfinity{},
		NaN{},
		BigNumber("+3492890328409238509324850943850943825024385"),
		BigNumber("-1"),
		BulkError("SYNTAX invalid"),
		VerbatimString{Encoding: "txt", Text: "Some string"},
		Map{},
		Map{{Key: BulkString("a"), Value: Array{Integer(1), Null{}}}, {Key: Integer(2), Value: Set{True}}},
		Set{},
		Set{Double(1.5), BigNumber("+1"), VerbatimString{Encoding: "mkd", Text: "# x"}},
		Array{Map{{Key: BulkError("e"), Value: NullBulkString{}}}, Set{Array{}}},
	}

	for _, v := range values {
		encoded := Encode(v)
		decoded, n, err := ParseFrame(encoded)
		if err != nil {
			t.Errorf("Value %#v: unexpected error %v", v, err)
			continue
		}
		if n != len(encoded) {
			t.Errorf("Value %#v: expected %d consumed bytes, got %d", v, len(encoded), n)
		}
		if !reflect.DeepEqual(decoded, v) {
			t.Errorf("Expected %#v, got %#v", v, decoded)
		}
	}
}

// TestRoundTripBytes tests encode(decode(b)) == b for canonical input
func TestRoundTripBytes(t *testing.T) {
	inputs := []string{
		"+OK\r\n",
		"-ERR unknown\r\n",
		":1000\r\n",
		"$0\r\n\r\n",
		"$6\r\nfoobar\r\n",
		"$-1\r\n",
		"*3\r\n:1\r\n:2\r\n:3\r\n",
		"*2\r\n*1\r\n+a\r\n*0\r\n",
		"_\r\n",
		"#t\r\n",
		",3.14\r\n",
		",-inf\r\n",
		",nan\r\n",
		"(+42\r\n",
		"!21\r\nSYNTAX invalid syntax\r\n",
		"=15\r\ntxt:Some string\r\n",
		"%2\r\n+first\r\n:1\r\n+second\r\n:2\r\n",
		"~3\r\n+a\r\n:1\r\n#f\r\n",
	}

	for _, input := range inputs {
		v, err := Parse([]byte(input))
		if err != nil {
			t.Errorf("Input %q: unexpected error %v", input, err)
			continue
		}
		if got := string(Encode(v)); got != input {
			t.Errorf("Expected %q, got %q", input, got)
		}
	}
}

// TestTypeName tests the value kind names used in diagnostics
func TestTypeName(t *testing.T) {
	if TypeName(BulkString("x")) != "bulk string" {
		t.Errorf("Expected bulk string, got %s", TypeName(BulkString("x")))
	}
	if TypeName(NaN{}) != "double" {
		t.Errorf("Expected double, got %s", TypeName(NaN{}))
	}
	if TypeName(nil) != "unknown" {
		t.Errorf("Expected unknown, got %s", TypeName(nil))
	}
}
