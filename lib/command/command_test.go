package command

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/lib/resp"
)

// request builds the encoding of an array of bulk strings
func request(args ...string) []byte {
	arr := make(resp.Array, len(args))
	for i, a := range args {
		arr[i] = resp.BulkString(a)
	}
	return resp.Encode(arr)
}

// TestFromBytes tests the accepted command shapes
func TestFromBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected Command
	}{
		{"Ping", []byte("*1\r\n$4\r\nPING\r\n"), Ping{}},
		{"PingLowerCase", request("ping"), Ping{}},
		{"Echo", []byte("*2\r\n$4\r\nECHO\r\n$5\r\nHello\r\n"), Echo{Message: "Hello"}},
		{"EchoEmpty", request("echo", ""), Echo{Message: ""}},
		{"Get", request("GET", "key"), Get{Key: "key"}},
		{"GetMixedCase", request("gEt", "Key"), Get{Key: "Key"}},
		{"Set", request("SET", "key", "value"), Set{Key: "key", Value: "value"}},
		{"SetPX", request("SET", "key", "value", "PX", "10"), Set{Key: "key", Value: "value", ExpiryMillis: 10, HasExpiry: true}},
		{"SetPXLowerCase", request("set", "key", "value", "px", "250"), Set{Key: "key", Value: "value", ExpiryMillis: 250, HasExpiry: true}},
		{"SetUnknownOption", request("SET", "k", "v", "EX", "whatever"), Set{Key: "k", Value: "v"}},
		{"SetUnknownThenPX", request("SET", "k", "v", "NX", "1", "PX", "5"), Set{Key: "k", Value: "v", ExpiryMillis: 5, HasExpiry: true}},
		{"SetTrailingFlag", request("SET", "k", "v", "NX"), Set{Key: "k", Value: "v"}},
		{"SetKeepTTL", request("SET", "k", "v", "KEEPTTL"), Set{Key: "k", Value: "v"}},
		{"SetPXAfterTrailingFlag", request("SET", "k", "v", "PX", "5", "GET"), Set{Key: "k", Value: "v", ExpiryMillis: 5, HasExpiry: true}},
		// pairs are taken positionally, PX is the value of FOO here
		{"SetShiftedPX", request("SET", "k", "v", "FOO", "PX", "10"), Set{Key: "k", Value: "v"}},
		{"SetNonBulkOption", []byte("*5\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n:1\r\n:2\r\n"), Set{Key: "k", Value: "v"}},
		{"ConfigGet", request("CONFIG", "GET", "dir"), ConfigGet{Parameter: "dir"}},
		{"ConfigGetLowerCase", request("config", "get", "dbfilename"), ConfigGet{Parameter: "dbfilename"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := FromBytes(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cmd, tt.expected) {
				t.Errorf("Expected %#v, got %#v", tt.expected, cmd)
			}
		})
	}
}

// TestFromBytesInvalid tests that every rejected shape wraps ErrInvalidCommand
func TestFromBytesInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"UnknownVerb", []byte("*1\r\n$7\r\nINVALID\r\n")},
		{"NotAnArray", []byte("+PING\r\n")},
		{"BulkStringCommand", []byte("$4\r\nPING\r\n")},
		{"EmptyArray", []byte("*0\r\n")},
		{"NullArray", []byte("*-1\r\n")},
		{"VerbNotBulk", []byte("*1\r\n+PING\r\n")},
		{"PingWithArgument", request("PING", "x")},
		{"EchoNoArgument", request("ECHO")},
		{"EchoTwoArguments", request("ECHO", "a", "b")},
		{"EchoIntegerArgument", []byte("*2\r\n$4\r\nECHO\r\n:1\r\n")},
		{"GetNoArgument", request("GET")},
		{"GetTwoArguments", request("GET", "a", "b")},
		{"GetIntegerKey", []byte("*2\r\n$3\r\nGET\r\n:1\r\n")},
		{"SetNoValue", request("SET", "key")},
		{"SetNoArguments", request("SET")},
		{"SetIntegerValue", []byte("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n:1\r\n")},
		{"SetPXMissingValue", request("SET", "k", "v", "PX")},
		{"SetPXIntegerValue", []byte("*5\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n$2\r\nPX\r\n:5\r\n")},
		{"UnicodeFoldedVerb", request("\u017fet", "k", "v")},
		{"SetPXNotANumber", request("SET", "k", "v", "PX", "abc")},
		{"SetPXNegative", request("SET", "k", "v", "PX", "-5")},
		{"SetPXZero", request("SET", "k", "v", "PX", "0")},
		{"SetPXOverflow", request("SET", "k", "v", "PX", "18446744073709551616")},
		{"ConfigSet", request("CONFIG", "SET", "dir", "/tmp")},
		{"ConfigUnknownSubcommand", request("CONFIG", "RESETSTAT", "x")},
		{"ConfigGetNoParameter", request("CONFIG", "GET")},
		{"ConfigGetTwoParameters", request("CONFIG", "GET", "dir", "dbfilename")},
		{"Truncated", []byte("*2\r\n$3\r\nGET\r\n")},
		{"Garbage", []byte("hello\r\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := FromBytes(tt.input)
			if !errors.Is(err, ErrInvalidCommand) {
				t.Errorf("Expected ErrInvalidCommand, got %v (%#v)", err, cmd)
			}
			if err != nil && err.Error() == "" {
				t.Errorf("Expected a diagnostic message")
			}
		})
	}
}

// TestCodecErrorsAreWrapped tests that codec error kinds stay detectable
func TestCodecErrorsAreWrapped(t *testing.T) {
	_, err := FromBytes([]byte("*2\r\n$3\r\nGET\r\n"))
	if !errors.Is(err, resp.ErrUnexpectedEnd) {
		t.Errorf("Expected resp.ErrUnexpectedEnd, got %v", err)
	}

	_, err = FromBytes([]byte("?x\r\n"))
	if !errors.Is(err, resp.ErrInvalidInput) {
		t.Errorf("Expected resp.ErrInvalidInput, got %v", err)
	}
}

// TestParseFrame tests byte accounting for pipelined requests
func TestParseFrame(t *testing.T) {
	dec := resp.NewDecoder(8)
	set := request("SET", "k", "v")
	bad := request("NOPE")
	get := request("GET", "k")
	buf := append(append(append([]byte{}, set...), bad...), get...)

	cmd, n, err := ParseFrame(dec, buf)
	if err != nil || n != len(set) {
		t.Fatalf("Expected SET with %d bytes, got %d (%v)", len(set), n, err)
	}
	if _, ok := cmd.(Set); !ok {
		t.Errorf("Expected Set, got %#v", cmd)
	}
	buf = buf[n:]

	// a well framed but unknown command still reports its length
	_, n, err = ParseFrame(dec, buf)
	if !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Expected ErrInvalidCommand, got %v", err)
	}
	if n != len(bad) {
		t.Errorf("Expected %d bytes for invalid frame, got %d", len(bad), n)
	}
	buf = buf[n:]

	cmd, n, err = ParseFrame(dec, buf)
	if err != nil || n != len(get) {
		t.Fatalf("Expected GET with %d bytes, got %d (%v)", len(get), n, err)
	}
	if !reflect.DeepEqual(cmd, Get{Key: "k"}) {
		t.Errorf("Expected Get{k}, got %#v", cmd)
	}

	// incomplete input reports zero bytes
	_, n, err = ParseFrame(dec, get[:len(get)-1])
	if !errors.Is(err, resp.ErrUnexpectedEnd) || n != 0 {
		t.Errorf("Expected ErrUnexpectedEnd with 0 bytes, got %d (%v)", n, err)
	}
}

// TestNames tests the verbs reported by commands
func TestNames(t *testing.T) {
	cmds := map[string]Command{
		"PING":       Ping{},
		"ECHO":       Echo{},
		"GET":        Get{},
		"SET":        Set{},
		"CONFIG GET": ConfigGet{},
	}
	for expected, cmd := range cmds {
		if cmd.Name() != expected {
			t.Errorf("Expected %s, got %s", expected, cmd.Name())
		}
	}
}

// TestExpiresIn tests the conversion of PX values
func TestExpiresIn(t *testing.T) {
	if d := (Set{}).ExpiresIn(); d != 0 {
		t.Errorf("Expected 0 without expiry, got %s", d)
	}
	if d := (Set{ExpiryMillis: 10, HasExpiry: true}).ExpiresIn(); d != 10*time.Millisecond {
		t.Errorf("Expected 10ms, got %s", d)
	}
	if d := (Set{ExpiryMillis: math.MaxUint64, HasExpiry: true}).ExpiresIn(); d != time.Duration(math.MaxInt64) {
		t.Errorf("Expected capped duration, got %s", d)
	}
}
