package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ValentinKolb/rKV/lib/resp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidCommand is wrapped by every error returned from this package
var ErrInvalidCommand = errors.New("invalid command")

// invalid wraps ErrInvalidCommand with a diagnostic
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidCommand, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Command Types
// --------------------------------------------------------------------------

// Command is one of Ping, Echo, Get, Set or ConfigGet
type Command interface {
	// Name returns the upper case verb of the command
	Name() string

	isCommand()
}

// Ping asks the server for a PONG
type Ping struct{}

// Echo asks the server to return Message
type Echo struct {
	Message string
}

// Get reads the value stored at Key
type Get struct {
	Key string
}

// Set stores Value at Key. If HasExpiry is set, the key expires ExpiryMillis
// milliseconds after the write.
type Set struct {
	Key          string
	Value        string
	ExpiryMillis uint64
	HasExpiry    bool
}

// ConfigGet reads a server configuration parameter
type ConfigGet struct {
	Parameter string
}

func (Ping) Name() string      { return "PING" }
func (Echo) Name() string      { return "ECHO" }
func (Get) Name() string       { return "GET" }
func (Set) Name() string       { return "SET" }
func (ConfigGet) Name() string { return "CONFIG GET" }

func (Ping) isCommand()      {}
func (Echo) isCommand()      {}
func (Get) isCommand()       {}
func (Set) isCommand()       {}
func (ConfigGet) isCommand() {}

// ExpiresIn returns the expiry as a duration (0 = no expiry).
// Durations beyond the range of time.Duration are capped.
func (s Set) ExpiresIn() time.Duration {
	if !s.HasExpiry {
		return 0
	}
	if s.ExpiryMillis > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(s.ExpiryMillis) * time.Millisecond
}

// --------------------------------------------------------------------------
// Parsing
// --------------------------------------------------------------------------

// FromBytes decodes b with the default decoder and interprets the value as a command
func FromBytes(b []byte) (Command, error) {
	v, err := resp.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return FromValue(v)
}

// ParseFrame decodes the first value in b with dec and interprets it as a command.
// It returns the number of bytes the value occupied. The count is also
// returned when the value is well framed but not a valid command, so the
// caller can skip exactly that frame. On codec errors the count is 0.
func ParseFrame(dec *resp.Decoder, b []byte) (Command, int, error) {
	v, n, err := dec.ParseFrame(b)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	cmd, err := FromValue(v)
	return cmd, n, err
}

// FromValue interprets a decoded value as a command
func FromValue(v resp.Value) (Command, error) {
	args, ok := v.(resp.Array)
	if !ok {
		return nil, invalid("expected array, got %s", resp.TypeName(v))
	}
	if len(args) == 0 {
		return nil, invalid("empty command")
	}

	verb, err := bulkString(args[0], "command name")
	if err != nil {
		return nil, err
	}

	switch upper(verb) {
	case "PING":
		if len(args) != 1 {
			return nil, arityError(verb)
		}
		return Ping{}, nil

	case "ECHO":
		if len(args) != 2 {
			return nil, arityError(verb)
		}
		msg, err := bulkString(args[1], "message")
		if err != nil {
			return nil, err
		}
		return Echo{Message: msg}, nil

	case "GET":
		if len(args) != 2 {
			return nil, arityError(verb)
		}
		key, err := bulkString(args[1], "key")
		if err != nil {
			return nil, err
		}
		return Get{Key: key}, nil

	case "SET":
		return parseSet(verb, args)

	case "CONFIG":
		if len(args) != 3 {
			return nil, arityError(verb)
		}
		sub, err := bulkString(args[1], "subcommand")
		if err != nil {
			return nil, err
		}
		if upper(sub) != "GET" {
			return nil, invalid("unknown subcommand %q for CONFIG", sub)
		}
		name, err := bulkString(args[2], "parameter")
		if err != nil {
			return nil, err
		}
		return ConfigGet{Parameter: name}, nil

	default:
		return nil, invalid("unknown command %q", verb)
	}
}

// parseSet reads key, value and the option pairs of a SET request
func parseSet(verb string, args resp.Array) (Command, error) {
	if len(args) < 3 {
		return nil, arityError(verb)
	}
	key, err := bulkString(args[1], "key")
	if err != nil {
		return nil, err
	}
	value, err := bulkString(args[2], "value")
	if err != nil {
		return nil, err
	}

	cmd := Set{Key: key, Value: value}

	// options come in name/value pairs. Pairs that are not PX are ignored,
	// even when incomplete or not made of bulk strings.
	opts := args[3:]
	for i := 0; i < len(opts); i += 2 {
		name, ok := opts[i].(resp.BulkString)
		if !ok || upper(string(name)) != "PX" {
			continue
		}
		if i+1 >= len(opts) {
			return nil, invalid("option %q requires a value", name)
		}
		optValue, err := bulkString(opts[i+1], "PX value")
		if err != nil {
			return nil, err
		}
		ms, err := strconv.ParseUint(optValue, 10, 64)
		if err != nil || ms == 0 {
			return nil, invalid("invalid PX value %q", optValue)
		}
		cmd.ExpiryMillis = ms
		cmd.HasExpiry = true
	}

	return cmd, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// bulkString returns the text of v or an error naming the argument
func bulkString(v resp.Value, what string) (string, error) {
	s, ok := v.(resp.BulkString)
	if !ok {
		return "", invalid("%s must be a bulk string, got %s", what, resp.TypeName(v))
	}
	return string(s), nil
}

// upper normalizes verbs and option names. Only ASCII input is folded, so a
// name like "\u017fet" never matches SET. A Caser keeps state, so every call
// creates its own.
func upper(s string) string {
	if !isASCII(s) {
		return s
	}
	return cases.Upper(language.Und).String(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func arityError(verb string) error {
	return invalid("wrong number of arguments for %q", verb)
}
