// Package command maps decoded RESP requests onto the closed set of commands
// understood by rKV.
//
// A request is an array of bulk strings. The first element names the command
// (matched case-insensitively), the remaining elements are its arguments:
//
//	PING
//	ECHO <message>
//	GET <key>
//	SET <key> <value> [PX <milliseconds>]
//	CONFIG GET <parameter>
//
// Every malformed or unsupported request yields an error that wraps
// ErrInvalidCommand. Codec failures are wrapped as well, so callers can still
// detect incomplete input with errors.Is(err, resp.ErrUnexpectedEnd).
//
// Commands are plain values, they are created per request and never stored.
package command
