// Package resp implements the RESP wire protocol (RESP2 and RESP3) used by rKV.
//
// The package converts between raw bytes and a closed set of typed protocol
// values. Every value kind has exactly one canonical encoding, and decoding a
// canonical encoding yields the same value again.
//
// Key Components:
//
//   - Cursor: A forward-only reader over an immutable byte buffer. It offers
//     fixed-length reads, single byte reads and CRLF terminated line reads and
//     never moves backwards.
//
//   - Value: The sum type of all protocol values (SimpleString, Error, Integer,
//     BulkString, NullBulkString, Array, Null, Boolean, Double, PositiveInfinity,
//     NegativeInfinity, NaN, BigNumber, BulkError, VerbatimString, Map, Set).
//
//   - Decoder: Parses exactly one value from the front of a buffer and reports
//     how many bytes the value occupied, so callers can reassemble frames that
//     are split across network reads and handle pipelined requests. Nesting of
//     aggregates is bounded by MaxDepth.
//
//   - Encode / AppendValue: Render a value into its byte representation.
//     Encoding never fails.
//
// Errors:
//
// Every decode failure wraps one of two sentinel errors. ErrUnexpectedEnd means
// the input ended in the middle of a value and more bytes may complete it.
// ErrInvalidInput means the input can never become a valid value; the wrapped
// message carries a diagnostic.
//
// Thread Safety:
//
// Values are immutable after construction and can be shared between
// goroutines. A Decoder holds only configuration and can be used concurrently.
// A Cursor must not be shared.
package resp
