// Package server implements the rKV server. It connects a server transport
// to a local store backed by the maple engine.
//
// Request handling:
//
//   - The transport hands the buffered bytes of a connection to the server.
//     The first RESP value is decoded with the configured nesting limit and
//     interpreted as a command (PING, ECHO, GET, SET [PX ms], CONFIG GET).
//
//   - Commands are executed by an IRPCServerAdapter. The store adapter replies
//     with +PONG, the echoed bulk string, the stored value or $-1, +OK and a
//     two element array for CONFIG GET. Unknown CONFIG GET parameters get no
//     reply.
//
//   - Invalid commands are answered with -ERR invalid command and the
//     connection stays open.
//
// Metrics:
//
//	Every server owns a VictoriaMetrics set with command counters, command
//	latency histograms, the number of invalid commands, open connections, key
//	count and pending expirations. If MetricsEndpoint is set the set is served
//	in Prometheus text format on /metrics.
package server
