// Package base implements the connection handling shared by all transports.
// Protocol specific parts (listen, dial, socket options) are injected through
// IServerConnector and IClientConnector.
//
// Server:
//
//   - Every accepted connection gets a ULID for log correlation and is served
//     by its own goroutine.
//
//   - Read bytes are appended to a per connection buffer. The handler is called
//     until it reports that the buffer holds no further complete request, so
//     pipelined requests are answered in order and a request split across reads
//     is processed once its last byte arrived.
//
//   - All replies produced by one read are written with a single net.Buffers
//     write.
//
//   - A connection is closed once its unprocessed bytes exceed MaxRequestBytes.
//     Idle connections are closed after TimeoutSecond. An optional token bucket
//     limits the commands per second of each connection.
//
// Client:
//
//   - A pool of connections per endpoint, selected round robin.
//
//   - Each connection is locked for one full request/reply exchange. The reply
//     is complete once the RESP decoder can parse a whole value from the read
//     bytes.
//
//   - Failed exchanges drop the connection and are retried with exponential
//     backoff (50ms doubling, +-10% jitter). The next exchange on a dropped
//     connection reconnects first.
package base
