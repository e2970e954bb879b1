// Package tcp implements the TCP connectors of the base transport.
//
// Both connectors apply common.SocketConfig (no delay, keep-alive and socket
// buffer sizes) to every connection.
package tcp
