// Package unix implements the Unix domain socket connectors of the base
// transport. The server removes a stale socket file before it listens.
package unix
