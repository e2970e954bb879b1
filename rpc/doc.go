// Package rpc contains the network side of rKV.
//
// The package is organized into several subpackages:
//
//   - common: Server and client configuration and the logger setup.
//
//   - transport: Connection handling with TCP and Unix socket implementations.
//     The server side reassembles RESP requests across reads and answers
//     pipelined requests in order.
//
//   - server: Interprets requests as commands, executes them against the local
//     store and exposes metrics.
//
//   - client: A RESP client with typed helpers that also implements store.IStore.
package rpc
