// Package store provides a high-level interface for key-value storage operations
// with expiration and unified error handling. It serves as an abstraction layer
// over the lower-level db.KVDB implementations and over remote rKV servers.
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     a key-value store (Set with optional expiry, Get, GetDBInfo, Close). The RESP
//     command handler of the server and the command line tools only depend on this
//     interface.
//
//   - Error System: A structured error reporting mechanism using typed return codes
//     (RetCode) and descriptive messages. Callers inspect them with errors.As.
//
//   - DBFactory: A function type that abstracts the creation of underlying db.KVDB
//     instances.
//
// Implementations:
//
//   - Local Store (lstore): A thin wrapper that directly utilizes a db.KVDB
//     instance. Used by the server.
//
//   - RESP client (rpc/client): Speaks RESP to a remote rKV server and implements
//     the same interface, so tools can run against either.
package store
