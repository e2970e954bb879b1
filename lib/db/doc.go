// Package db provides a standardized interface for key-value database implementations.
// It defines the KVDB interface that the rKV server uses to store data, while
// abstracting implementation details of the storage engine.
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides plain writes (Set), writes with a relative expiry (SetE), reads (Get),
//     metadata retrieval (GetInfo) and shutdown of background work (Close).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     advertise through the SupportsFeature method. This allows callers to
//     discover supported operations at runtime.
//
//   - Database Information: The DatabaseInfo structure reports key count, pending
//     expirations, an estimated size, the implementation type and
//     implementation-specific metadata.
//
// Note on Expiry:
//   - Expiry is measured on the wall clock. SetE records the absolute instant
//     write-time + expireIn on the entry.
//   - Get() must never return an entry whose expiry instant has passed, even if
//     the entry still exists internally pending eviction.
//   - A later write to the same key replaces the pending expiry. A plain Set
//     cancels it, so an older deadline never evicts a newer value.
//   - Implementations supporting FeatureGarbageCollect evict expired entries in
//     the background, so keys that are never read again do not leak memory.
//
// Related Packages:
//
// The engines/maple package provides a sharded in-memory implementation of the
// KVDB interface with an expiration ledger and a background sweeper per shard.
//
// The util package provides the data structures used by the engines
// (MapHeap, LockFreeMPSC, SizeHistogram and hashing helpers).
//
// The testing package provides a standardized test suite (RunKVDBTests) and
// benchmarks (RunKVDBBenchmarks) for KVDB implementations.
package db
