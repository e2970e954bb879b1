// Package maple implements a sharded in-memory key-value database (KVDB)
// with time based expiry. It provides a complete implementation of the
// db.KVDB interface with a focus on thread safety and predictable memory use.
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.KVDB. It owns
//     the shards, starts one sweeper goroutine per shard and provides the
//     public API for key-value operations.
//
//   - Shard: A partition of the key space. Each shard has its own concurrent
//     data map (xsync.MapOf), its own expiration ledger (util.MapHeap) and its
//     own event queue (util.LockFreeMPSC). Keys are assigned to shards by a
//     seeded murmur3 hash, right-shifted by 7 bits before the modulo.
//
//   - Entry: A value together with its absolute expiry instant in unix
//     nanoseconds (0 = never).
//
// Expiry:
//
// SetE stores write-time + expireIn on the entry. Get compares that instant
// with the clock on every read, so an expired entry is never returned even
// if it is still physically present.
//
// To reclaim memory of keys that are never read again, every shard keeps a
// ledger that holds at most one record per key: the deadline the sweeper last
// saw for it. The ledger is only touched by the sweeper of the shard, so it
// needs no locks.
//
//  1. Write: the entry is replaced atomically with Compute. If the new or the
//     old entry carries a deadline, an event with the key is pushed to the
//     queue of the shard.
//  2. Reconcile: the sweeper loads the current entry of an event key. If it
//     has a deadline, the ledger record is added or moved to it, otherwise the
//     record is removed. A plain Set therefore cancels a pending expiry.
//  3. Sweep: every SweepInterval (default 100ms) the sweeper pops all records
//     whose deadline has passed. The entry is only deleted if it is still
//     expired at that moment, a concurrent rewrite is never evicted. The
//     record is dropped in both cases, a rewrite re-adds it through its own
//     event.
//
// Close stops the sweepers. The data stays readable.
package maple
