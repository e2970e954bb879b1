// Package util provides the building blocks of the storage engines that
// implement the db.KVDB interface.
//
// The package contains:
//   - mapheap: a min-heap with key-based access, used as the expiration ledger
//   - lockfreempsc: a lock-free multi-producer single-consumer queue that carries
//     expiry change events from writers to the sweeper of a shard
//   - functions: seed generation and murmur3 string hashing for shard selection
//   - statistics: summary statistics and a size histogram for GetInfo
package util
