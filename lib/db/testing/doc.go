// Package testing provides standardised tests and benchmarks for
// database implementations that satisfy the db.KVDB interface.
//
// The package contains:
//   - RunKVDBTests: a test suite for the KVDB contract, including the expiry
//     rules (expired keys are never returned, overwrites replace or cancel a
//     pending expiry, expired keys are evicted without being read)
//   - RunKVDBBenchmarks: throughput benchmarks for common operations
//
// Tests for features an implementation does not advertise via SupportsFeature
// are skipped.
//
// Example usage:
//
//	factory := func() db.KVDB {
//		return NewMyDatabase()
//	}
//
//	dbtesting.RunKVDBTests(t, "MyDatabase", factory)
//	dbtesting.RunKVDBBenchmarks(b, "MyDatabase", factory)
package testing
