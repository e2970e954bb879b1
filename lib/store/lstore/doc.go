// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. It provides a thin wrapper around any db.KVDB
// implementation. Data is stored entirely in memory and is not persisted
// between process restarts.
//
// Before executing an operation the store checks if the underlying db.KVDB
// supports it through SupportsFeature. Unsupported operations return a
// *store.Error with RetCUnsupportedOperation instead of failing silently.
//
// Thread Safety:
//
//	The store keeps no state of its own, thread safety is provided by the
//	underlying db.KVDB implementation.
//
// Usage Example:
//
//	factory := func() db.KVDB { return maple.NewMapleDB(maple.DefaultOptions()) }
//	s := lstore.NewLocalStore(factory)
//	defer s.Close()
//
//	// Store a value that expires after 5 minutes
//	err := s.Set("session:123", sessionData, 5*time.Minute)
//
//	// Retrieve the value
//	value, exists, err := s.Get("session:123")
package lstore
