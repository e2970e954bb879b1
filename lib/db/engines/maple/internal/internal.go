package internal

import (
	"fmt"
	"sync/atomic"

	"github.com/ValentinKolb/rKV/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Events signal that the expiry of a key may have changed
// --------------------------------------------------------------------------

// Event tells the sweeper of a shard to reconcile the ledger record of Key
// with the entry currently stored for it
type Event struct {
	Key string
}

func (e Event) String() string {
	return fmt.Sprintf("Event{Key: %q}", e.Key)
}

// --------------------------------------------------------------------------
// Entry Type (value with expiry metadata)
// --------------------------------------------------------------------------

// Entry stores a value and its absolute expiry instant
type Entry struct {
	Value    []byte // Stored data
	ExpireAt int64  // Expiry instant in unix nanoseconds (0 = never)
}

// Expired reports whether the entry is logically expired at now (unix nanoseconds)
func (e Entry) Expired(now int64) bool {
	return e.ExpireAt != 0 && now >= e.ExpireAt
}

// --------------------------------------------------------------------------
// Shard Type (partition of the database)
// --------------------------------------------------------------------------

// Shard represents a partition of the database.
// Data is shared by all goroutines, Ledger is owned by the sweeper of the shard.
type Shard struct {
	Data    *xsync.MapOf[string, Entry] // Map of live entries
	Ledger  *util.MapHeap[string]       // Pending expirations ordered by instant
	Events  *util.LockFreeMPSC[Event]   // Closed to stop the sweeper of the shard
	Pending atomic.Int64                // Ledger size as last seen by the sweeper
}

// NewShard creates a new, empty shard
func NewShard() *Shard {
	return &Shard{
		Data:   xsync.NewMapOf[string, Entry](),
		Ledger: util.NewMapHeap[string](),
		Events: util.NewLockFreeMPSC[Event](),
	}
}

// GetShard returns the appropriate shard for a hashed key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func GetShard[T any](hash uint64, shards []*T) *T {
	// Shift right by 7 bits to use higher-quality bits for distribution
	return shards[(hash>>7)%uint64(len(shards))]
}
