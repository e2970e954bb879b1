package maple

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/lib/db"
	"github.com/ValentinKolb/rKV/lib/db/engines/maple/internal"
)

// fakeClock is a manually advanced wall clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestDB returns a single shard database driven by a fake clock
func newTestDB(t *testing.T) (*mapleImpl, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	database := NewMapleDB(&DBOptions{
		NumShards:     1,
		SweepInterval: 5 * time.Millisecond,
		Clock:         clock.Now,
	}).(*mapleImpl)
	t.Cleanup(func() { database.Close() })
	return database, clock
}

// waitFor polls cond for up to a second
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (maple *mapleImpl) rawEntry(key string) (internal.Entry, bool) {
	return maple.shardFor(key).Data.Load(key)
}

func TestExpiredOnRead(t *testing.T) {
	database, clock := newTestDB(t)

	database.SetE("k", []byte("v"), 100*time.Millisecond)

	clock.Advance(99 * time.Millisecond)
	if _, ok := database.Get("k"); !ok {
		t.Errorf("Expected key to exist before its deadline")
	}

	clock.Advance(time.Millisecond)
	if _, ok := database.Get("k"); ok {
		t.Errorf("Expected key to be expired at its deadline")
	}
}

func TestSweeperEvicts(t *testing.T) {
	database, clock := newTestDB(t)

	database.SetE("k", []byte("v"), time.Second)
	waitFor(t, "ledger record", func() bool {
		return database.shards[0].Pending.Load() == 1
	})

	// not yet due, the sweeper keeps the entry
	time.Sleep(20 * time.Millisecond)
	if _, ok := database.rawEntry("k"); !ok {
		t.Fatalf("Expected entry to be kept before its deadline")
	}

	clock.Advance(time.Second)
	waitFor(t, "eviction", func() bool {
		_, ok := database.rawEntry("k")
		return !ok
	})

	if p := database.shards[0].Pending.Load(); p != 0 {
		t.Errorf("Expected empty ledger after eviction, got %d", p)
	}
}

func TestPlainSetRemovesLedgerRecord(t *testing.T) {
	database, clock := newTestDB(t)

	database.SetE("k", []byte("old"), time.Second)
	waitFor(t, "ledger record", func() bool {
		return database.shards[0].Pending.Load() == 1
	})

	database.Set("k", []byte("new"))
	waitFor(t, "ledger record removal", func() bool {
		return database.shards[0].Pending.Load() == 0
	})

	clock.Advance(time.Hour)
	time.Sleep(20 * time.Millisecond)

	if value, ok := database.Get("k"); !ok || string(value) != "new" {
		t.Errorf("Expected new value to survive, got %s (exists=%v)", value, ok)
	}
}

func TestRewriteBeforeEventIsProcessed(t *testing.T) {
	database, clock := newTestDB(t)
	shard := database.shards[0]

	database.SetE("k", []byte("v1"), time.Second)
	waitFor(t, "ledger record", func() bool {
		return shard.Pending.Load() == 1
	})

	// simulate a stale record: the entry now expires much later than the
	// ledger believes and the sweep happens before the event is folded in
	shard.Data.Store("k", internal.Entry{Value: []byte("v2"), ExpireAt: clock.Now().Add(time.Hour).UnixNano()})
	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)

	if value, ok := database.Get("k"); !ok || string(value) != "v2" {
		t.Errorf("Expected rewritten entry to survive a stale record, got %s (exists=%v)", value, ok)
	}
}

func TestHugeExpiryDoesNotOverflow(t *testing.T) {
	database, _ := newTestDB(t)

	database.SetE("k", []byte("v"), time.Duration(1<<63-1))
	entry, ok := database.rawEntry("k")
	if !ok {
		t.Fatalf("Expected entry to exist")
	}
	if entry.ExpireAt <= 0 {
		t.Errorf("Expected a positive expiry instant, got %d", entry.ExpireAt)
	}
	if _, ok := database.Get("k"); !ok {
		t.Errorf("Expected entry with huge expiry to be readable")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	database := NewMapleDB(&DBOptions{NumShards: 4})
	database.Set("k", []byte("v"))

	if err := database.Close(); err != nil {
		t.Errorf("Unexpected error on close: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Errorf("Unexpected error on second close: %v", err)
	}

	// data stays readable, expiring writes are still honored on read
	database.SetE("e", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok := database.Get("e"); ok {
		t.Errorf("Expected expired key to be hidden after close")
	}
	if _, ok := database.Get("k"); !ok {
		t.Errorf("Expected key to stay readable after close")
	}
}

func TestSupportsFeature(t *testing.T) {
	database, _ := newTestDB(t)

	if !database.SupportsFeature(db.FeatureSet | db.FeatureSetE | db.FeatureGet) {
		t.Errorf("Expected combined features to be supported")
	}
	if database.SupportsFeature(db.Feature(1 << 40)) {
		t.Errorf("Expected unknown feature to be unsupported")
	}
}

func TestShardDistribution(t *testing.T) {
	database := NewMapleDB(&DBOptions{NumShards: 8}).(*mapleImpl)
	defer database.Close()

	for i := 0; i < 8000; i++ {
		database.Set(fmt.Sprintf("key-%d", i), nil)
	}

	for i, shard := range database.shards {
		if shard.Data.Size() == 0 {
			t.Errorf("Shard %d received no keys", i)
		}
	}
}
