package maple

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/rKV/lib/db"
	"github.com/ValentinKolb/rKV/lib/db/engines/maple/internal"
	"github.com/ValentinKolb/rKV/lib/db/util"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/sourcegraph/conc"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultSweepInterval = 100 * time.Millisecond // Default interval between sweeps
	samplesPerShard      = 100                    // Entries sampled per shard by GetInfo
	entryOverhead        = 24                     // Bytes per entry besides key and value (slice header + expiry)
)

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements a sharded in-memory database with an expiration ledger
type mapleImpl struct {
	seed   uint32            // Seed for hash function
	shards []*internal.Shard // Array of shards
	clock  func() time.Time

	// sweeper
	sweepInterval time.Duration
	sweepRunning  atomic.Bool
	sweepers      conc.WaitGroup
	stopOnce      sync.Once
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	NumShards     int              // Number of shards (0 = number of CPUs)
	SweepInterval time.Duration    // Time between sweeps (0 = 100ms)
	Clock         func() time.Time // Wall clock (nil = time.Now)
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		NumShards:     runtime.NumCPU(),
		SweepInterval: defaultSweepInterval,
		Clock:         time.Now,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional)
// and starts one sweeper goroutine per shard. Call Close to stop them.
//
// Thread-safety: This function is not thread-safe and should only be called once
// during initialization.
func NewMapleDB(opts *DBOptions) db.KVDB {
	if opts == nil {
		opts = DefaultOptions()
	}

	numShards := opts.NumShards
	if numShards <= 0 {
		numShards = runtime.NumCPU()
	}
	interval := opts.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	shards := make([]*internal.Shard, numShards)
	for i := range shards {
		shards[i] = internal.NewShard()
	}

	newDB := &mapleImpl{
		seed:          util.GenerateSeed(),
		shards:        shards,
		clock:         clock,
		sweepInterval: interval,
	}

	newDB.startSweepers()

	return newDB
}

// shardFor returns the shard responsible for key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) shardFor(key string) *internal.Shard {
	return internal.GetShard(util.HashString(key, maple.seed), maple.shards)
}

// now returns the current instant in unix nanoseconds
func (maple *mapleImpl) now() int64 {
	return maple.clock().UnixNano()
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry without expiry.
// A pending expiry of the key is cancelled.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Set(key string, value []byte) {
	maple.store(key, value, 0)
}

// SetE inserts or updates an entry that expires expireIn after now.
// Durations beyond the representable range never expire in practice
// (the instant is capped at the largest unix nanosecond).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) SetE(key string, value []byte, expireIn time.Duration) {
	if expireIn <= 0 {
		maple.store(key, value, 0)
		return
	}

	now := maple.now()
	expireAt := int64(math.MaxInt64)
	if int64(expireIn) < math.MaxInt64-now {
		expireAt = now + int64(expireIn)
	}
	maple.store(key, value, expireAt)
}

// store writes the entry and notifies the sweeper of the shard whenever the
// expiry of the key changed from or to a deadline.
//
// Thread-safety: This function uses the per-key linearizability of Compute.
func (maple *mapleImpl) store(key string, value []byte, expireAt int64) {
	shard := maple.shardFor(key)

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	notify := expireAt != 0
	shard.Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if loaded && old.ExpireAt != 0 {
			// the ledger may hold a record for the old deadline
			notify = true
		}
		return internal.Entry{Value: valueCopy, ExpireAt: expireAt}, false
	})

	if notify {
		shard.Events.Push(internal.Event{Key: key})
	}
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The boolean indicates whether a (not expired) value for the key was found.
// The returned value is a copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key string) ([]byte, bool) {
	entry, ok := maple.shardFor(key).Data.Load(key)
	if !ok || entry.Expired(maple.now()) {
		return nil, false
	}

	data := make([]byte, len(entry.Value))
	copy(data, entry.Value)
	return data, true
}

// --------------------------------------------------------------------------
// Sweeper
// --------------------------------------------------------------------------

// startSweepers starts one sweeper per shard.
// if the sweepers are already running, this function does nothing
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) startSweepers() {
	if !maple.sweepRunning.CompareAndSwap(false, true) {
		return
	}
	for _, shard := range maple.shards {
		maple.sweepers.Go(func() {
			maple.sweep(shard)
		})
	}
}

// stopSweepers stops all sweepers and waits until they returned.
// the sweepers can't be started again after they have been stopped!
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) stopSweepers() {
	maple.stopOnce.Do(func() {
		maple.sweepRunning.Store(false)
		for _, shard := range maple.shards {
			shard.Events.Close()
		}
		maple.sweepers.Wait()
	})
}

// sweep is the loop of the sweeper of one shard. It alternates between
// folding change events into the ledger and evicting due entries.
// WARNING: this method must only be started by startSweepers
//
// Thread-safety: This function is not thread-safe! It is the only user of shard.Ledger.
func (maple *mapleImpl) sweep(shard *internal.Shard) {
	timer := time.NewTimer(maple.sweepInterval)
	defer timer.Stop()

	for {
		timer.Reset(maple.sweepInterval)

		due := false
		for !due {
			select {
			case event, ok := <-shard.Events.Recv():
				if !ok {
					return
				}
				maple.reconcile(shard, event.Key)

			case <-timer.C:
				due = true
			}
		}

		maple.evictDue(shard, maple.now())
	}
}

// reconcile makes the ledger record of key match the stored entry
func (maple *mapleImpl) reconcile(shard *internal.Shard, key string) {
	if entry, ok := shard.Data.Load(key); ok && entry.ExpireAt != 0 {
		shard.Ledger.AddItem(key, entry.ExpireAt)
	} else {
		shard.Ledger.RemoveByKey(key)
	}
	shard.Pending.Store(int64(shard.Ledger.Len()))
}

// evictDue removes every entry whose ledger deadline is at or before now
func (maple *mapleImpl) evictDue(shard *internal.Shard, now int64) {
	evicted := 0
	for {
		item, exists := shard.Ledger.Peek()
		if !exists || item.Priority > now {
			break
		}
		key := item.Key

		shard.Data.Compute(key, func(e internal.Entry, loaded bool) (internal.Entry, bool) {
			// the entry may have been rewritten since the record was added,
			// only an entry that is still expired is removed
			remove := !loaded || e.Expired(now)
			if loaded && remove {
				evicted++
			}
			return e, remove
		})

		/*
			The record is dropped even if the entry was kept. A rewrite that kept
			the entry also pushed an event, which adds a fresh record for the new
			deadline once it is processed. Keeping the stale record would make
			this loop spin on it.
		*/
		shard.Ledger.RemoveByKey(key)
	}
	shard.Pending.Store(int64(shard.Ledger.Len()))

	if evicted > 0 {
		Logger.Debugf("Evicted %d expired keys, %d expirations pending", evicted, shard.Ledger.Len())
	}
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database.
// Sizes are estimated from a sample of each shard.
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	now := maple.now()
	histogram := util.NewSizeHistogram()

	var (
		mu             sync.Mutex
		wg             conc.WaitGroup
		samplesCount   int
		expiredBacklog int
		keyCount       int
		pending        int
		shardSizes     = make([]float64, len(maple.shards))
	)

	for i, shard := range maple.shards {
		wg.Go(func() {
			count, expired := 0, 0
			shard.Data.Range(func(key string, entry internal.Entry) bool {
				histogram.AddSample(len(key) + len(entry.Value))
				if entry.Expired(now) {
					expired++
				}
				count++
				return count < samplesPerShard
			})

			size := shard.Data.Size()

			mu.Lock()
			defer mu.Unlock()
			samplesCount += count
			expiredBacklog += expired
			keyCount += size
			pending += int(shard.Pending.Load())
			shardSizes[i] = float64(size)
		})
	}
	wg.Wait()

	var backlog float64
	if samplesCount > 0 {
		backlog = float64(expiredBacklog) / float64(samplesCount)
	}

	// weighted estimate (60% median, 40% average) per entry
	perEntry := (histogram.Percentile(50)*60+histogram.AverageSize()*40)/100 + entryOverhead

	meta := &struct {
		ShardCount        int                    `json:"shard_count"`
		SweepInterval     string                 `json:"sweep_interval"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		ExpiredBacklog    float64                `json:"expired_backlog"`
		Info              string                 `json:"info"`
	}{
		ShardCount:        len(maple.shards),
		SweepInterval:     maple.sweepInterval.String(),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		ExpiredBacklog:    backlog, // share of sampled entries that are expired but not yet evicted
		Info:              "SizeBytes and ExpiredBacklog are estimates based on sampling.",
	}

	return db.DatabaseInfo{
		KeyCount:           keyCount,
		PendingExpirations: pending,
		SizeBytes:          perEntry * keyCount,
		DbType:             db.ImplMaple,
		SupportedFeatures:  []db.Feature{db.FeatureSet, db.FeatureSetE, db.FeatureGet, db.FeatureExpireOnRead, db.FeatureGarbageCollect},
		Metadata:           meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureSetE |
		db.FeatureGet |
		db.FeatureExpireOnRead |
		db.FeatureGarbageCollect

	return supportedFeatures&feature == feature
}

// Close stops the sweepers. Entries stay readable after Close, but are no
// longer evicted in the background.
func (maple *mapleImpl) Close() error {
	maple.stopSweepers()
	Logger.Debugf("Stopped %d sweepers", len(maple.shards))
	return nil
}
