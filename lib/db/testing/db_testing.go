package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
// Expiry tests assume that background eviction runs at least every 100ms.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("KeyExpiry", func(t *testing.T) {
			testKeyExpiry(t, factory())
		})

		t.Run("ZeroExpiry", func(t *testing.T) {
			testZeroExpiry(t, factory())
		})

		t.Run("OverwriteCancelsExpiry", func(t *testing.T) {
			testOverwriteCancelsExpiry(t, factory())
		})

		t.Run("OverwriteReplacesExpiry", func(t *testing.T) {
			testOverwriteReplacesExpiry(t, factory())
		})

		t.Run("ManyExpiringKeys", func(t *testing.T) {
			testManyExpiringKeys(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("CollisionHandling", func(t *testing.T) {
			testCollisionHandling(t, factory())
		})

		t.Run("ConcurrentUsage", func(t *testing.T) {
			testConcurrentUsage(t, factory())
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// eventually polls cond until it holds or the timeout passed
func eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	database.Set(testKey, testValue1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// the caller may reuse the slice passed to Set
	input := []byte("input-value")
	database.Set("input-key", input)
	input[0] = 'X'
	if result, _ := database.Get("input-key"); !bytes.Equal(result, []byte("input-value")) {
		t.Errorf("Set should copy the value, got %s", result)
	}
}

func testKeyExpiry(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSetE|db.FeatureGet|db.FeatureExpireOnRead)

	testKey := "expiring-key"
	testValue := []byte("expiring-value")

	database.SetE(testKey, testValue, 200*time.Millisecond)

	result, exists := database.Get(testKey)
	if !exists {
		t.Fatalf("Expected key %s to exist before expiry", testKey)
	}
	if !bytes.Equal(result, testValue) {
		t.Errorf("Expected value %s, got %s", testValue, result)
	}

	time.Sleep(250 * time.Millisecond)

	if _, exists = database.Get(testKey); exists {
		t.Errorf("Expected key %s to be expired", testKey)
	}

	// a new value can be stored after expiry
	database.Set(testKey, []byte("fresh"))
	if result, exists = database.Get(testKey); !exists || string(result) != "fresh" {
		t.Errorf("Expected fresh value after expiry, got %s (exists=%v)", result, exists)
	}
}

func testZeroExpiry(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSetE|db.FeatureGet)

	database.SetE("zero", []byte("value"), 0)
	database.SetE("negative", []byte("value"), -time.Second)

	time.Sleep(150 * time.Millisecond)

	for _, key := range []string{"zero", "negative"} {
		if _, exists := database.Get(key); !exists {
			t.Errorf("Expected key %s without expiry to exist", key)
		}
	}
}

func testOverwriteCancelsExpiry(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureGet)

	database.SetE("key", []byte("old"), 50*time.Millisecond)
	database.Set("key", []byte("new"))

	// wait for several sweeps past the old deadline
	time.Sleep(300 * time.Millisecond)

	result, exists := database.Get("key")
	if !exists {
		t.Fatalf("Expected overwritten key to survive the old expiry")
	}
	if string(result) != "new" {
		t.Errorf("Expected value new, got %s", result)
	}
}

func testOverwriteReplacesExpiry(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSetE|db.FeatureGet|db.FeatureExpireOnRead)

	// extended
	database.SetE("extended", []byte("v1"), 50*time.Millisecond)
	database.SetE("extended", []byte("v2"), 10*time.Second)

	// shortened
	database.SetE("shortened", []byte("v1"), 10*time.Second)
	database.SetE("shortened", []byte("v2"), 50*time.Millisecond)

	time.Sleep(300 * time.Millisecond)

	if result, exists := database.Get("extended"); !exists || string(result) != "v2" {
		t.Errorf("Expected extended key to hold v2, got %s (exists=%v)", result, exists)
	}
	if _, exists := database.Get("shortened"); exists {
		t.Errorf("Expected shortened key to be expired")
	}
}

func testManyExpiringKeys(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureGet|db.FeatureGarbageCollect)

	const numKeys = 1000

	for i := 0; i < numKeys; i++ {
		database.SetE(fmt.Sprintf("expiring-%d", i), []byte("value"), 20*time.Millisecond)
	}
	for i := 0; i < numKeys; i++ {
		database.Set(fmt.Sprintf("stable-%d", i), []byte("value"))
	}

	// expired keys are evicted even though they are never read again
	evicted := eventually(3*time.Second, func() bool {
		return database.GetInfo().KeyCount == numKeys
	})
	if !evicted {
		t.Fatalf("Expected %d keys after eviction, got %d", numKeys, database.GetInfo().KeyCount)
	}

	drained := eventually(time.Second, func() bool {
		return database.GetInfo().PendingExpirations == 0
	})
	if !drained {
		t.Errorf("Expected no pending expirations, got %d", database.GetInfo().PendingExpirations)
	}

	for i := 0; i < numKeys; i++ {
		if _, exists := database.Get(fmt.Sprintf("stable-%d", i)); !exists {
			t.Fatalf("Expected stable-%d to exist", i)
		}
		if _, exists := database.Get(fmt.Sprintf("expiring-%d", i)); exists {
			t.Fatalf("Expected expiring-%d to be gone", i)
		}
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	t.Run("EmptyKey", func(t *testing.T) {
		database.Set("", []byte("empty-key-value"))
		result, exists := database.Get("")
		if !exists || string(result) != "empty-key-value" {
			t.Errorf("Expected empty key to be stored, got %s (exists=%v)", result, exists)
		}
	})

	t.Run("EmptyValue", func(t *testing.T) {
		database.Set("empty-value", []byte{})
		result, exists := database.Get("empty-value")
		if !exists {
			t.Errorf("Expected key with empty value to exist")
		}
		if len(result) != 0 {
			t.Errorf("Expected empty value, got %d bytes", len(result))
		}
	})

	t.Run("NilValue", func(t *testing.T) {
		database.Set("nil-value", nil)
		if _, exists := database.Get("nil-value"); !exists {
			t.Errorf("Expected key with nil value to exist")
		}
	})

	t.Run("BinaryData", func(t *testing.T) {
		value := []byte{0x00, 0xff, '\r', '\n', 0x80}
		database.Set("binary\x00key", value)
		result, exists := database.Get("binary\x00key")
		if !exists || !bytes.Equal(result, value) {
			t.Errorf("Expected binary value to round trip, got %v", result)
		}
	})

	t.Run("LargeValue", func(t *testing.T) {
		value := bytes.Repeat([]byte{'x'}, 4*1024*1024)
		database.Set("large", value)
		result, exists := database.Get("large")
		if !exists || !bytes.Equal(result, value) {
			t.Errorf("Expected large value to round trip")
		}
	})

	t.Run("UnicodeKey", func(t *testing.T) {
		database.Set("schlüssel-🔑", []byte("wert"))
		if result, exists := database.Get("schlüssel-🔑"); !exists || string(result) != "wert" {
			t.Errorf("Expected unicode key to be stored, got %s", result)
		}
	})
}

func testCollisionHandling(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	prefix := "collision-test-"
	numKeys := 10_000

	for i := 0; i < numKeys; i++ {
		database.Set(fmt.Sprintf("%s%d", prefix, i), []byte(fmt.Sprintf("value-%d", i)))
	}

	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("%s%d", prefix, i)
		expectedValue := []byte(fmt.Sprintf("value-%d", i))

		actualValue, exists := database.Get(key)
		if !exists {
			t.Errorf("Key %s not found", key)
			continue
		}
		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value for key %s does not match: expected %s, got %s", key, expectedValue, actualValue)
		}
	}
}

func testConcurrentUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureGet)

	const (
		numWorkers   = 8
		opsPerWorker = 2_000
	)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			for i := 0; i < opsPerWorker; i++ {
				hot := fmt.Sprintf("hot-key-%d", i%50)
				own := fmt.Sprintf("worker-%d-key-%d", workerId, i)

				switch i % 10 {
				case 0, 1, 2, 3:
					database.Set(hot, []byte(hot))
				case 4, 5:
					database.SetE(hot, []byte(hot), time.Hour)
				case 6:
					database.SetE(hot, []byte(hot), time.Millisecond)
				default:
					if value, ok := database.Get(hot); ok && string(value) != hot {
						t.Errorf("Unexpected value for %s: %s", hot, value)
					}
				}

				database.Set(own, []byte(own))
			}
		}(w)
	}

	wg.Wait()

	// keys written by a single worker are never lost
	for w := 0; w < numWorkers; w++ {
		for i := 0; i < opsPerWorker; i++ {
			own := fmt.Sprintf("worker-%d-key-%d", w, i)
			if value, ok := database.Get(own); !ok || string(value) != own {
				t.Fatalf("Expected %s to exist with its own value, got %s (exists=%v)", own, value, ok)
			}
		}
	}
}

// testConcurrentWriters lets writers race on one key with distinct values.
// After each round the key holds exactly one of the values written in it.
func testConcurrentWriters(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE|db.FeatureGet)

	const (
		numWriters = 32
		numRounds  = 50
		key        = "contended"
	)

	for round := 0; round < numRounds; round++ {
		written := make(map[string]struct{}, numWriters)
		for w := 0; w < numWriters; w++ {
			written[fmt.Sprintf("round-%d-writer-%d", round, w)] = struct{}{}
		}

		start := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(numWriters)
		for w := 0; w < numWriters; w++ {
			go func(writer int) {
				defer wg.Done()
				value := []byte(fmt.Sprintf("round-%d-writer-%d", round, writer))
				<-start
				if writer%2 == 0 {
					database.Set(key, value)
				} else {
					database.SetE(key, value, time.Hour)
				}
			}(w)
		}
		close(start)
		wg.Wait()

		value, ok := database.Get(key)
		if !ok {
			t.Fatalf("Round %d: expected %s to exist", round, key)
		}
		if _, found := written[string(value)]; !found {
			t.Fatalf("Round %d: expected one of the written values, got %q", round, value)
		}
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureSetE)

	for i := 0; i < 100; i++ {
		database.Set(fmt.Sprintf("key-%d", i), []byte("value"))
	}
	for i := 0; i < 10; i++ {
		database.SetE(fmt.Sprintf("expiring-%d", i), []byte("value"), time.Hour)
	}

	info := database.GetInfo()
	if info.KeyCount != 110 {
		t.Errorf("Expected 110 keys, got %d", info.KeyCount)
	}
	if info.DbType == "" {
		t.Errorf("Expected a database type")
	}
	if info.SizeBytes <= 0 {
		t.Errorf("Expected a positive size estimate, got %d", info.SizeBytes)
	}
	for _, f := range info.SupportedFeatures {
		if !database.SupportsFeature(f) {
			t.Errorf("Listed feature %s is not supported", f)
		}
	}

	// the ledger is filled asynchronously
	if database.SupportsFeature(db.FeatureGarbageCollect) {
		ok := eventually(time.Second, func() bool {
			return database.GetInfo().PendingExpirations == 10
		})
		if !ok {
			t.Errorf("Expected 10 pending expirations, got %d", database.GetInfo().PendingExpirations)
		}
	}
}
