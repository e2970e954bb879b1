package db

import "time"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMaple Implementation = "maple"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet            Feature = 1 << iota // Support for Set operations
	FeatureSetE                               // Support for SetE operations
	FeatureGet                                // Support for Get operations
	FeatureExpireOnRead                       // Get hides entries whose expiry has passed
	FeatureGarbageCollect                     // Expired entries are evicted in the background
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureSetE:
		return "SetE"
	case FeatureGet:
		return "Get"
	case FeatureExpireOnRead:
		return "ExpireOnRead"
	case FeatureGarbageCollect:
		return "GarbageCollect"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	KeyCount           int            `json:"key_count"`
	PendingExpirations int            `json:"pending_expirations"`
	SizeBytes          int            `json:"size_bytes"`
	DbType             Implementation `json:"db_type"`
	SupportedFeatures  []Feature      `json:"supported_features"`
	Metadata           interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for key-value database implementations.
// Keys and values are opaque to the database. Implementations can vary in
// their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry. A pending expiration of the key is cancelled.
	Set(key string, value []byte)

	// SetE inserts or updates an entry that expires expireIn after the write.
	// A pending expiration of the key is replaced. expireIn <= 0 behaves like Set.
	SetE(key string, value []byte, expireIn time.Duration)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// The returned slice is a copy and may be modified by the caller.
	Get(key string) (value []byte, loaded bool)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close stops all background work of the database.
	Close() (err error)
}
