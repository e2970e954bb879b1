package util

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/spaolacci/murmur3"
)

// --------------------------------------------------------------------------
// General Utility Functions
// --------------------------------------------------------------------------

// GenerateSeed creates a random seed for internal hash distribution
func GenerateSeed() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fall back to the clock if the system source fails
		return uint32(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint32(b[:])
}

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// HashString generates a 64 bit murmur3 hash of s with the given seed
func HashString(s string, seed uint32) uint64 {
	return murmur3.Sum64WithSeed([]byte(s), seed)
}
