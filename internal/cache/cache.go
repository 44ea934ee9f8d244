package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched pages keyed by URL hash. Implementations must be
// safe for repeated Get/Set of the same key.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "ackshually:v1:" + hex.EncodeToString(hash[:])
}
