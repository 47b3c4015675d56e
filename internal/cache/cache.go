package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the interface all cache backends implement. Values are opaque
// byte slices; callers own serialization.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyPrefix versions the cache namespace. Bump it when the cached
// payload format changes so stale entries miss instead of corrupting.
const keyPrefix = "modelscout:v1:"

// Key builds a stable cache key for a fetched resource. The raw URL is
// hashed so keys stay filesystem-safe for the disk backend.
func Key(kind, raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return keyPrefix + kind + ":" + hex.EncodeToString(sum[:16])
}
