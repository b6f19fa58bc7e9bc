// Package cache stores rendered artifacts between CLI runs.
//
// Artifacts are keyed by a hash of the input they were rendered from
// ([Key]), so an entry never goes stale. The TTL bounds disk usage.
//
// [FileCache] keeps entries under a directory (by default
// $XDG_CACHE_HOME/seqtower/renders). [NullCache] disables caching.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultTTL is how long a rendered artifact is kept.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store keyed by string.
type Cache interface {
	// Get returns the data for key and whether it was found.
	// Expired and corrupt entries are misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Key derives a cache key for an artifact of the given kind (e.g. "svg")
// rendered from input.
func Key(kind string, input []byte) string {
	return kind + ":" + Hash(input)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
