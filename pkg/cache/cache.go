// Package cache provides byte-oriented caching for flowpen collaborators.
//
// The graph engine itself never performs I/O. The programs around it do:
// the template library client caches GraphQL responses, and the session
// server autosaves committed manifests. Both go through the [Cache]
// interface so the backend can be chosen by configuration:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout ("library:<hash>", "manifest:<graph id>").
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores opaque byte payloads with an optional time-to-live.
type Cache interface {
	// Get returns the cached data and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// keyType returns the namespace portion of a key ("library" for
// "library:abc"), used when reporting cache events.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
