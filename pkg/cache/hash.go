package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keyer generates cache keys for the payloads flowpen caches.
type Keyer interface {
	// LibraryKey is the key for a template library fetched from endpoint.
	LibraryKey(endpoint string) string

	// ManifestKey is the key for the latest autosaved manifest of a graph.
	ManifestKey(graphID string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LibraryKey hashes the endpoint so arbitrary URLs make safe keys.
func (DefaultKeyer) LibraryKey(endpoint string) string {
	return hashKey("library", endpoint)
}

// ManifestKey keys manifests by graph id directly; ids are opaque tokens.
func (DefaultKeyer) ManifestKey(graphID string) string {
	return "manifest:" + graphID
}
