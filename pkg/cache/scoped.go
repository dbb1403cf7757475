package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, e.g.
// one namespace per author so autosaves never collide:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "author:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LibraryKey generates a prefixed library key.
func (k *ScopedKeyer) LibraryKey(endpoint string) string {
	return k.prefix + k.inner.LibraryKey(endpoint)
}

// ManifestKey generates a prefixed manifest key.
func (k *ScopedKeyer) ManifestKey(graphID string) string {
	return k.prefix + k.inner.ManifestKey(graphID)
}
