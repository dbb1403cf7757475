package storage

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// MemoryRevisions keeps revision records in memory.
type MemoryRevisions struct {
	mu    sync.RWMutex
	revs  map[string]Revision
	clock func() time.Time
}

// NewMemoryRevisions creates an empty repository.
func NewMemoryRevisions() *MemoryRevisions {
	return &MemoryRevisions{revs: make(map[string]Revision), clock: time.Now}
}

func (m *MemoryRevisions) Get(ctx context.Context, graphID string) (*Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rev, ok := m.revs[graphID]
	if !ok {
		return nil, fmt.Errorf("revision %s: %w", graphID, ErrNotFound)
	}
	rev.Files = maps.Clone(rev.Files)
	return &rev, nil
}

func (m *MemoryRevisions) Commit(ctx context.Context, rev Revision) (*Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rev.Number = m.revs[rev.GraphID].Number + 1
	rev.UpdatedAt = m.clock().UTC()
	rev.Files = maps.Clone(rev.Files)
	m.revs[rev.GraphID] = rev

	out := rev
	out.Files = maps.Clone(rev.Files)
	return &out, nil
}

func (m *MemoryRevisions) Close(ctx context.Context) error { return nil }

var _ Revisions = (*MemoryRevisions)(nil)
