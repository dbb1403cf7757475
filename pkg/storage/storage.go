// Package storage is the persistence target for saved graphs.
//
// A save produces several blobs (graph JSON, binary snapshot, solution)
// and one revision record pointing at them. Blobs go to a [Bucket]; the
// record goes to a [Revisions] repository:
//
//   - [FileBucket]: blobs as files under a directory
//   - [MemoryRevisions]: revision records in memory, for tests and the CLI
//   - [MongoRevisions]: revision records in a MongoDB collection
//
// Storage is never touched by the graph engine. The persist package and
// the session server drive it.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a blob or revision does not exist.
var ErrNotFound = errors.New("not found")

// Bucket stores named blobs.
type Bucket interface {
	// Put writes data under name, replacing any previous blob.
	Put(ctx context.Context, name string, data []byte) error

	// Get reads a blob. A missing blob yields ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}

// Revision is the record of the latest save of a graph.
type Revision struct {
	GraphID   string            `json:"graphId" bson:"_id"`
	Name      string            `json:"name" bson:"name"`
	AuthorID  string            `json:"authorId" bson:"author_id"`
	Number    int               `json:"revision" bson:"revision"`
	Files     map[string]string `json:"files" bson:"files"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updated_at"`
}

// Revisions stores one revision record per graph.
type Revisions interface {
	// Get returns the current revision. A missing graph yields ErrNotFound.
	Get(ctx context.Context, graphID string) (*Revision, error)

	// Commit stores rev as the next revision of its graph. Number and
	// UpdatedAt are assigned by the repository; the stored record is
	// returned.
	Commit(ctx context.Context, rev Revision) (*Revision, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
