// Package persist runs the save job for a graph.
//
// A save uploads three blobs in parallel to a [storage.Bucket]:
//
//   - the manifest as JSON
//   - the binary (BSON) snapshot derived from it
//   - the last solution, as produced by the solver
//
// Each upload gets a fresh name, so a failed save never overwrites the
// blobs of the previous revision. Only when every upload succeeded is the
// revision record moved to the new names.
//
//	runner := persist.NewRunner(bucket, revisions, logger)
//	res, err := runner.Save(ctx, persist.Job{Manifest: store.Manifest()})
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flowpen/pkg/errors"
	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/observability"
	"github.com/matzehuels/flowpen/pkg/storage"
)

// Job is one save request.
type Job struct {
	Manifest graph.Manifest
	// Solution overrides Manifest.Graph.Solution when set.
	Solution json.RawMessage
}

// Result describes a completed save.
type Result struct {
	Revision *storage.Revision
	Files    map[string]string
	Bytes    int
	Duration time.Duration
}

// Runner executes save jobs. It is safe for concurrent use.
type Runner struct {
	Bucket    storage.Bucket
	Revisions storage.Revisions
	Logger    *log.Logger

	// NewName allocates blob names. Defaults to random UUIDs.
	NewName func() string
}

// NewRunner creates a runner writing to bucket and revs.
// If revs is nil, an in-memory repository is used.
func NewRunner(bucket storage.Bucket, revs storage.Revisions, logger *log.Logger) *Runner {
	if revs == nil {
		revs = storage.NewMemoryRevisions()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Bucket:    bucket,
		Revisions: revs,
		Logger:    logger,
		NewName:   uuid.NewString,
	}
}

type blob struct {
	key  string
	name string
	data []byte
}

// Save uploads the manifest, its snapshot and its solution, then commits
// the revision record.
func (r *Runner) Save(ctx context.Context, job Job) (res *Result, err error) {
	m := job.Manifest
	if err := graph.Validate(m); err != nil {
		return nil, err
	}
	if r.Bucket == nil {
		return nil, errors.New(errors.ErrCodeInternal, "persist runner has no bucket")
	}

	start := time.Now()
	observability.Persist().OnSaveStart(ctx, m.ID)
	total := 0
	defer func() {
		observability.Persist().OnSaveComplete(ctx, m.ID, total, time.Since(start), err)
	}()

	blobs, err := r.encode(m, job.Solution)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range blobs {
		total += len(b.data)
		g.Go(func() error {
			if err := r.Bucket.Put(gctx, b.name, b.data); err != nil {
				return fmt.Errorf("upload %s: %w", b.key, err)
			}
			r.Logger.Debug("uploaded blob", "graph", m.ID, "file", b.key, "name", b.name, "bytes", len(b.data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.cleanup(blobs)
		return nil, err
	}

	files := make(map[string]string, len(blobs))
	for _, b := range blobs {
		files[b.key] = b.name
	}
	rev, err := r.Revisions.Commit(ctx, storage.Revision{
		GraphID:  m.ID,
		Name:     m.Name,
		AuthorID: m.Author.ID,
		Files:    files,
	})
	if err != nil {
		r.cleanup(blobs)
		return nil, fmt.Errorf("commit revision: %w", err)
	}

	res = &Result{Revision: rev, Files: files, Bytes: total, Duration: time.Since(start)}
	r.Logger.Info("saved graph",
		"graph", m.ID,
		"revision", rev.Number,
		"bytes", total,
		"duration", res.Duration)
	return res, nil
}

func (r *Runner) encode(m graph.Manifest, solution json.RawMessage) ([]blob, error) {
	if len(solution) == 0 {
		solution = m.Graph.Solution
	}
	if len(solution) == 0 {
		solution = json.RawMessage("{}")
	}

	manifest, err := graph.MarshalManifest(m)
	if err != nil {
		return nil, err
	}
	snapshot, err := graph.MarshalSnapshot(m)
	if err != nil {
		return nil, err
	}

	dir := path.Join("graphs", m.ID)
	return []blob{
		{key: graph.FileJSON, name: path.Join(dir, r.NewName()+".json"), data: manifest},
		{key: graph.FileSnapshot, name: path.Join(dir, r.NewName()+".bson"), data: snapshot},
		{key: graph.FileSolution, name: path.Join(dir, r.NewName()+".solution.json"), data: solution},
	}, nil
}

// cleanup removes the blobs of a failed save. Errors are logged only.
func (r *Runner) cleanup(blobs []blob) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, b := range blobs {
		if err := r.Bucket.Delete(ctx, b.name); err != nil {
			r.Logger.Warn("cleanup failed", "name", b.name, "error", err)
		}
	}
}

// Load reads the manifest of the current revision of graphID.
func (r *Runner) Load(ctx context.Context, graphID string) (graph.Manifest, error) {
	rev, err := r.Revisions.Get(ctx, graphID)
	if err != nil {
		return graph.Manifest{}, err
	}
	name, ok := rev.Files[graph.FileJSON]
	if !ok {
		return graph.Manifest{}, errors.New(errors.ErrCodeGraphNotFound, "revision %d of %s has no manifest", rev.Number, graphID)
	}
	data, err := r.Bucket.Get(ctx, name)
	if err != nil {
		return graph.Manifest{}, err
	}
	m, err := graph.UnmarshalManifest(data)
	if err != nil {
		return graph.Manifest{}, err
	}
	m.Files = rev.Files
	return m, nil
}
