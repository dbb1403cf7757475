package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/geom"
	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/library"
	"github.com/matzehuels/flowpen/pkg/storage"
)

func testManifest() graph.Manifest {
	m := graph.New("g1")
	m.Name = "demo"
	m.Author = graph.Author{Name: "ada", ID: "u1"}
	m.Graph.Elements["s1"] = element.NewSlider("s1", library.Component{Name: "Slider"}, geom.Pt(0, 0))
	return m
}

func testRunner(t *testing.T, bucket storage.Bucket) *Runner {
	t.Helper()
	r := NewRunner(bucket, nil, log.New(io.Discard))
	n := 0
	var mu sync.Mutex
	r.NewName = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("b%d", n)
	}
	return r
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	bucket, err := storage.NewFileBucket(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(t, bucket)

	res, err := r.Save(ctx, Job{Manifest: testManifest()})
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if res.Revision.Number != 1 {
		t.Errorf("revision = %d, want 1", res.Revision.Number)
	}
	for _, key := range []string{graph.FileJSON, graph.FileSnapshot, graph.FileSolution} {
		name, ok := res.Files[key]
		if !ok {
			t.Errorf("missing %s blob", key)
			continue
		}
		if !strings.HasPrefix(name, "graphs/g1/") {
			t.Errorf("%s blob name = %q", key, name)
		}
		if _, err := bucket.Get(ctx, name); err != nil {
			t.Errorf("blob %s not uploaded: %v", name, err)
		}
	}

	snapshot, _ := bucket.Get(ctx, res.Files[graph.FileSnapshot])
	m, err := graph.UnmarshalSnapshot(snapshot)
	if err != nil {
		t.Fatalf("UnmarshalSnapshot() error: %v", err)
	}
	if _, ok := m.Graph.Elements["s1"]; !ok {
		t.Error("snapshot lost the slider")
	}
	if solution, _ := bucket.Get(ctx, res.Files[graph.FileSolution]); string(solution) != "{}" {
		t.Errorf("solution = %s, want {}", solution)
	}

	loaded, err := r.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Name != "demo" || loaded.Files[graph.FileJSON] != res.Files[graph.FileJSON] {
		t.Errorf("Load() = %+v", loaded)
	}

	second, err := r.Save(ctx, Job{Manifest: testManifest(), Solution: []byte(`{"s1":[0.25]}`)})
	if err != nil {
		t.Fatal(err)
	}
	if second.Revision.Number != 2 {
		t.Errorf("second revision = %d, want 2", second.Revision.Number)
	}
	if second.Files[graph.FileJSON] == res.Files[graph.FileJSON] {
		t.Error("second save reused the blob name")
	}
}

type failingBucket struct {
	storage.Bucket
	mu      sync.Mutex
	deleted []string
}

func (b *failingBucket) Put(ctx context.Context, name string, data []byte) error {
	if strings.HasSuffix(name, ".bson") {
		return errors.New("disk full")
	}
	return b.Bucket.Put(ctx, name, data)
}

func (b *failingBucket) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	b.deleted = append(b.deleted, name)
	b.mu.Unlock()
	return b.Bucket.Delete(ctx, name)
}

func TestSaveFailureKeepsPreviousRevision(t *testing.T) {
	ctx := context.Background()
	inner, err := storage.NewFileBucket(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	bucket := &failingBucket{Bucket: inner}
	r := testRunner(t, bucket)

	if _, err := r.Save(ctx, Job{Manifest: testManifest()}); err == nil {
		t.Fatal("expected upload error")
	}
	if _, err := r.Revisions.Get(ctx, "g1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("revision committed despite failure: %v", err)
	}
	if len(bucket.deleted) != 3 {
		t.Errorf("cleaned up %d blobs, want 3", len(bucket.deleted))
	}
}

func TestSaveRejectsInvalidManifest(t *testing.T) {
	bucket, _ := storage.NewFileBucket(t.TempDir())
	r := testRunner(t, bucket)
	m := testManifest()
	m.ID = "../escape"
	if _, err := r.Save(context.Background(), Job{Manifest: m}); err == nil {
		t.Error("expected validation error")
	}
}
