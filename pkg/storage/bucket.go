package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/flowpen/pkg/errors"
)

// FileBucket stores blobs as files under a base directory. Blob names are
// relative slash-separated paths.
type FileBucket struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileBucket creates a bucket rooted at baseDir.
// If baseDir is empty, defaults to ~/.local/share/flowpen/graphs/
func NewFileBucket(baseDir string) (*FileBucket, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "flowpen", "graphs")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	return &FileBucket{baseDir: baseDir}, nil
}

func (b *FileBucket) blobPath(name string) (string, error) {
	if err := errors.ValidatePath(name); err != nil {
		return "", err
	}
	return filepath.Join(b.baseDir, filepath.FromSlash(name)), nil
}

func (b *FileBucket) Put(ctx context.Context, name string, data []byte) error {
	path, err := b.blobPath(name)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit blob: %w", err)
	}
	return nil
}

func (b *FileBucket) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := b.blobPath(name)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("blob %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (b *FileBucket) Delete(ctx context.Context, name string) error {
	path, err := b.blobPath(name)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// Path returns the base directory of the bucket.
func (b *FileBucket) Path() string {
	return b.baseDir
}

var _ Bucket = (*FileBucket)(nil)
