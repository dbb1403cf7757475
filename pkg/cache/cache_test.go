package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "manifest:g1", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	data, hit, err := c.Get(ctx, "manifest:g1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should never hit")
	}

	if err := c.Delete(ctx, "manifest:g1"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "manifest:g1"); hit {
		t.Fatal("empty cache should miss")
	}

	if err := c.Set(ctx, "manifest:g1", []byte(`{"id":"g1"}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, hit, err := c.Get(ctx, "manifest:g1")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(data) != `{"id":"g1"}` {
		t.Errorf("data = %s", data)
	}

	if err := c.Delete(ctx, "manifest:g1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "manifest:g1"); err != nil {
		t.Errorf("second Delete should be a no-op: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "manifest:g1"); hit {
		t.Error("deleted entry should miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "library:x", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "library:x"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("library:x")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	path := c.path("manifest:bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "manifest:bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.ManifestKey("g1"); got != "manifest:g1" {
		t.Errorf("ManifestKey = %s", got)
	}

	lk := k.LibraryKey("https://example.test/graphql")
	if !strings.HasPrefix(lk, "library:") || len(lk) != len("library:")+64 {
		t.Errorf("LibraryKey = %s", lk)
	}
	if lk == k.LibraryKey("https://other.test/graphql") {
		t.Error("different endpoints should produce different keys")
	}

	scoped := NewScopedKeyer(nil, "author:42:")
	if got := scoped.ManifestKey("g1"); got != "author:42:manifest:g1" {
		t.Errorf("scoped ManifestKey = %s", got)
	}
	if got := scoped.LibraryKey("x"); !strings.HasPrefix(got, "author:42:library:") {
		t.Errorf("scoped LibraryKey = %s", got)
	}
}

func TestKeyType(t *testing.T) {
	tests := map[string]string{
		"manifest:g1":  "manifest",
		"library:abcd": "library",
		"plain":        "unknown",
		":leading":     "unknown",
	}
	for key, want := range tests {
		if got := keyType(key); got != want {
			t.Errorf("keyType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("retryable: err %v, calls %d", err, calls)
	}

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
