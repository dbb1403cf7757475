// Package cli implements the flowpen command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowpen/internal/config"
	"github.com/matzehuels/flowpen/pkg/cache"
	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/engine"
	"github.com/matzehuels/flowpen/pkg/graph"
	"github.com/matzehuels/flowpen/pkg/library"
	"github.com/matzehuels/flowpen/pkg/persist"
	"github.com/matzehuels/flowpen/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowpen"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
// The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file and applies its log level. --verbose
// wins over the file.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		c.SetLogLevel(level)
	} else {
		c.Logger.Warn("unknown log level in config", "level", cfg.Log.Level)
	}
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
			Prefix:   appName + ":",
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newRunner builds the persistence runner from the storage config. The
// returned close function releases the revision repository.
func (c *CLI) newRunner(ctx context.Context) (*persist.Runner, func(), error) {
	bucket, err := storage.NewFileBucket(c.Config.Storage.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}

	var revs storage.Revisions = storage.NewMemoryRevisions()
	if c.Config.Storage.Revisions == "mongo" {
		mcfg := storage.DefaultMongoConfig()
		mcfg.URI = c.Config.Mongo.URI
		mcfg.Database = c.Config.Mongo.Database
		revs, err = storage.NewMongoRevisions(ctx, mcfg)
		if err != nil {
			return nil, nil, err
		}
	}

	closeFn := func() {
		if err := revs.Close(context.Background()); err != nil {
			c.Logger.Warn("close revisions", "error", err)
		}
	}
	return persist.NewRunner(bucket, revs, c.Logger), closeFn, nil
}

// loadLibrary reads the template library from path, the configured file,
// or the configured GraphQL endpoint, in that order.
func (c *CLI) loadLibrary(ctx context.Context, path string, refresh, noCache bool) (*library.Library, error) {
	if path == "" {
		path = c.Config.Library.Path
	}
	if path != "" {
		return library.Load(path)
	}
	if c.Config.Library.Endpoint == "" {
		return nil, fmt.Errorf("no library: pass a file or set library.endpoint in %s", config.Path())
	}

	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	client := library.NewClient(c.Config.Library.Endpoint, ch, nil, c.Config.CacheTTL(), c.Logger)
	return client.Fetch(ctx, refresh)
}

// openStore restores the manifest at path into a fresh engine store. With
// sequential set, new ids are "id1", "id2", ... skipping ids already in use.
func (c *CLI) openStore(path string, sequential bool) (*engine.Store, error) {
	m, err := graph.ReadManifestFile(path)
	if err != nil {
		return nil, err
	}
	opts := engine.Options{
		Logger:       c.Logger,
		HistoryLimit: c.Config.History.Limit,
	}
	if sequential {
		opts.NewID = sequentialIDs(m.Graph.Elements)
	}
	store := engine.New(opts)
	store.Restore(m)
	return store, nil
}

// sequentialIDs returns an id allocator that never reuses an element or
// port id of elements.
func sequentialIDs(elements element.Map) func() string {
	used := make(map[string]bool)
	for id, e := range elements {
		used[id] = true
		if node, ok := element.AsNode(e); ok {
			for port := range node.Inputs {
				used[port] = true
			}
			for port := range node.Outputs {
				used[port] = true
			}
		}
	}
	n := 0
	return func() string {
		for {
			n++
			id := "id" + strconv.Itoa(n)
			if !used[id] {
				used[id] = true
				return id
			}
		}
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/flowpen/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
