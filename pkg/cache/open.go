package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend string `toml:"backend"`

	// Dir is the FileCache directory; empty means [DefaultDir].
	Dir string `toml:"dir"`

	// URL is the Redis URL or MongoDB URI.
	URL string `toml:"url"`

	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Open creates the backend named by opts.Backend. An empty name selects
// the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("cache dir: %w", err)
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendRedis:
		if opts.URL == "" {
			return nil, fmt.Errorf("redis cache: url is required")
		}
		return NewRedisCache(ctx, opts.URL)
	case BackendMongo:
		if opts.URL == "" {
			return nil, fmt.Errorf("mongo cache: url is required")
		}
		return NewMongoCache(ctx, opts.URL, opts.Database, opts.Collection)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}

// NullCache is the "none" backend: every lookup misses, so each run
// segments and renders from scratch.
type NullCache struct{}

// NewNullCache returns the cache used by --no-cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
