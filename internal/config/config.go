// Package config loads the planeseg TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/planeseg/config.toml unless --config
// names another one. Every section is optional:
//
//	[thresholds]
//	distance = 0.05
//	angle = 15.0
//	min_region_size = 3
//	vertex_distance = false
//
//	[seeds]
//	sort = true
//
//	[points]
//	radius = 0.5
//
//	[output]
//	formats = ["json", "svg"]
//	dir = "out"
//	detailed = true
//
//	[cache]
//	backend = "redis"          # none, file, redis, mongo
//	url = "redis://localhost:6379/0"
//	prefix = "planeseg:"
//
//	[server]
//	addr = ":8080"
//	request_timeout = "2m"
//	max_body_bytes = 67108864
//
// Precedence is flags, then the file, then the pipeline defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/planeseg/pkg/cache"
	perrors "github.com/matzehuels/planeseg/pkg/errors"
	"github.com/matzehuels/planeseg/pkg/pipeline"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Duration is a time.Duration written as a string ("90s", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the decoded configuration file.
type Config struct {
	Thresholds Thresholds `toml:"thresholds"`
	Seeds      Seeds      `toml:"seeds"`
	Points     Points     `toml:"points"`
	Output     Output     `toml:"output"`
	Cache      Cache      `toml:"cache"`
	Server     Server     `toml:"server"`
}

// Thresholds overrides the region criterion. Zero values keep the defaults.
type Thresholds struct {
	Distance       float64 `toml:"distance"`
	Angle          float64 `toml:"angle"`
	MinRegionSize  int     `toml:"min_region_size"`
	VertexDistance bool    `toml:"vertex_distance"`
}

// Seeds controls seed ordering.
type Seeds struct {
	Sort bool `toml:"sort"`
}

// Points configures point set neighbourhoods.
type Points struct {
	Radius float64 `toml:"radius"`
}

// Output configures artifact rendering.
type Output struct {
	Formats  []string `toml:"formats"`
	Dir      string   `toml:"dir"`
	Detailed bool     `toml:"detailed"`
}

// Cache selects the result cache backend.
type Cache struct {
	cache.Options
	Prefix string `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `toml:"addr"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache: Cache{Options: cache.Options{Backend: cache.BackendFile}},
		Server: Server{
			Addr:           ":8080",
			ReadTimeout:    Duration{30 * time.Second},
			WriteTimeout:   Duration{5 * time.Minute},
			RequestTimeout: Duration{2 * time.Minute},
			MaxBodyBytes:   pipeline.MaxInputSize,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/planeseg/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "planeseg", FileName), nil
}

// Load reads the file at path on top of [Default]. An empty path loads
// [DefaultPath] and tolerates its absence; a named file must exist.
// Keys that match no field are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "load %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, perrors.New(perrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks values that are wrong regardless of flags.
func (c Config) Validate() error {
	if c.Thresholds.Distance < 0 || c.Thresholds.Angle < 0 || c.Thresholds.MinRegionSize < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}
	if c.Points.Radius < 0 {
		return fmt.Errorf("points.radius must not be negative")
	}
	if err := pipeline.ValidateFormats(c.Output.Formats); err != nil {
		return fmt.Errorf("output.formats: %w", err)
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendMongo:
	default:
		return fmt.Errorf("cache.backend: %w: %q", cache.ErrUnknownBackend, c.Cache.Backend)
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	return nil
}

// Boolean option names for [Config.Apply]. They match the TOML keys and the
// API query parameters.
const (
	OptionSortSeeds      = "sort_seeds"
	OptionVertexDistance = "vertex_distance"
	OptionDetailed       = "detailed"
)

// Apply copies configured values into opts where opts still holds its zero
// value, so flags set by the caller win. A boolean is zero-valued either way,
// so the caller names the booleans it set explicitly; those keep their value
// even when false.
func (c Config) Apply(opts *pipeline.Options, explicit ...string) {
	if opts.Distance == 0 {
		opts.Distance = c.Thresholds.Distance
	}
	if opts.Angle == 0 {
		opts.Angle = c.Thresholds.Angle
	}
	if opts.MinRegionSize == 0 {
		opts.MinRegionSize = c.Thresholds.MinRegionSize
	}
	if opts.Radius == 0 {
		opts.Radius = c.Points.Radius
	}

	flag := func(dst *bool, name string, configured bool) {
		if !slices.Contains(explicit, name) {
			*dst = *dst || configured
		}
	}
	flag(&opts.VertexDistance, OptionVertexDistance, c.Thresholds.VertexDistance)
	flag(&opts.SortSeeds, OptionSortSeeds, c.Seeds.Sort)
	flag(&opts.Detailed, OptionDetailed, c.Output.Detailed)

	if len(opts.Formats) == 0 && len(c.Output.Formats) > 0 {
		opts.Formats = append([]string(nil), c.Output.Formats...)
	}
}

// Keyer returns the cache keyer, scoped when a prefix is configured.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix != "" {
		return cache.NewScopedKeyer(nil, c.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}
