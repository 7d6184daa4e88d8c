package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/planeseg/pkg/cache"
	perrors "github.com/matzehuels/planeseg/pkg/errors"
	"github.com/matzehuels/planeseg/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[thresholds]
distance = 0.05
angle = 15.0
min_region_size = 3

[seeds]
sort = true

[points]
radius = 0.5

[output]
formats = ["json", "svg"]
detailed = true

[cache]
backend = "redis"
url = "redis://localhost:6379/0"
prefix = "ci:"

[server]
addr = ":9090"
request_timeout = "90s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Thresholds.Distance != 0.05 || cfg.Thresholds.Angle != 15 || cfg.Thresholds.MinRegionSize != 3 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if !cfg.Seeds.Sort || cfg.Points.Radius != 0.5 {
		t.Errorf("seeds/points = %+v %+v", cfg.Seeds, cfg.Points)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.URL != "redis://localhost:6379/0" || cfg.Cache.Prefix != "ci:" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.RequestTimeout.Duration != 90*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Unset keys keep their defaults
	if cfg.Server.ReadTimeout != Default().Server.ReadTimeout {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if !strings.HasPrefix(cfg.Keyer().ArtifactKey("h", cache.ArtifactKeyOpts{}), "ci:") {
		t.Error("Keyer() ignores prefix")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[thresholds]\ndistanse = 0.1\n"},
		{"unknown section", "[render]\nstyle = \"x\"\n"},
		{"bad duration", "[server]\nread_timeout = \"soon\"\n"},
		{"negative distance", "[thresholds]\ndistance = -1.0\n"},
		{"bad format", "[output]\nformats = [\"stl\"]\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"syntax", "[thresholds\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() = %v, want %s", err, perrors.ErrCodeInvalidConfig)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of a named missing file should fail")
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "planeseg", FileName); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestApply(t *testing.T) {
	cfg := Config{
		Thresholds: Thresholds{Distance: 0.2, Angle: 10, MinRegionSize: 4},
		Seeds:      Seeds{Sort: true},
		Points:     Points{Radius: 3},
		Output:     Output{Formats: []string{"svg"}},
	}

	// Flags already set win
	opts := pipeline.Options{Distance: 0.5}
	cfg.Apply(&opts)
	if opts.Distance != 0.5 || opts.Angle != 10 || opts.MinRegionSize != 4 || opts.Radius != 3 || !opts.SortSeeds {
		t.Errorf("Apply() = %+v", opts)
	}
	if diff := cmp.Diff([]string{"svg"}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}

	// Empty config leaves pipeline defaults to the pipeline
	opts = pipeline.Options{Input: "a.off"}
	Config{}.Apply(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Distance != pipeline.DefaultDistance {
		t.Errorf("Distance = %v", opts.Distance)
	}
}

func TestApplyBooleans(t *testing.T) {
	cfg := Config{
		Thresholds: Thresholds{VertexDistance: true},
		Seeds:      Seeds{Sort: true},
		Output:     Output{Detailed: true},
	}

	tests := []struct {
		name     string
		explicit []string
		want     [3]bool // vertex distance, sort seeds, detailed
	}{
		{"config fills unset", nil, [3]bool{true, true, true}},
		{"explicit false wins", []string{OptionVertexDistance, OptionSortSeeds, OptionDetailed}, [3]bool{false, false, false}},
		{"only sort seeds set", []string{OptionSortSeeds}, [3]bool{true, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts pipeline.Options
			cfg.Apply(&opts, tt.explicit...)
			got := [3]bool{opts.VertexDistance, opts.SortSeeds, opts.Detailed}
			if got != tt.want {
				t.Errorf("Apply() booleans = %v, want %v", got, tt.want)
			}
		})
	}

	// An explicit true survives a config false.
	opts := pipeline.Options{SortSeeds: true}
	Config{}.Apply(&opts, OptionSortSeeds)
	if !opts.SortSeeds {
		t.Error("SortSeeds = false, want true")
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1h30m")); err != nil {
		t.Fatal(err)
	}
	text, _ := d.MarshalText()
	if string(text) != "1h30m0s" {
		t.Errorf("MarshalText() = %s", text)
	}
}
