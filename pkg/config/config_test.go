package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/algotrace/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load without a file should return defaults, got %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing file error = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.toml", `
[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
ttl = "2h"

[archive]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"
database = "traces_test"

[playback]
interval = "250ms"
speed = 2.0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Archive.Database != "traces_test" {
		t.Errorf("archive = %+v", cfg.Archive)
	}
	if cfg.Playback.Interval != 250*time.Millisecond || cfg.Playback.Speed != 2 {
		t.Errorf("playback = %+v", cfg.Playback)
	}
	// Untouched sections keep their defaults
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
}

func TestLoadFromXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "algotrace"), 0755); err != nil {
		t.Fatal(err)
	}
	content := "[server]\naddr = \"127.0.0.1:9000\"\n"
	if err := os.WriteFile(filepath.Join(dir, "algotrace", "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[cache\n"},
		{"unknown key", "[cache]\ncolour = \"blue\"\n"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n"},
		{"mongo with bad uri", "[archive]\nbackend = \"mongo\"\nmongo_uri = \"localhost\"\n"},
		{"speed out of range", "[playback]\nspeed = 8.0\n"},
		{"zero interval", "[playback]\ninterval = \"0s\"\n"},
		{"empty addr", "[server]\naddr = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.toml", tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := writeFile(t, "btree.toml", `
engine = "btree"
degree = 3
targets = [10, 20, 5]
`)
	opts, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if opts.Engine != "btree" || opts.Degree != 3 || len(opts.Targets) != 3 {
		t.Errorf("opts = %+v", opts)
	}
	if opts.Logger != nil {
		t.Error("LoadScenario should leave the logger for the runner")
	}
}

func TestLoadScenarioRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"unknown engine", `engine = "heap"`, errors.ErrCodeInvalidEngine},
		{"bad degree", "engine = \"btree\"\ndegree = 1\ntargets = [1]\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "engine = \"expr\"\nexpression = \"1 + 2\"\n", errors.ErrCodeInvalidConfig},
		{"wrong type", "engine = \"segtree\"\narray = \"1,2,3\"\n", errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeFile(t, "scenario.toml", tt.content))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestExampleScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "scenarios", "*.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no example scenarios found")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			opts, err := LoadScenario(path)
			if err != nil {
				t.Fatalf("LoadScenario: %v", err)
			}
			if opts.Engine == "" {
				t.Error("engine not set")
			}
		})
	}
}
