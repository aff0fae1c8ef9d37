// Package config loads algotrace settings and scenario files from TOML.
//
// Settings live in $XDG_CONFIG_HOME/algotrace/config.toml (or
// ~/.config/algotrace/config.toml). A missing default file is not an error;
// every field has a default. Example:
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	namespace = "staging"
//	ttl = "12h"
//
//	[archive]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
//	[playback]
//	interval = "500ms"
//	speed = 2.0
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/playback"
)

const appName = "algotrace"

// Backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Defaults.
const (
	DefaultCacheTTL   = 24 * time.Hour
	DefaultServerAddr = ":8080"
)

// Config is the full configuration file.
type Config struct {
	Cache    CacheConfig    `toml:"cache"`
	Archive  ArchiveConfig  `toml:"archive"`
	Server   ServerConfig   `toml:"server"`
	Playback PlaybackConfig `toml:"playback"`
}

// CacheConfig selects the trace cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend"`   // none, file or redis
	Dir       string        `toml:"dir"`       // file backend; defaults to the XDG cache dir
	RedisURL  string        `toml:"redis_url"` // redis backend
	Prefix    string        `toml:"prefix"`    // redis key prefix
	Namespace string        `toml:"namespace"` // scopes cache keys, e.g. per deployment
	TTL       time.Duration `toml:"ttl"`
}

// ArchiveConfig selects where the server keeps documents.
type ArchiveConfig struct {
	Backend  string `toml:"backend"` // memory, file or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// PlaybackConfig sets the initial playback cadence.
type PlaybackConfig struct {
	Interval time.Duration `toml:"interval"` // Base delay between steps at speed 1
	Speed    float64       `toml:"speed"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Cache:    CacheConfig{Backend: BackendFile, TTL: DefaultCacheTTL},
		Archive:  ArchiveConfig{Backend: BackendMemory},
		Server:   ServerConfig{Addr: DefaultServerAddr},
		Playback: PlaybackConfig{Interval: playback.DefaultInterval, Speed: playback.DefaultSpeed},
	}
}

// DefaultPath returns the default location of config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path selects
// DefaultPath, which may be absent; an explicit path must exist.
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

	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := checkUndecoded(meta, path); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend names and playback bounds.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}

	switch c.Archive.Backend {
	case BackendMemory, BackendFile:
	case BackendMongo:
		if err := errors.ValidateURL(c.Archive.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "archive.mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "archive.backend %q (must be one of: memory, file, mongo)", c.Archive.Backend)
	}

	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if c.Playback.Interval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "playback.interval must be positive")
	}
	if c.Playback.Speed < playback.MinSpeed || c.Playback.Speed > playback.MaxSpeed {
		return errors.New(errors.ErrCodeInvalidConfig, "playback.speed must be within [%g, %g]", playback.MinSpeed, playback.MaxSpeed)
	}
	return nil
}

func checkUndecoded(meta toml.MetaData, path string) error {
	keys := meta.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(names, ", "))
}
