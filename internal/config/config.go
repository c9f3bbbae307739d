package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rogersnm/calsync/internal/logger"
	"github.com/rogersnm/calsync/internal/mode"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	Mode   string       `yaml:"mode,omitempty"`
	Remote RemoteConfig `yaml:"remote,omitempty"`
	Cache  CacheConfig  `yaml:"cache,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

type RemoteConfig struct {
	BaseID  string        `yaml:"base_id,omitempty"`
	APIKey  string        `yaml:"api_key,omitempty"`
	Table   string        `yaml:"table,omitempty"`
	APIURL  string        `yaml:"api_url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type CacheConfig struct {
	Backend string `yaml:"backend,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// RemoteConfigured reports whether enough is set to talk to the remote.
func (c *Config) RemoteConfigured() bool {
	return c.Remote.BaseID != "" && c.Remote.APIKey != ""
}

func (c *Config) Validate() error {
	if c.Mode != "" {
		if _, err := mode.Parse(c.Mode); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case "", BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid cache backend %q: must be %s or %s", c.Cache.Backend, BackendFile, BackendSQLite)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be console or json", c.Log.Format)
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("invalid remote timeout %s", c.Remote.Timeout)
	}
	return nil
}

// Backend returns the cache backend, defaulting to the JSON file.
func (c *Config) Backend() string {
	if c.Cache.Backend == "" {
		return BackendFile
	}
	return c.Cache.Backend
}

// ApplyEnv overlays CALSYNC_* variables on cfg. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("CALSYNC_MODE", &cfg.Mode)
	set("CALSYNC_REMOTE_BASE_ID", &cfg.Remote.BaseID)
	set("CALSYNC_REMOTE_API_KEY", &cfg.Remote.APIKey)
	set("CALSYNC_REMOTE_TABLE", &cfg.Remote.Table)
	set("CALSYNC_REMOTE_API_URL", &cfg.Remote.APIURL)
}

func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

func Save(dataDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dataDir, "config.yaml")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	// The file holds the remote credential.
	return os.WriteFile(path, data, 0600)
}
