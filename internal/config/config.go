package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Redis configures the redis store and lock.
type Redis struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// Session configures the session cookie, idle expiry and lock.
type Session struct {
	Cookie string `yaml:"cookie" json:"cookie"`
	// TTL expires idle sessions. It also sets the redis key TTL when
	// redis.ttl is unset.
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
	LockTTL time.Duration `yaml:"lock_ttl" json:"lock_ttl"`
}

// Persist configures the middlewares wrapped around the store.
type Persist struct {
	// Transient keys are never written to the store. A trailing "*" matches
	// a prefix.
	Transient     []string `yaml:"transient" json:"transient"`
	Mask          []string `yaml:"mask" json:"mask"`
	Budget        int      `yaml:"budget" json:"budget"`
	EncryptionKey string   `yaml:"encryption_key" json:"encryption_key"`
}

// Agent configures headless runs.
type Agent struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Config is the arbor.yaml file.
type Config struct {
	Addr      string   `yaml:"addr" json:"addr"`
	LogLevel  string   `yaml:"log_level" json:"log_level"`
	LogFormat string   `yaml:"log_format" json:"log_format"`
	Title     string   `yaml:"title" json:"title"`
	Store     string   `yaml:"store" json:"store"`
	StoreDir  string   `yaml:"store_dir" json:"store_dir"`
	Themes    []string `yaml:"themes" json:"themes"`
	Redis     Redis    `yaml:"redis" json:"redis"`
	Session   Session  `yaml:"session" json:"session"`
	Persist   Persist  `yaml:"persist" json:"persist"`
	Agent     Agent    `yaml:"agent" json:"agent"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Title:     "arbor",
		Store:     StoreMemory,
		StoreDir:  ".arbor/sessions",
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "arbor:session:",
		},
		Session: Session{
			Cookie:  "arbor_session",
			LockTTL: 30 * time.Second,
		},
		Persist: Persist{
			Transient: []string{"_toasts"},
			Budget:    4096,
		},
		Agent: Agent{Timeout: 5 * time.Minute},
	}
}

// Load reads a YAML (or, by extension, JSON) file over the defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.Persist.Budget < 0 {
		return fmt.Errorf("persist budget must not be negative")
	}
	if k := c.Persist.EncryptionKey; k != "" && len(k) != 32 {
		return fmt.Errorf("encryption key must be 32 bytes, got %d", len(k))
	}
	return nil
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}
