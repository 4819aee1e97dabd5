package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "blockflow.yaml"

// Environment overrides, applied after the file is read.
const (
	EnvStore     = "BLOCKFLOW_STORE"
	EnvStorePath = "BLOCKFLOW_STORE_PATH"
	EnvRedisAddr = "BLOCKFLOW_REDIS_ADDR"
	EnvLogLevel  = "BLOCKFLOW_LOG_LEVEL"
	EnvPort      = "BLOCKFLOW_PORT"
)

// StoreKind selects the WorkflowStore backend.
type StoreKind string

const (
	StoreMemory StoreKind = "memory"
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
	StoreSQLite StoreKind = "sqlite"
)

// Config is the root of blockflow.yaml.
type Config struct {
	LogLevel string         `yaml:"log_level" json:"log_level"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	Workflow WorkflowConfig `yaml:"workflow" json:"workflow"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port"`
}

// StoreConfig describes where saved workflows live. Path is a directory for
// the file store and a database file for SQLite.
type StoreConfig struct {
	Kind   StoreKind   `yaml:"kind" json:"kind"`
	Path   string      `yaml:"path" json:"path"`
	Format string      `yaml:"format" json:"format"`
	Redis  RedisConfig `yaml:"redis" json:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// WorkflowConfig controls document metadata and traversal.
type WorkflowConfig struct {
	Name       string `yaml:"name" json:"name"`
	Version    string `yaml:"version" json:"version"`
	Exhaustive bool   `yaml:"exhaustive" json:"exhaustive"`
	MaxDepth   int    `yaml:"max_depth" json:"max_depth"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server:   ServerConfig{Port: 8080},
		Store: StoreConfig{
			Kind:   StoreMemory,
			Format: "json",
			Redis:  RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// Load reads a configuration file (YAML or JSON) on top of the defaults.
// A missing file at DefaultPath (or an empty path) is not an error; a missing
// file the caller asked for explicitly is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != "" && path != DefaultPath
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvStore); v != "" {
		cfg.Store.Kind = StoreKind(strings.ToLower(v))
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

// Validate checks the values Load cannot default.
func (c Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	switch c.Store.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unknown store format %q", c.Store.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Workflow.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative")
	}
	return nil
}
