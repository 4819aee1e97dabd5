package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvStore, EnvStorePath, EnvRedisAddr, EnvLogLevel, EnvPort} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWhenDefaultFileMissing(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "blockflow.yaml", `
log_level: debug
server:
  port: 9090
store:
  kind: redis
  redis:
    addr: cache:6379
    db: 2
    prefix: "wf:"
    ttl: 10m
workflow:
  name: Onboarding
  version: 2.0.0
  exhaustive: true
  max_depth: 12
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "json", cfg.Store.Format, "unset keys keep their defaults")
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "wf:", cfg.Store.Redis.Prefix)
	assert.Equal(t, 10*time.Minute, cfg.Store.Redis.TTL)
	assert.Equal(t, WorkflowConfig{Name: "Onboarding", Version: "2.0.0", Exhaustive: true, MaxDepth: 12}, cfg.Workflow)
}

func TestLoad_JSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "blockflow.json", `{"store": {"kind": "sqlite", "path": "wf.db"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
	assert.Equal(t, "wf.db", cfg.Store.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "blockflow.yaml", "store:\n  kind: memory\n")
	t.Setenv(EnvStore, "FILE")
	t.Setenv(EnvStorePath, "/tmp/flows")
	t.Setenv(EnvRedisAddr, "redis:6380")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvPort, "7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Store.Kind)
	assert.Equal(t, "/tmp/flows", cfg.Store.Path)
	assert.Equal(t, "redis:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "unknown store", content: "store:\n  kind: mongo\n"},
		{name: "unknown format", content: "store:\n  format: toml\n"},
		{name: "bad port", content: "server:\n  port: 70000\n"},
		{name: "negative depth", content: "workflow:\n  max_depth: -1\n"},
		{name: "malformed yaml", content: "store: [\n"},
		{name: "non-numeric port env", content: "", env: map[string]string{EnvPort: "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, "blockflow.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}
