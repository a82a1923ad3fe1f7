package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "arbor.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	content := `
addr: ":9000"
log_level: debug
store: redis
themes: [dark, light]
redis:
  addr: "redis:6379"
  ttl: 1h
persist:
  transient: ["_toasts", "scratch*"]
agent:
  timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, []string{"dark", "light"}, cfg.Themes)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "arbor:session:", cfg.Redis.Prefix, "unset fields keep their defaults")
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, []string{"_toasts", "scratch*"}, cfg.Persist.Transient)
	assert.Equal(t, 30*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, 4096, cfg.Persist.Budget)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"store.yaml": "store: postgres\n",
		"level.yaml": "log_level: loud\n",
		"fmt.yaml":   "log_format: xml\n",
		"key.yaml":   "persist:\n  encryption_key: short\n",
		"bad.yaml":   "addr: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}
