package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// noDotenv points Load at a .env file that does not exist.
func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15*time.Second, cfg.Cache.TTL)
	assert.Equal(t, BackendRedis, cfg.Backends.Cache)
	assert.Equal(t, BackendPostgres, cfg.Backends.Store)
}

func TestLoadWithoutSources(t *testing.T) {
	cfg, err := Load("", noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLKeepsUnsetDefaults(t *testing.T) {
	path := writeFile(t, "tierkv.yaml", `
http:
  addr: ":9090"
redis:
  addr: "cache.internal:6379"
  pool_size: 32
cache:
  ttl: 30s
backends:
  store: memory
log:
  format: json
`)
	cfg, err := Load(path, noDotenv(t))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.Redis.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, BackendRedis, cfg.Backends.Cache)
	assert.Equal(t, BackendMemory, cfg.Backends.Store)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvironmentOverridesYAML(t *testing.T) {
	path := writeFile(t, "tierkv.yaml", "cache:\n  ttl: 30s\nredis:\n  db: 1\n")
	t.Setenv("TIERKV_CACHE_TTL", "1m")
	t.Setenv("TIERKV_REDIS_DB", "3")
	t.Setenv("TIERKV_BACKEND_CACHE", "memory")
	t.Setenv("TIERKV_POSTGRES_MIGRATE", "false")

	cfg, err := Load(path, noDotenv(t))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, BackendMemory, cfg.Backends.Cache)
	assert.False(t, cfg.Postgres.Migrate)
}

func TestDotenvFillsUnsetVariables(t *testing.T) {
	dotenv := writeFile(t, ".env", "TIERKV_LOG_LEVEL=debug\nTIERKV_HTTP_ADDR=:7070\n")
	t.Setenv("TIERKV_HTTP_ADDR", ":6060")
	t.Cleanup(func() { os.Unsetenv("TIERKV_LOG_LEVEL") })

	cfg, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":6060", cfg.HTTP.Addr, "process environment wins over .env")
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing yaml", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noDotenv(t))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "http: [unclosed"), noDotenv(t))
		assert.Error(t, err)
	})
	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv("TIERKV_CACHE_TTL", "soon")
		_, err := Load("", noDotenv(t))
		assert.Error(t, err)
	})
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("TIERKV_BACKEND_STORE", "mongo")
		_, err := Load("", noDotenv(t))
		assert.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), `"mongo"`)
	})
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.HTTP.Addr = ""
	cfg.Cache.TTL = -time.Second
	cfg.Log.Format = "xml"
	cfg.Postgres.DSN = ""

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{"http.addr", "cache.ttl", "log.format", "postgres.dsn"} {
		assert.Contains(t, err.Error(), want)
	}

	cfg.Backends.Store = BackendMemory
	assert.NotContains(t, cfg.Validate().Error(), "postgres.dsn")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Log{Level: "warn", Format: "json"}.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	assert.Equal(t, slog.LevelDebug, Log{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Log{Level: "verbose"}.SlogLevel())
}
