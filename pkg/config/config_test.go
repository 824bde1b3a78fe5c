package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-browser/cache"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.Browser.ItemsPerPage)
	assert.True(t, cfg.Browser.Prefetch)
	assert.Equal(t, cache.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 5*time.Minute, cfg.SearchCache.TTL)
	assert.Equal(t, SourceSQL, cfg.Source.Kind)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
browser:
  items_per_page: 20
  prefetch: false
store:
  backend: redis
  redis:
    addr: redis:6379
    namespace: catalog-test
search_cache:
  ttl: 30s
source:
  kind: postgrest
  postgrest:
    base_url: https://db.example.com/rest/v1
    api_key: anon
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Browser.ItemsPerPage)
	assert.False(t, cfg.Browser.Prefetch)
	assert.Equal(t, 10*time.Second, cfg.Browser.PrefetchTimeout, "unset keys keep defaults")
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.SearchCache.TTL)
	assert.Equal(t, 2000, cfg.SearchCache.Capacity)
	assert.Equal(t, "https://db.example.com/rest/v1", cfg.Source.PostgREST.BaseURL)
	assert.Equal(t, "resources", cfg.Source.PostgREST.Table)
	assert.Equal(t, FormatJSON, cfg.Logging.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "browser:\n  items_per_page: 20\n")
	t.Setenv("CATALOG_ITEMS_PER_PAGE", "5")
	t.Setenv("CATALOG_PREFETCH", "false")
	t.Setenv("CATALOG_DB_DSN", "file:other.db")
	t.Setenv("CATALOG_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Browser.ItemsPerPage)
	assert.False(t, cfg.Browser.Prefetch)
	assert.Equal(t, "file:other.db", cfg.Source.DSN)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "browser: [\n"},
		{"zero page size", "browser:\n  items_per_page: 0\n"},
		{"unknown store", "store:\n  backend: memcached\n"},
		{"redis without addr", "store:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{"unknown source", "source:\n  kind: ftp\n"},
		{"postgrest without url", "source:\n  kind: postgrest\n"},
		{"unknown driver", "source:\n  driver: mysql\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad search cache", "search_cache:\n  capacity: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: FormatJSON}, &buf)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "test").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"component":"test"`)

	fallback := NewLogger(LoggingConfig{}, &buf)
	assert.Equal(t, zerolog.InfoLevel, fallback.GetLevel())
}
