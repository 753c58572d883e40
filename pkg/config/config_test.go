package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TypesenseConfig(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "http://test-typesense:8108")
	t.Setenv("TYPESENSE_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://test-typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, "test-key", cfg.Typesense.APIKey)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "")
	t.Setenv("SEARCH_BACKEND", "")
	t.Setenv("SEARCH_DEFAULT_LIMIT", "")
	t.Setenv("SEARCH_MAX_LIMIT", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8108", cfg.Typesense.URL)
	assert.Equal(t, BackendPostgres, cfg.Search.Backend)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoad_SearchBackend(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "Memory")
	t.Setenv("FIXTURE_PATH", "/tmp/centres.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Search.Backend)
	assert.Equal(t, "/tmp/centres.yaml", cfg.Search.FixturePath)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "elastic")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_RejectsInconsistentLimits(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "")
	t.Setenv("SEARCH_DEFAULT_LIMIT", "150")
	t.Setenv("SEARCH_MAX_LIMIT", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_WarmInterval(t *testing.T) {
	t.Setenv("SEARCH_BACKEND", "")
	t.Setenv("CACHE_WARM_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.Search.WarmInterval)

	t.Setenv("CACHE_WARM_INTERVAL", "soon")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Search.WarmInterval)
}
