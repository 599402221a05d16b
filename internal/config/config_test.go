package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars with automatic cleanup.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StorageBackend)
	assert.Equal(t, "reidopano", cfg.PostgresUser)
	assert.Equal(t, "reidopano", cfg.PostgresDB)
	assert.Equal(t, 1.0, cfg.FullTextWeight)
	assert.Equal(t, 2.0, cfg.AllTermsWeight)
	assert.Equal(t, 1.0, cfg.SimilarityWeight)
	assert.Equal(t, 0.05, cfg.RelevanceFloor)
	assert.False(t, cfg.NativeRank)
	assert.Equal(t, 3, cfg.DefaultPageSize)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.True(t, cfg.SyncEnabled)
	assert.Equal(t, 6*time.Hour, cfg.SyncInterval)
	assert.Equal(t, 100, cfg.TGAPageLimit)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CacheEnabled(), "cache should be off until REDIS_HOST is set")
}

func TestLoad_RedisHostEnablesCache(t *testing.T) {
	setEnvs(t, map[string]string{
		"REDIS_HOST": "cache.internal",
		"CACHE_TTL":  "90s",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestLoad_APIKeysSplitOnComma(t *testing.T) {
	setEnvs(t, map[string]string{
		"API_KEYS": "key-agent-1,key-agent-2",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"key-agent-1", "key-agent-2"}, cfg.APIKeys)
}

func TestLoad_MemoryBackendSkipsPostgresChecks(t *testing.T) {
	setEnvs(t, map[string]string{
		"STORAGE_BACKEND": "memory",
		"POSTGRES_HOST":   "",
		"POSTGRES_USER":   "",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageBackend)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	setEnvs(t, map[string]string{
		"STORAGE_BACKEND": "sqlite",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND")
}

func TestLoad_RejectsDefaultPageSizeOverMax(t *testing.T) {
	setEnvs(t, map[string]string{
		"DEFAULT_PAGE_SIZE": "60",
		"MAX_PAGE_SIZE":     "50",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_PAGE_SIZE")
}

func TestLoad_RejectsSubMinuteSyncInterval(t *testing.T) {
	setEnvs(t, map[string]string{
		"SYNC_INTERVAL": "5s",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNC_INTERVAL")
}

func TestLoad_SyncDisabledAllowsEmptyBaseURL(t *testing.T) {
	setEnvs(t, map[string]string{
		"SYNC_ENABLED": "false",
		"TGA_BASE_URL": "",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.False(t, cfg.SyncEnabled)
}

func TestLoad_RejectsEmptyBaseURLWhenSyncEnabled(t *testing.T) {
	setEnvs(t, map[string]string{
		"SYNC_ENABLED": "true",
		"TGA_BASE_URL": "",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TGA_BASE_URL")
}

func TestLoad_RejectsNegativeWeight(t *testing.T) {
	setEnvs(t, map[string]string{
		"SEARCH_ALL_TERMS_WEIGHT": "-1",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights")
}

func TestLoad_RejectsOutOfRangeSampleRate(t *testing.T) {
	setEnvs(t, map[string]string{
		"OTEL_SAMPLE_RATE": "1.5",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE")
}
