package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ANALYTICS_RECENT_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreBackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Analytics.RecentLimit)
	assert.Equal(t, 3, cfg.Tickets.UpdateRetries)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "BOLT")
	t.Setenv("BOLT_PATH", "/tmp/x.db")
	t.Setenv("ANALYTICS_CACHE_TTL_SECONDS", "0")
	t.Setenv("TICKET_UPDATE_RETRIES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreBackendBolt, cfg.Store.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Bolt.Path)
	assert.Zero(t, cfg.Analytics.CacheTTL())
	assert.Equal(t, 3, cfg.Tickets.UpdateRetries)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	_, err := Load()
	assert.Error(t, err)
}
