package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/config"
)

func TestOpenRepositoriesBolt(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.StoreBackendBolt},
		Bolt:  config.BoltConfig{Path: filepath.Join(t.TempDir(), "portal.db")},
	}
	repos, err := OpenRepositories(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(repos.Close)

	assert.Equal(t, config.StoreBackendBolt, repos.Backend)
	assert.NoError(t, repos.Ping(context.Background()))
	items, err := repos.Functionalities.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOpenRepositoriesPostgresNeedsDSN(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.StoreBackendPostgres}}
	_, err := OpenRepositories(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "POSTGRES_DSN")
}
