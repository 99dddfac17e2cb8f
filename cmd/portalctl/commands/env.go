package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/bootstrap"
	"github.com/spec-kit/portal-service/internal/config"
	"github.com/spec-kit/portal-service/internal/observability"
)

// Env is what a command needs to reach the store.
type Env struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Repos   *bootstrap.Repositories
}

// Opener builds an Env for one command invocation.
type Opener func(ctx context.Context) (*Env, error)

// OpenFromEnvironment reads the same environment variables as the API server.
func OpenFromEnvironment(ctx context.Context) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	repos, err := bootstrap.OpenRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	return &Env{Config: cfg, Logger: logger, Metrics: observability.NewMetrics(), Repos: repos}, nil
}

// Close releases the store.
func (e *Env) Close() {
	if e.Repos != nil && e.Repos.Close != nil {
		e.Repos.Close()
	}
	if e.Logger != nil {
		_ = e.Logger.Sync()
	}
}
