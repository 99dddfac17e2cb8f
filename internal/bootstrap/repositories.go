// Package bootstrap opens the configured store backend for the server and
// the admin CLI.
package bootstrap

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/config"
	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/repository"
	"github.com/spec-kit/portal-service/internal/repository/boltstore"
)

// Repositories is one backend's set of repositories.
type Repositories struct {
	Backend         string
	Tickets         repository.TicketRepository
	Employees       repository.EmployeeRepository
	Groups          repository.GroupRepository
	Functionalities repository.FunctionalityRepository
	Ping            func(ctx context.Context) error
	Close           func()
}

// OpenRepositories connects to the backend named by cfg.Store.Backend,
// running postgres migrations when enabled.
func OpenRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Repositories, error) {
	if cfg.Store.Backend == config.StoreBackendBolt {
		db, err := persistence.NewBolt(cfg.Bolt, logger)
		if err != nil {
			return nil, err
		}
		return BoltRepositories(db), nil
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		return nil, err
	}
	pool := pg.PoolHandle()
	if pool == nil {
		return nil, errors.New("POSTGRES_DSN is required for the postgres store backend")
	}
	if cfg.Postgres.RunMigrations {
		if err := pg.Migrate(ctx, cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	return &Repositories{
		Backend:         config.StoreBackendPostgres,
		Tickets:         repository.NewTicketRepository(pool),
		Employees:       repository.NewEmployeeRepository(pool),
		Groups:          repository.NewGroupRepository(pool),
		Functionalities: repository.NewFunctionalityRepository(pool),
		Ping:            pg.Ping,
		Close:           pg.Close,
	}, nil
}

// BoltRepositories wraps an open bolt file.
func BoltRepositories(db *persistence.Bolt) *Repositories {
	store := boltstore.New(db)
	return &Repositories{
		Backend:         config.StoreBackendBolt,
		Tickets:         store.Tickets,
		Employees:       store.Employees,
		Groups:          store.Groups,
		Functionalities: store.Functionalities,
		Ping:            func(context.Context) error { return db.Ping() },
		Close:           db.Close,
	}
}
