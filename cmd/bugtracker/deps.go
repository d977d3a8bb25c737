package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bugtrackr/bug-tracker/internal/config"
	"github.com/bugtrackr/bug-tracker/internal/events"
	"github.com/bugtrackr/bug-tracker/internal/observability"
	"github.com/bugtrackr/bug-tracker/internal/persistence"
	"github.com/bugtrackr/bug-tracker/internal/repository"
	"github.com/bugtrackr/bug-tracker/internal/service"
)

// deps holds the process-wide handles shared by every subcommand.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	repo    repository.BugRepository
	closers []func()
}

// loadDeps reads configuration, builds the logger and opens the configured store.
// Migrations run when the driver's RunMigrations setting is on and migrate is true.
func loadDeps(ctx context.Context, migrate bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return loadDepsFromConfig(ctx, cfg, migrate)
}

func loadDepsFromConfig(ctx context.Context, cfg *config.Config, migrate bool) (*deps, error) {
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	d := &deps{cfg: cfg, logger: logger}
	if err := d.openStore(ctx, migrate); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *deps) openStore(ctx context.Context, migrate bool) error {
	switch d.cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, d.cfg.Postgres, d.logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pg.Close)
		if migrate && d.cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, d.logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		d.repo = repository.NewPostgresBugRepository(pg.Pool)

	case config.StorageDriverSQLite:
		db, err := persistence.NewSQLite(d.cfg.SQLite.Path, d.logger)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		if migrate && d.cfg.SQLite.RunMigrations {
			if err := persistence.RunSQLiteMigrations(ctx, db.DB, d.logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		d.repo = repository.NewSQLiteBugRepository(db.DB)

	default:
		return fmt.Errorf("unknown storage driver %q", d.cfg.Storage.Driver)
	}

	d.logger.Info("bug store ready", zap.String("driver", d.cfg.Storage.Driver))
	return nil
}

// bugService builds the service over the opened store.
func (d *deps) bugService(dispatcher events.Dispatcher) *service.BugService {
	return service.NewBugService(service.BugDependencies{
		BugRepo:    d.repo,
		Dispatcher: dispatcher,
		Logger:     d.logger,
		Pagination: d.cfg.Pagination,
	})
}

// Close releases handles in reverse order of opening.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	if d.logger != nil {
		_ = d.logger.Sync()
	}
}
