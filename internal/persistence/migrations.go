package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

const (
	postgresMigrationsDir = "migrations/postgres"
	sqliteMigrationsDir   = "migrations/sqlite"
)

// migrationTarget abstracts the bookkeeping each backend needs to apply a file once.
type migrationTarget interface {
	ensureTable(ctx context.Context) error
	applied(ctx context.Context, name string) (bool, error)
	apply(ctx context.Context, name, content string) error
}

// RunMigrations applies the embedded postgres migrations that have not run yet.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		return fmt.Errorf("run migrations: postgres pool not configured")
	}
	return runMigrations(ctx, pgTarget{pool: pool}, postgresMigrationsDir, logger)
}

// RunSQLiteMigrations applies the embedded sqlite migrations that have not run yet.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	if db == nil {
		return fmt.Errorf("run migrations: sqlite database not configured")
	}
	return runMigrations(ctx, sqliteTarget{db: db}, sqliteMigrationsDir, logger)
}

// MigrationFiles lists the embedded migration filenames for dir in apply order.
func MigrationFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)
	return filenames, nil
}

func runMigrations(ctx context.Context, target migrationTarget, dir string, logger *zap.Logger) error {
	if err := target.ensureTable(ctx); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	filenames, err := MigrationFiles(dir)
	if err != nil {
		return err
	}

	appliedCount := 0
	for _, name := range filenames {
		done, err := target.applied(ctx, name)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, dir+"/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		logger.Info("applying migration", zap.String("file", name))
		if err := target.apply(ctx, name, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		appliedCount++
	}

	logger.Info("migrations applied", zap.Int("count", appliedCount), zap.Int("total", len(filenames)))
	return nil
}

type pgTarget struct {
	pool *pgxpool.Pool
}

func (t pgTarget) ensureTable(ctx context.Context) error {
	_, err := t.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (t pgTarget) applied(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := t.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename = $1)`, name).Scan(&exists)
	return exists, err
}

func (t pgTarget) apply(ctx context.Context, name, content string) error {
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, content); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, name)
		return err
	})
}

type sqliteTarget struct {
	db *sql.DB
}

func (t sqliteTarget) ensureTable(ctx context.Context) error {
	_, err := t.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	return err
}

func (t sqliteTarget) applied(ctx context.Context, name string) (bool, error) {
	var count int
	err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE filename = ?`, name).Scan(&count)
	return count > 0, err
}

func (t sqliteTarget) apply(ctx context.Context, name, content string) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, content); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES (?)`, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
