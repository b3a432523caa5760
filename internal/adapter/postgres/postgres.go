// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blueprint/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DB wraps a *sqlx.DB and implements domain repository interfaces.
type DB struct {
	sql    *sqlx.DB
	logger *slog.Logger
}

var (
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.ProjectRepository = (*DB)(nil)
	_ domain.TaskRepository    = (*DB)(nil)
)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(ctx context.Context, connStr string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.PingContext(pingCtx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	d := &DB{sql: s, logger: logger}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				username      TEXT NOT NULL,
				email         TEXT NOT NULL,
				password_hash TEXT NOT NULL DEFAULT '',
				created_at    TIMESTAMPTZ NOT NULL
			);`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email));`,
			`CREATE TABLE IF NOT EXISTS projects (
				seq               BIGSERIAL,
				id                TEXT PRIMARY KEY,
				user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title             TEXT NOT NULL,
				description       TEXT NOT NULL DEFAULT '',
				validation_scores JSONB NOT NULL DEFAULT '{}',
				features          TEXT[] NOT NULL DEFAULT '{}',
				status            TEXT NOT NULL,
				created_at        TIMESTAMPTZ NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_projects_user_created ON projects (user_id, created_at, seq);`,
			`CREATE TABLE IF NOT EXISTS tasks (
				seq         BIGSERIAL,
				id          TEXT PRIMARY KEY,
				project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				priority    TEXT NOT NULL,
				status      TEXT NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_project_created ON tasks (project_id, created_at, seq);`,
		},
	},
}

// migrate applies outstanding migrations in order, recording each version.
func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL);`,
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var current int
	if err := d.sql.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version;`); err != nil {
		return fmt.Errorf("migrate: reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := d.apply(ctx, m); err != nil {
			return fmt.Errorf("migrate: applying v%d: %w", m.version, err)
		}
		d.logger.Info("applied migration", slog.Int("version", m.version))
	}
	return nil
}

func (d *DB) apply(ctx context.Context, m migration) error {
	tx, err := d.sql.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES ($1, $2);`, m.version, time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// isUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
