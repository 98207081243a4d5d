package migration

import (
	"context"

	"github.com/certik/femhub-notebook/domain/user"
	"github.com/certik/femhub-notebook/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string

	// AdminPassword seeds the default admin account on first run. Empty
	// leaves the account without a usable login.
	AdminPassword string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createUsersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create notebook_users table")
	}
	if err := r.createSessionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create login_sessions table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	if err := r.insertDefaultAdmin(ctx, db); err != nil {
		return errors.Wrap(err, "failed to insert default admin user")
	}
	return nil
}

func (r *MigrationRunner) createUsersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notebook_users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			email TEXT,
			email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			account_type TEXT NOT NULL DEFAULT 'user',
			suspended BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createSessionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS login_sessions (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL REFERENCES notebook_users(username) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_login_sessions_username ON login_sessions(username)`,
		`CREATE INDEX IF NOT EXISTS idx_login_sessions_expires_at ON login_sessions(expires_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) insertDefaultAdmin(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notebook_users WHERE username = 'admin'`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	admin, err := user.New("admin", r.AdminPassword, "", user.AccountAdmin)
	if err != nil {
		return err
	}
	_, err = db.NamedExecContext(ctx, `
		INSERT INTO notebook_users (id, username, password_hash, email, email_confirmed, account_type, suspended, created_at, updated_at)
		VALUES (:id, :username, :password_hash, :email, :email_confirmed, :account_type, :suspended, :created_at, :updated_at)
	`, admin)
	return err
}
