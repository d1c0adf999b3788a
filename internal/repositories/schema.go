package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// usersSchema creates the users table. Uniqueness of username and email only
// applies to active rows, so a soft-deleted user frees both for reuse.
var usersSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGSERIAL PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		username VARCHAR(50) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL CHECK (password_hash <> ''),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_active_key ON users (username) WHERE NOT is_deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_active_key ON users (email) WHERE NOT is_deleted`,
}

// Migrate creates the users table and its indexes if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range usersSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Log.Errorw("migration failed", "query", collapse(stmt), "error", err)
			return fmt.Errorf("migrate users schema: %w", err)
		}
	}
	logger.Log.Info("users schema is up to date")
	return nil
}
