package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
)

// pgUniqueViolation is the SQLSTATE raised by a unique index.
const pgUniqueViolation = "23505"

// pgDataExceptionClass prefixes SQLSTATEs for values the server cannot accept (bad encoding, NUL bytes).
const pgDataExceptionClass = "22"

const userColumns = `user_id, first_name, last_name, username, email, password_hash, is_deleted, created_at, updated_at`

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns an active user. Absent and soft-deleted users both yield models.ErrUserNotFound.
func (r *UserReadRepository) GetByID(ctx context.Context, userID int64) (*models.UserDB, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1 AND NOT is_deleted
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, userID)
	logQuery(query, []any{userID}, user, err)

	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByUsername returns the active user holding username.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 AND NOT is_deleted
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)
	logQuery(query, []any{username}, user, err)

	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// List returns all active users in creation order.
func (r *UserReadRepository) List(ctx context.Context) ([]*models.UserDB, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE NOT is_deleted
		ORDER BY user_id
	`

	users := make([]*models.UserDB, 0)
	err := r.db.SelectContext(ctx, &users, query)
	logQuery(query, nil, len(users), err)

	if err != nil {
		return nil, err
	}
	return users, nil
}

type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewUserWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// executor returns the request transaction when there is one.
func (r *UserWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Create inserts a new active user and returns it with id and timestamps set.
func (r *UserWriteRepository) Create(ctx context.Context, user *models.UserDB) (*models.UserDB, error) {
	query := `
		INSERT INTO users (first_name, last_name, username, email, password_hash, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
		RETURNING ` + userColumns + `
	`
	now := time.Now().UTC()

	var created models.UserDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &created, query,
		user.FirstName, user.LastName, user.Username, user.Email, user.PasswordHash, now,
	)
	logQuery(query, []any{user.FirstName, user.LastName, user.Username, user.Email, "<redacted>", now}, created, err)

	if err != nil {
		return nil, translate(err)
	}
	return &created, nil
}

// Update overwrites the profile fields of an active user. An empty PasswordHash keeps the stored hash.
func (r *UserWriteRepository) Update(ctx context.Context, userID int64, user *models.UserDB) (*models.UserDB, error) {
	query := `
		UPDATE users
		SET first_name = $1,
		    last_name = $2,
		    username = $3,
		    email = $4,
		    password_hash = COALESCE(NULLIF($5, ''), password_hash),
		    updated_at = $6
		WHERE user_id = $7 AND NOT is_deleted
		RETURNING ` + userColumns + `
	`
	now := time.Now().UTC()

	var updated models.UserDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &updated, query,
		user.FirstName, user.LastName, user.Username, user.Email, user.PasswordHash, now, userID,
	)
	logQuery(query, []any{user.FirstName, user.LastName, user.Username, user.Email, "<redacted>", now, userID}, updated, err)

	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

// SoftDelete flags an active user as deleted. The row is kept.
func (r *UserWriteRepository) SoftDelete(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET is_deleted = TRUE, updated_at = $1
		WHERE user_id = $2 AND NOT is_deleted
	`
	now := time.Now().UTC()

	res, err := r.executor(ctx).ExecContext(ctx, query, now, userID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{now, userID}, rowsAffected, err)

	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// translate maps driver errors onto the model error taxonomy.
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return models.ErrUserAlreadyExists
		case strings.HasPrefix(pgErr.Code, pgDataExceptionClass):
			return fmt.Errorf("%w: %s", models.ErrValidation, pgErr.Message)
		}
	}
	return err
}

// logQuery logs a statement on a single line together with its outcome.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow("query",
		"sql", collapse(query),
		"args", args,
		"result", result,
		"error", err,
	)
}

func collapse(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
