package onetimetokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Backing tables. Only these two values ever reach the query strings.
const (
	TablePasswordReset     = "password_reset_tokens"
	TableEmailVerification = "email_verification_tokens"
)

// PostgresRepository implements Repository over dbx.DBTX for one of the
// single-use token tables.
type PostgresRepository struct {
	db    dbx.DBTX
	table string
}

// NewPasswordResetRepository constructs a repository over the password-reset
// token table.
func NewPasswordResetRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, table: TablePasswordReset}
}

// NewEmailVerificationRepository constructs a repository over the
// email-verification token table.
func NewEmailVerificationRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, table: TableEmailVerification}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.OneTimeToken, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, r.table)

	t := &models.OneTimeToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.db.QueryRowContext(ctx, query, t.ID, t.UserID, t.Token, t.ExpiresAt).Scan(&t.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.OneTimeToken, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM %s
		WHERE token = $1
	`, r.table)

	t := &models.OneTimeToken{}
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &usedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if usedAt.Valid {
		u := usedAt.Time
		t.UsedAt = &u
	}
	return t, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error) {
	// Conditional write: used_at is set at most once, so concurrent
	// consumption attempts have exactly one winner.
	query := fmt.Sprintf(`
		UPDATE %s SET used_at = $2
		WHERE token = $1 AND used_at IS NULL
	`, r.table)

	res, err := r.db.ExecContext(ctx, query, token, usedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE expires_at < $1
	`, r.table)

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
