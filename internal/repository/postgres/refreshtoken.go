package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, employee_id, fingerprint, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, employee_id, fingerprint, created_at, expires_at
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, saveToken, token.ID, token.EmployeeID, token.Fingerprint, token.CreatedAt, token.ExpiresAt)
	saved, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return saved, fmt.Errorf("repo error: %w", apperrors.ErrEmployeeNotFound)
		}

		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

const getValidToken = `-- name: GetValidRefreshToken
SELECT id, employee_id, fingerprint, created_at, expires_at
FROM refresh_tokens
WHERE fingerprint = $1 AND expires_at > $2
LIMIT 1
`

func (r *RefreshTokenRepo) GetValid(ctx context.Context, fingerprint string, expiresAfter time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getValidToken, fingerprint, expiresAfter)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const deleteToken = `-- name: DeleteRefreshToken
DELETE FROM refresh_tokens
WHERE fingerprint = $1
`

func (r *RefreshTokenRepo) Delete(ctx context.Context, fingerprint string) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteToken, fingerprint)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

const deleteExpired = `-- name: DeleteExpiredRefreshTokens
DELETE FROM refresh_tokens
WHERE expires_at <= $1
`

func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpired, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.EmployeeID, &t.Fingerprint, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}
