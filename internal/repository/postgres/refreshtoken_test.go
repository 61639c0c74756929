package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/testutil"
)

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Postgres keeps microseconds only
	now := time.Now().UTC().Truncate(time.Microsecond)

	withEmployee := func(t *testing.T, fn func(tx pgx.Tx, r RefreshTokenRepo, employeeID int64)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			e, err := (&EmployeeRepo{DB: tx}).CreateEmployee(t.Context(), newEmployeeParams("owner@example.com"))
			require.NoError(t, err)

			fn(tx, RefreshTokenRepo{DB: tx}, e.ID)
		})
	}

	newToken := func(employeeID int64, fingerprint string, expiresAt time.Time) models.RefreshToken {
		return models.RefreshToken{
			ID:          uuid.New(),
			EmployeeID:  employeeID,
			Fingerprint: fingerprint,
			CreatedAt:   now,
			ExpiresAt:   expiresAt,
		}
	}

	t.Run("save and get valid", func(t *testing.T) {
		withEmployee(t, func(_ pgx.Tx, r RefreshTokenRepo, employeeID int64) {
			token := newToken(employeeID, "fp-1", now.Add(time.Hour))

			saved, err := r.Save(t.Context(), token)
			require.NoError(t, err)
			assert.Equal(t, token.ID, saved.ID)
			assert.True(t, token.ExpiresAt.Equal(saved.ExpiresAt))

			got, err := r.GetValid(t.Context(), "fp-1", now)

			require.NoError(t, err)
			assert.Equal(t, token.ID, got.ID)
			assert.Equal(t, employeeID, got.EmployeeID)
		})
	})

	t.Run("save for unknown employee", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}

			_, err := r.Save(t.Context(), newToken(999_999, "fp-orphan", now.Add(time.Hour)))

			require.ErrorIs(t, err, apperrors.ErrEmployeeNotFound)
		})
	})

	t.Run("get valid skips expired", func(t *testing.T) {
		withEmployee(t, func(_ pgx.Tx, r RefreshTokenRepo, employeeID int64) {
			_, err := r.Save(t.Context(), newToken(employeeID, "fp-old", now.Add(-time.Minute)))
			require.NoError(t, err)

			_, err = r.GetValid(t.Context(), "fp-old", now)

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("get valid expiry boundary is exclusive", func(t *testing.T) {
		withEmployee(t, func(_ pgx.Tx, r RefreshTokenRepo, employeeID int64) {
			_, err := r.Save(t.Context(), newToken(employeeID, "fp-edge", now))
			require.NoError(t, err)

			_, err = r.GetValid(t.Context(), "fp-edge", now)

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("get valid unknown", func(t *testing.T) {
		withEmployee(t, func(_ pgx.Tx, r RefreshTokenRepo, _ int64) {
			_, err := r.GetValid(t.Context(), "fp-missing", now)

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("delete removes every matching row", func(t *testing.T) {
		withEmployee(t, func(_ pgx.Tx, r RefreshTokenRepo, employeeID int64) {
			for range 2 {
				_, err := r.Save(t.Context(), newToken(employeeID, "fp-dup", now.Add(time.Hour)))
				require.NoError(t, err)
			}
			_, err := r.Save(t.Context(), newToken(employeeID, "fp-other", now.Add(time.Hour)))
			require.NoError(t, err)

			deleted, err := r.Delete(t.Context(), "fp-dup")

			require.NoError(t, err)
			assert.EqualValues(t, 2, deleted)

			_, err = r.GetValid(t.Context(), "fp-other", now)
			assert.NoError(t, err, "other tokens must survive")
		})
	})

	t.Run("delete unknown is not an error", func(t *testing.T) {
		withEmployee(t, func(_ pgx.Tx, r RefreshTokenRepo, _ int64) {
			deleted, err := r.Delete(t.Context(), "fp-missing")

			require.NoError(t, err)
			assert.Zero(t, deleted)
		})
	})

	t.Run("delete expired", func(t *testing.T) {
		withEmployee(t, func(_ pgx.Tx, r RefreshTokenRepo, employeeID int64) {
			_, err := r.Save(t.Context(), newToken(employeeID, "fp-expired", now.Add(-time.Hour)))
			require.NoError(t, err)
			_, err = r.Save(t.Context(), newToken(employeeID, "fp-alive", now.Add(time.Hour)))
			require.NoError(t, err)

			deleted, err := r.DeleteExpired(t.Context(), now)

			require.NoError(t, err)
			assert.EqualValues(t, 1, deleted)

			_, err = r.GetValid(t.Context(), "fp-alive", now)
			assert.NoError(t, err)
		})
	})

	t.Run("tokens removed with employee", func(t *testing.T) {
		withEmployee(t, func(tx pgx.Tx, r RefreshTokenRepo, employeeID int64) {
			_, err := r.Save(t.Context(), newToken(employeeID, "fp-cascade", now.Add(time.Hour)))
			require.NoError(t, err)

			_, err = tx.Exec(t.Context(), "DELETE FROM employees WHERE id = $1", employeeID)
			require.NoError(t, err)

			_, err = r.GetValid(t.Context(), "fp-cascade", now)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})
}
