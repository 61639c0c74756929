package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/testutil"
)

func Test_SettingsRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	settings := models.Settings{
		CompanyName:       "Acme",
		CompanyAddress:    "1 Main St",
		CompanyPhone:      "+1 555 0100",
		CompanyEmail:      "office@acme.test",
		TaxRate:           decimal.New(1250, -2),
		Currency:          "USD",
		LowStockThreshold: 5,
		InvoicePrefix:     "INV-",
	}

	t.Run("get before save", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := SettingsRepo{DB: tx}

			_, err := r.GetSettings(t.Context())

			require.ErrorIs(t, err, apperrors.ErrSettingsNotFound)
		})
	})

	t.Run("save then get", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := SettingsRepo{DB: tx}

			saved, err := r.SaveSettings(t.Context(), settings)
			require.NoError(t, err)
			assert.Nil(t, saved.UpdatedBy)
			assert.WithinDuration(t, time.Now(), saved.UpdatedAt, 5*time.Second)

			got, err := r.GetSettings(t.Context())

			require.NoError(t, err)
			assert.Equal(t, "Acme", got.CompanyName)
			assert.True(t, settings.TaxRate.Equal(got.TaxRate), "tax rate mismatch: %s", got.TaxRate)
			assert.Equal(t, "USD", got.Currency)
			assert.Equal(t, 5, got.LowStockThreshold)
			assert.Equal(t, "INV-", got.InvoicePrefix)
		})
	})

	t.Run("save replaces the only row", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := SettingsRepo{DB: tx}
			e, err := (&EmployeeRepo{DB: tx}).CreateEmployee(t.Context(), newEmployeeParams("admin@example.com"))
			require.NoError(t, err)

			_, err = r.SaveSettings(t.Context(), settings)
			require.NoError(t, err)

			next := settings
			next.CompanyName = "Acme Ltd"
			next.UpdatedBy = &e.ID
			_, err = r.SaveSettings(t.Context(), next)
			require.NoError(t, err)

			got, err := r.GetSettings(t.Context())
			require.NoError(t, err)
			assert.Equal(t, "Acme Ltd", got.CompanyName)
			require.NotNil(t, got.UpdatedBy)
			assert.Equal(t, e.ID, *got.UpdatedBy)

			var count int
			err = tx.QueryRow(t.Context(), "SELECT count(*) FROM settings").Scan(&count)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	})
}
