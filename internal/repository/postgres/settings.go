package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
)

type SettingsRepo struct {
	DB DBTX
}

const settingsColumns = `company_name, company_address, company_phone, company_email,
	tax_rate, currency, low_stock_threshold, invoice_prefix, updated_by, updated_at`

const getSettings = `-- name: GetSettings
SELECT ` + settingsColumns + `
FROM settings
WHERE id = 1
`

func (r *SettingsRepo) GetSettings(ctx context.Context) (models.Settings, error) {
	rows, _ := r.DB.Query(ctx, getSettings)
	s, err := pgx.CollectOneRow(rows, rowToSettings)

	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, pgx.ErrNoRows):
		return s, apperrors.ErrSettingsNotFound
	default:
		return s, fmt.Errorf("db error: %w", err)
	}
}

// Upsert the only settings row
const saveSettings = `-- name: SaveSettings
INSERT INTO settings (id, company_name, company_address, company_phone, company_email,
	tax_rate, currency, low_stock_threshold, invoice_prefix, updated_by, updated_at)
VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (id) DO UPDATE SET
	company_name = EXCLUDED.company_name,
	company_address = EXCLUDED.company_address,
	company_phone = EXCLUDED.company_phone,
	company_email = EXCLUDED.company_email,
	tax_rate = EXCLUDED.tax_rate,
	currency = EXCLUDED.currency,
	low_stock_threshold = EXCLUDED.low_stock_threshold,
	invoice_prefix = EXCLUDED.invoice_prefix,
	updated_by = EXCLUDED.updated_by,
	updated_at = EXCLUDED.updated_at
RETURNING ` + settingsColumns

func (r *SettingsRepo) SaveSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	rows, _ := r.DB.Query(ctx, saveSettings,
		s.CompanyName, s.CompanyAddress, s.CompanyPhone, s.CompanyEmail,
		s.TaxRate, s.Currency, s.LowStockThreshold, s.InvoicePrefix, s.UpdatedBy,
	)
	saved, err := pgx.CollectOneRow(rows, rowToSettings)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}

	return saved, nil
}

func rowToSettings(row pgx.CollectableRow) (models.Settings, error) {
	var s models.Settings
	err := row.Scan(
		&s.CompanyName, &s.CompanyAddress, &s.CompanyPhone, &s.CompanyEmail,
		&s.TaxRate, &s.Currency, &s.LowStockThreshold, &s.InvoicePrefix, &s.UpdatedBy, &s.UpdatedAt,
	)
	return s, err
}
