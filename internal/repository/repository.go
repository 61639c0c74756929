package repository

import (
	"context"
	"time"

	"github.com/nkiryanov/salesoffice/internal/models"
)

// Employee repository interface
type EmployeeRepo interface {
	// Create employee
	// If employee with the email exists already has to return apperrors.ErrEmployeeAlreadyExists
	CreateEmployee(ctx context.Context, arg CreateEmployeeParams) (models.Employee, error)

	// Get employee by id or email (exact match)
	// If employee not found must return apperrors.ErrEmployeeNotFound
	GetEmployeeByID(ctx context.Context, id int64) (models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (models.Employee, error)

	// Set new role and return updated employee
	// If employee not found must return apperrors.ErrEmployeeNotFound
	UpdateRole(ctx context.Context, id int64, role models.Role) (models.Employee, error)
}

type CreateEmployeeParams struct {
	FullName     string
	Email        string
	Phone        string
	Role         models.Role
	PasswordHash string
}

// RefreshToken repository interface
// Tokens are addressed by fingerprint only
type RefreshTokenRepo interface {
	// Save token
	// If the employee does not exist has to return apperrors.ErrEmployeeNotFound
	Save(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Return a token that expires after the given moment
	// Otherwise (absent or expired) must return apperrors.ErrRefreshTokenNotFound
	GetValid(ctx context.Context, fingerprint string, expiresAfter time.Time) (models.RefreshToken, error)

	// Delete every token with the fingerprint. Zero deleted rows is not an error
	Delete(ctx context.Context, fingerprint string) (deleted int64, err error)

	// Delete tokens expired before the given moment
	DeleteExpired(ctx context.Context, before time.Time) (deleted int64, err error)
}

// Settings repository interface
type SettingsRepo interface {
	// If settings were never saved must return apperrors.ErrSettingsNotFound
	GetSettings(ctx context.Context) (models.Settings, error)

	// Create or replace settings
	SaveSettings(ctx context.Context, s models.Settings) (models.Settings, error)
}

type Storage interface {
	Employee() EmployeeRepo
	Refresh() RefreshTokenRepo
	Settings() SettingsRepo

	// Run fn in transaction. Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
