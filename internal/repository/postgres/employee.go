package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/repository"
)

type EmployeeRepo struct {
	DB DBTX
}

const employeeColumns = `id, created_at, full_name, email, phone, role, password_hash`

const createEmployee = `-- name: CreateEmployee
INSERT INTO employees (full_name, email, phone, role, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + employeeColumns

func (r *EmployeeRepo) CreateEmployee(ctx context.Context, arg repository.CreateEmployeeParams) (models.Employee, error) {
	rows, _ := r.DB.Query(ctx, createEmployee, arg.FullName, arg.Email, arg.Phone, arg.Role, arg.PasswordHash)
	employee, err := pgx.CollectOneRow(rows, rowToEmployee)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return employee, apperrors.ErrEmployeeAlreadyExists
		}

		return employee, fmt.Errorf("db error: %w", err)
	}

	return employee, nil
}

const getEmployeeByID = `-- name: GetEmployeeByID
SELECT ` + employeeColumns + ` FROM employees
WHERE id = $1
`

func (r *EmployeeRepo) GetEmployeeByID(ctx context.Context, id int64) (models.Employee, error) {
	rows, _ := r.DB.Query(ctx, getEmployeeByID, id)
	return collectEmployee(rows)
}

const getEmployeeByEmail = `-- name: GetEmployeeByEmail
SELECT ` + employeeColumns + ` FROM employees
WHERE email = $1
`

func (r *EmployeeRepo) GetEmployeeByEmail(ctx context.Context, email string) (models.Employee, error) {
	rows, _ := r.DB.Query(ctx, getEmployeeByEmail, email)
	return collectEmployee(rows)
}

const updateRole = `-- name: UpdateRole
UPDATE employees
SET role = $2
WHERE id = $1
RETURNING ` + employeeColumns

func (r *EmployeeRepo) UpdateRole(ctx context.Context, id int64, role models.Role) (models.Employee, error) {
	rows, _ := r.DB.Query(ctx, updateRole, id, role)
	return collectEmployee(rows)
}

func collectEmployee(rows pgx.Rows) (models.Employee, error) {
	employee, err := pgx.CollectOneRow(rows, rowToEmployee)

	switch {
	case err == nil:
		return employee, nil
	case errors.Is(err, pgx.ErrNoRows):
		return employee, apperrors.ErrEmployeeNotFound
	default:
		return employee, fmt.Errorf("db error: %w", err)
	}
}

func rowToEmployee(row pgx.CollectableRow) (models.Employee, error) {
	var e models.Employee
	err := row.Scan(&e.ID, &e.CreatedAt, &e.FullName, &e.Email, &e.Phone, &e.Role, &e.PasswordHash)
	return e, err
}
