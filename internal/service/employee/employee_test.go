package employee

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/repository/postgres"
	"github.com/nkiryanov/salesoffice/internal/service/auth"
	"github.com/nkiryanov/salesoffice/internal/testutil"
)

func TestEmployee(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}

	// Helper function to create EmployeeService within transaction
	inTx := func(t *testing.T, fn func(s *EmployeeService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			fn(NewService(hasher, storage.Employee()))
		})
	}

	alice := CreateParams{
		FullName: "Alice Smith",
		Email:    "alice@example.com",
		Phone:    "+1-555-0100",
		Role:     models.RoleSales,
		Password: "password123",
	}

	t.Run("CreateEmployee", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				employee, err := s.CreateEmployee(t.Context(), alice)

				require.NoError(t, err, "creating new employee should be ok")
				require.NotZero(t, employee.ID)
				require.Equal(t, "Alice Smith", employee.FullName)
				require.Equal(t, "alice@example.com", employee.Email)
				require.Equal(t, "+1-555-0100", employee.Phone)
				require.Equal(t, models.RoleSales, employee.Role)
				require.NotZero(t, employee.CreatedAt, "created at should be set")
				require.NoError(t, hasher.Compare(employee.PasswordHash, "password123"), "password should be hashed")
			})
		})

		t.Run("empty password fail", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				p := alice
				p.Password = ""

				_, err := s.CreateEmployee(t.Context(), p)

				require.Error(t, err)
			})
		})

		t.Run("unknown role fail", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				p := alice
				p.Role = "OWNER"

				_, err := s.CreateEmployee(t.Context(), p)

				require.Error(t, err)
			})
		})

		t.Run("duplicate email fail", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				_, err := s.CreateEmployee(t.Context(), alice)
				require.NoError(t, err, "first employee creation should succeed")

				p := alice
				p.FullName = "Another Alice"
				_, err = s.CreateEmployee(t.Context(), p)

				require.ErrorIs(t, err, apperrors.ErrEmployeeAlreadyExists)
			})
		})
	})

	t.Run("GetEmployee", func(t *testing.T) {
		t.Run("get ok", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				created, err := s.CreateEmployee(t.Context(), alice)
				require.NoError(t, err)

				got, err := s.GetEmployee(t.Context(), created.ID)

				require.NoError(t, err)
				require.Equal(t, created.ID, got.ID)
				require.Equal(t, created.Email, got.Email)
			})
		})

		t.Run("not found", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				_, err := s.GetEmployee(t.Context(), 987654)

				require.ErrorIs(t, err, apperrors.ErrEmployeeNotFound)
			})
		})
	})

	t.Run("ChangeRole", func(t *testing.T) {
		t.Run("change ok", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				created, err := s.CreateEmployee(t.Context(), alice)
				require.NoError(t, err)

				updated, err := s.ChangeRole(t.Context(), created.ID, models.RoleAdmin)

				require.NoError(t, err)
				require.Equal(t, models.RoleAdmin, updated.Role)

				got, err := s.GetEmployee(t.Context(), created.ID)
				require.NoError(t, err)
				require.Equal(t, models.RoleAdmin, got.Role)
			})
		})

		t.Run("unknown role fail", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				created, err := s.CreateEmployee(t.Context(), alice)
				require.NoError(t, err)

				_, err = s.ChangeRole(t.Context(), created.ID, "owner")

				require.Error(t, err)
			})
		})

		t.Run("not found", func(t *testing.T) {
			inTx(t, func(s *EmployeeService) {
				_, err := s.ChangeRole(t.Context(), 987654, models.RoleManager)

				require.ErrorIs(t, err, apperrors.ErrEmployeeNotFound)
			})
		})
	})
}
