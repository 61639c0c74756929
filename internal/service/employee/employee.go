package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/repository"
	"github.com/nkiryanov/salesoffice/internal/service/auth"
)

type EmployeeService struct {
	hasher       auth.PasswordHasher
	employeeRepo repository.EmployeeRepo
}

func NewService(hasher auth.PasswordHasher, employeeRepo repository.EmployeeRepo) *EmployeeService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &EmployeeService{
		hasher:       hasher,
		employeeRepo: employeeRepo,
	}
}

type CreateParams struct {
	FullName string
	Email    string
	Phone    string
	Role     models.Role
	Password string
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, p CreateParams) (models.Employee, error) {
	var employee models.Employee

	if !p.Role.Valid() {
		return employee, fmt.Errorf("unknown role %q", p.Role)
	}
	if p.Password == "" {
		return employee, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return employee, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	employee, err = s.employeeRepo.CreateEmployee(ctx, repository.CreateEmployeeParams{
		FullName:     p.FullName,
		Email:        p.Email,
		Phone:        p.Phone,
		Role:         p.Role,
		PasswordHash: hash,
	})
	if err != nil {
		return employee, fmt.Errorf("can't create employee. Err: %w", err)
	}

	return employee, nil
}

func (s *EmployeeService) GetEmployee(ctx context.Context, id int64) (models.Employee, error) {
	return s.employeeRepo.GetEmployeeByID(ctx, id)
}

// Change employee role
// Access tokens already issued keep the old role until they expire
func (s *EmployeeService) ChangeRole(ctx context.Context, id int64, role models.Role) (models.Employee, error) {
	if !role.Valid() {
		return models.Employee{}, fmt.Errorf("unknown role %q", role)
	}

	return s.employeeRepo.UpdateRole(ctx, id, role)
}
