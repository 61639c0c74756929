package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/repository"
)

// Interface to create or compare employee password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type TokenManager interface {
	GeneratePair(ctx context.Context, identity models.Identity) (models.TokenPair, error)
	IssueAccess(identity models.Identity) (models.IssuedToken, error)
	ParseAccess(access string) (models.Identity, error)
	LookupRefresh(ctx context.Context, refresh string) (models.RefreshToken, error)
	RevokeRefresh(ctx context.Context, refresh string) (int64, error)
}

type Config struct {
	// Hasher to use during login
	// If not set BcryptHasher with default cost is used
	Hasher PasswordHasher
}

// What the employee gets on successful login
type Session struct {
	Tokens   models.TokenPair
	Employee models.Employee
}

type AuthService struct {
	tokenManager TokenManager
	hasher       PasswordHasher
	employeeRepo repository.EmployeeRepo

	// Compared against when email is unknown so both branches cost the same
	dummyHash string
}

func NewService(cfg Config, tokenManager TokenManager, employeeRepo repository.EmployeeRepo) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	// Nobody knows the password of this hash
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("error while generating dummy password. Err: %w", err)
	}
	dummyHash, err := hasher.Hash(hex.EncodeToString(b))
	if err != nil {
		return nil, fmt.Errorf("error while hashing dummy password. Err: %w", err)
	}

	return &AuthService{
		tokenManager: tokenManager,
		hasher:       hasher,
		employeeRepo: employeeRepo,
		dummyHash:    dummyHash,
	}, nil
}

// Verify credentials and open new session
// Unknown email and wrong password are indistinguishable: both return apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email string, password string) (Session, error) {
	employee, err := s.employeeRepo.GetEmployeeByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrEmployeeNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		return Session{}, apperrors.ErrInvalidCredentials
	default:
		return Session{}, fmt.Errorf("error while looking up employee. Err: %w", err)
	}

	if err := s.hasher.Compare(employee.PasswordHash, password); err != nil {
		return Session{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokenManager.GeneratePair(ctx, employee.Identity())
	if err != nil {
		return Session{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	employee.PasswordHash = ""
	return Session{Tokens: pair, Employee: employee}, nil
}

// Issue new access token for a stored refresh token
// Identity is read from the employee record, so role and email changes apply here
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	token, err := s.tokenManager.LookupRefresh(ctx, refresh)
	if err != nil {
		return models.IssuedToken{}, err
	}

	employee, err := s.employeeRepo.GetEmployeeByID(ctx, token.EmployeeID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrEmployeeNotFound):
		return models.IssuedToken{}, fmt.Errorf("token owner is gone. Err: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return models.IssuedToken{}, fmt.Errorf("error while looking up employee. Err: %w", err)
	}

	access, err := s.tokenManager.IssueAccess(employee.Identity())
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return access, nil
}

// Forget refresh token. Unknown token is not an error
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	_, err := s.tokenManager.RevokeRefresh(ctx, refresh)
	return err
}

// Validate access token and return whom it was issued to
func (s *AuthService) Authenticate(access string) (models.Identity, error) {
	return s.tokenManager.ParseAccess(access)
}
