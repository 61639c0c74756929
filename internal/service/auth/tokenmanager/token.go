package tokenmanager

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/salesoffice/internal/apperrors"
	"github.com/nkiryanov/salesoffice/internal/models"
	"github.com/nkiryanov/salesoffice/internal/repository"
)

const (
	defaultAccessTokenTTL  = time.Hour
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 7 * 24 * time.Hour

	refreshTokenBytes = 32
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	EmployeeID int64  `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign access token
	// Required to be set
	SecretKey string

	// Secret key to fingerprint refresh tokens before they go to storage
	// Required to be set
	RefreshSecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	key        []byte
	refreshKey []byte

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration

	refreshRepo repository.RefreshTokenRepo

	// Clock, replaced in tests
	now func() time.Time
}

func New(cfg Config, refreshRepo repository.RefreshTokenRepo) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if cfg.RefreshSecretKey == "" {
		return nil, errors.New("refresh secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	// Only MAC algorithms make sense with a shared secret
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing method %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field <= 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:         []byte(cfg.SecretKey),
		refreshKey:  []byte(cfg.RefreshSecretKey),
		alg:         alg,
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		refreshRepo: refreshRepo,
		now:         time.Now,
	}, nil
}

// Issue access token with configured lifetime
func (m *TokenManager) IssueAccess(identity models.Identity) (models.IssuedToken, error) {
	return m.IssueAccessTTL(identity, m.accessTTL)
}

// Issue access token that lives exactly ttl
func (m *TokenManager) IssueAccessTTL(identity models.Identity, ttl time.Duration) (models.IssuedToken, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			EmployeeID: identity.EmployeeID,
			Email:      identity.Email,
			Role:       string(identity.Role),
		},
	)

	signed, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse and validate access token
// Returned error always wraps one of apperrors.ErrTokenMalformed, ErrTokenSignatureInvalid or ErrTokenExpired
func (m *TokenManager) ParseAccess(access string) (models.Identity, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("error while parsing or validating token. Err: %w", classify(err))
	}

	if claims.EmployeeID == 0 || claims.Role == "" {
		return models.Identity{}, fmt.Errorf("token has no identity. Err: %w", apperrors.ErrTokenMalformed)
	}

	return models.Identity{
		EmployeeID: claims.EmployeeID,
		Email:      claims.Email,
		Role:       models.Role(claims.Role),
	}, nil
}

// Map jwt library errors to application ones
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return apperrors.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.ErrTokenExpired
	default:
		// Missing exp, token used before issued and so on
		return apperrors.ErrTokenMalformed
	}
}

// Generate new random refresh token and save its fingerprint
func (m *TokenManager) IssueRefresh(ctx context.Context, employeeID int64) (models.IssuedToken, error) {
	b := make([]byte, refreshTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while generate refresh token. Err: %w", err)
	}
	refresh := hex.EncodeToString(b)

	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(m.refreshTTL)

	_, err = m.refreshRepo.Save(ctx, models.RefreshToken{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		Fingerprint: m.fingerprint(refresh),
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: refresh, ExpiresAt: expiresAt}, nil
}

// Find stored refresh token that is not expired yet
// Return apperrors.ErrRefreshTokenNotFound otherwise
func (m *TokenManager) LookupRefresh(ctx context.Context, refresh string) (models.RefreshToken, error) {
	if refresh == "" {
		return models.RefreshToken{}, apperrors.ErrRefreshTokenNotFound
	}

	token, err := m.refreshRepo.GetValid(ctx, m.fingerprint(refresh), m.now())
	if err != nil {
		return token, fmt.Errorf("error while looking up refresh token. Err: %w", err)
	}

	return token, nil
}

// Delete every stored copy of the refresh token
func (m *TokenManager) RevokeRefresh(ctx context.Context, refresh string) (int64, error) {
	if refresh == "" {
		return 0, nil
	}

	deleted, err := m.refreshRepo.Delete(ctx, m.fingerprint(refresh))
	if err != nil {
		return 0, fmt.Errorf("error while deleting refresh token. Err: %w", err)
	}

	return deleted, nil
}

func (m *TokenManager) GeneratePair(ctx context.Context, identity models.Identity) (models.TokenPair, error) {
	access, err := m.IssueAccess(identity)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.IssueRefresh(ctx, identity.EmployeeID)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) fingerprint(refresh string) string {
	mac := hmac.New(sha256.New, m.refreshKey)
	mac.Write([]byte(refresh)) // nolint:errcheck
	return hex.EncodeToString(mac.Sum(nil))
}
