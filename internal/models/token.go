package models

import (
	"time"

	"github.com/google/uuid"
)

// Stored refresh token
// Only the fingerprint of the token is kept, never the token itself
type RefreshToken struct {
	ID          uuid.UUID
	EmployeeID  int64
	Fingerprint string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager on login
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
