package apperrors

import (
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenMissing          = errors.New("token missing")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")

	ErrRoleForbidden = errors.New("role is not allowed")

	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeAlreadyExists = errors.New("employee already exists")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrSettingsNotFound = errors.New("settings not found")
)
