package model

import "errors"

var (
	// Credential related errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")

	// Token related errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// User related errors
	ErrUserNotFound = errors.New("user not found")

	// Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Input related errors
	ErrValidationFailed = errors.New("validation failed")
)
