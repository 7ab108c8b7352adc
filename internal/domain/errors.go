package domain

import "errors"

// Common application-specific errors. Handlers map these onto HTTP statuses.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrUnauthorized      = errors.New("unauthorized")
)
