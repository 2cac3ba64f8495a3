package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrConflict        = errors.New("conflicting write, no rows changed")
	ErrInvalidArgument = errors.New("invalid argument")

	// Redemption errors reported verbatim to the end user.
	ErrInvalidCode     = errors.New("access code is invalid")
	ErrCodeAlreadyUsed = errors.New("access code already used")

	// Infra errors
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
