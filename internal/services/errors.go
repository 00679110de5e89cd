package services

import (
	"errors"

	"grocery/internal/repositories"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDuplicateRequest  = errors.New("duplicate request")

	// Re-exported so callers only need this package for error mapping.
	ErrNotFound          = repositories.ErrNotFound
	ErrInsufficientStock = repositories.ErrInsufficientStock
)
