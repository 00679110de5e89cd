package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound wraps gorm.ErrRecordNotFound and empty updates.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("already exists")
	// ErrInsufficientStock is returned when a guarded stock decrement matches no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleState is returned when a guarded status update finds the row in
	// another state than expected.
	ErrStaleState = errors.New("record was modified concurrently")
)

// notFound turns gorm.ErrRecordNotFound into ErrNotFound and wraps everything
// else with the operation name.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s with ID %s %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s by ID %s: %w", what, id, err)
}

func createErr(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s %w", what, ErrDuplicate)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}
