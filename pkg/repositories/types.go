package repositories

import (
	"errors"
	"fmt"
)

type ErrNotFound struct {
}

func (e *ErrNotFound) Error() string {
	return "not found"
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}

// ErrAlreadyExists is returned when a replay with the same ID is stored.
type ErrAlreadyExists struct {
	ID string
}

func (e *ErrAlreadyExists) Error() string {
	return fmt.Sprintf("replay %s already exists", e.ID)
}

func IsAlreadyExists(err error) bool {
	var exists *ErrAlreadyExists
	return errors.As(err, &exists)
}
