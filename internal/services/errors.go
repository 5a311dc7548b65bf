package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrMissingIdentity   = errors.New("missing identifier or name")
	ErrNegativeQuantity  = errors.New("quantity must not be negative")
	ErrLocationNameEmpty = errors.New("location name is required")
)

// StorageError is an unexpected database failure that aborts a whole
// operation (the overwrite pre-pass).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }
