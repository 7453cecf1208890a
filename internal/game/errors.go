package game

import (
	"errors"
	"fmt"

	"answerparty/internal/storage"
)

// Error taxonomy for orchestrator operations. Callers match with errors.Is;
// handlers translate to HTTP statuses. None of these are retried internally.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrExhausted       = errors.New("question bank exhausted")
	ErrTransient       = errors.New("transient store failure")
)

// storeErr classifies a record-store error: missing rows surface as NotFound,
// everything else as Transient.
func storeErr(err error, what string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("%w: %s: %v", ErrTransient, what, err)
}

// coordErr wraps a coordination-store failure as Transient.
func coordErr(err error, what string) error {
	return fmt.Errorf("%w: %s: %v", ErrTransient, what, err)
}

func wrapConflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

func wrapInvalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
}
