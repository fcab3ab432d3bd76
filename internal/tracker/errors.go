package tracker

import (
	"errors"
	"fmt"
)

// The three-way outcome taxonomy the caller renders differently:
// fetch/extract failures (including ErrPriceNotFound), ErrAlreadyTracked as
// an informational outcome, and StorageError for real persistence failures.
// Callers match with errors.Is / errors.As, never on message text.

// ErrPriceNotFound reports that no adapter produced a numeric price. A
// product is only trackable once a price is obtained, so nothing is written.
var ErrPriceNotFound = errors.New("no numeric price found on page")

// ErrAlreadyTracked reports that the URL is already in the master list.
// Expected under concurrent submissions of the same URL; not a failure.
var ErrAlreadyTracked = errors.New("product already tracked")

// StorageError wraps persistence failures other than the duplicate URL.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
