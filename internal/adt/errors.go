package adt

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a confirmed absence at the remote backend (HTTP 404).
// Discovery treats it as a terminated branch, never as a failure of the whole
// traversal.
var ErrNotFound = errors.New("adt: object not found")

// Error wraps a non-404 backend HTTP failure with its status code.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("adt: backend error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err stems from a confirmed remote absence.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
