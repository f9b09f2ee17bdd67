package repository

import (
	"errors"
	"fmt"
)

var (
	ErrWordNotFound     = errors.New("word not found")
	ErrProgressNotFound = errors.New("progress not found")

	// ErrCorruptState marks an unreadable state file. Callers warn and
	// continue with the empty store returned alongside it.
	ErrCorruptState = errors.New("corrupt progress state")
)

// ValidationError reports the first invalid cell or header problem found in an
// uploaded vocabulary CSV. Row is 1-based over data rows; 0 means the header
// itself is bad.
type ValidationError struct {
	Row    int
	Column string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("invalid CSV header: column %q %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("invalid CSV row %d: column %q %s", e.Row, e.Column, e.Reason)
}
