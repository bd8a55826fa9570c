package backend

import (
	"errors"
	"fmt"
)

// Error is returned for non-2xx responses and transport failures.
// Status is zero when no response was received.
// Message is the human-readable text extracted from the response body and may be empty.
type Error struct {
	Op      string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Cause != nil:
		return fmt.Sprintf("backend %s: %v", e.Op, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("backend %s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// MessageOr returns the backend-provided message carried by err, or fallback when
// err carries none.
func MessageOr(err error, fallback string) string {
	var be *Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return fallback
}
