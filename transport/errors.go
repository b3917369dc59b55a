package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrShortWrite indicates the target accepted fewer bytes than were sent.
	ErrShortWrite = errors.New("short write")

	// ErrNoResponse indicates every poll attempt timed out.
	ErrNoResponse = errors.New("no response to read")

	// ErrTimeout indicates a single bulk transfer timed out.
	// Pipe implementations may return it (possibly wrapped) to mark a timeout.
	ErrTimeout = errors.New("transfer timeout")
)

// Error is a bulk transport failure. All transport errors are fatal to the
// session.
type Error struct {
	// Op is the failed operation ("bulk out" or "bulk in")
	Op string

	// Err is the underlying cause
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to do %s transfer: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransportError returns true if err is or wraps an *Error.
func IsTransportError(err error) bool {
	var te *Error
	return errors.As(err, &te)
}
