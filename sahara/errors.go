package sahara

import (
	"errors"
	"fmt"
)

// DecodeError indicates a record that cannot be parsed.
type DecodeError struct {
	// Command is the header command code, zero if the header was unreadable
	Command Command

	// Reason describes what was wrong
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Command == 0 {
		return fmt.Sprintf("sahara: decode failed: %s", e.Reason)
	}
	return fmt.Sprintf("sahara: decode %s (0x%02X) failed: %s", e.Command, uint32(e.Command), e.Reason)
}

// UnexpectedCommandError indicates a command that is not valid in the current state.
type UnexpectedCommandError struct {
	State   State
	Command Command
}

func (e *UnexpectedCommandError) Error() string {
	return fmt.Sprintf("sahara: unexpected %s (0x%02X) in state %s", e.Command, uint32(e.Command), e.State)
}

// TransferError indicates the target ended the image transfer with a failure status.
type TransferError struct {
	ImageID uint32
	Status  Status
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("sahara: end of image transfer failed: %s (status 0x%02X, image %d)",
		e.Status.Description, e.Status.Code, e.ImageID)
}

// ReadRangeError indicates a read request outside the image.
type ReadRangeError struct {
	Offset    uint64
	Length    uint64
	ImageSize int
}

func (e *ReadRangeError) Error() string {
	return fmt.Sprintf("sahara: read request offset %d length %d is outside the %d-byte image",
		e.Offset, e.Length, e.ImageSize)
}

// ErrTooManyRequests indicates the target asked for more image windows than allowed.
var ErrTooManyRequests = errors.New("sahara: too many read requests")

// IsProtocolError returns true if err is any Sahara protocol failure.
func IsProtocolError(err error) bool {
	var (
		de *DecodeError
		ue *UnexpectedCommandError
		te *TransferError
		re *ReadRangeError
	)
	return errors.As(err, &de) || errors.As(err, &ue) || errors.As(err, &te) ||
		errors.As(err, &re) || errors.Is(err, ErrTooManyRequests)
}
