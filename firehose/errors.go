package firehose

import (
	"errors"
	"fmt"
)

// ErrTooManyResponses indicates the target kept sending non-decisive messages.
var ErrTooManyResponses = errors.New("firehose: too many responses without ACK or NAK")

// NAKError indicates the target rejected a command.
type NAKError struct {
	// Command is the element name of the rejected command, empty for a drain
	Command string

	// Response is the NAK response with its attributes
	Response *Response
}

func (e *NAKError) Error() string {
	name := e.Command
	if name == "" {
		name = "pending operation"
	}
	if e.Response != nil {
		if reason, ok := e.Response.Attr("reason"); ok {
			return fmt.Sprintf("firehose: %s rejected (NAK): %s", name, reason)
		}
	}
	return fmt.Sprintf("firehose: %s rejected (NAK)", name)
}

// ParseError indicates a target message that is not valid Firehose XML.
type ParseError struct {
	// Fragment is the offending text
	Fragment string

	// Err is the underlying cause (optional)
	Err error
}

func (e *ParseError) Error() string {
	fragment := e.Fragment
	if len(fragment) > 64 {
		fragment = fragment[:64] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("firehose: failed to parse response %q: %v", fragment, e.Err)
	}
	return fmt.Sprintf("firehose: failed to parse response %q", fragment)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsNAK returns true if err is or wraps a *NAKError.
func IsNAK(err error) bool {
	var ne *NAKError
	return errors.As(err, &ne)
}
