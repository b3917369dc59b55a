// Package transport implements the bulk transport shared by the Sahara and
// Firehose protocol layers.
//
// # Overview
//
// An EDL target exposes one interface with a bulk-in and a bulk-out endpoint.
// Everything above this package talks to the target through two calls:
//
//	err := t.Send(ctx, buf)                         // one bulk-out transfer
//	msg, err := t.Receive(ctx, transport.PollUntilReady) // bulk-in with retries
//
// Send writes the whole buffer in a single transfer and fails with ErrShortWrite
// when the target accepts fewer bytes.
//
// Receive reads into a fixed 4 KiB buffer. In Single mode one attempt is made.
// In PollUntilReady mode up to DefaultPollAttempts attempts of
// DefaultAttemptTimeout each are made; a per-attempt timeout is not an error and
// is retried, any other error aborts immediately, and running out of attempts
// yields ErrNoResponse.
//
// # Hardware Independence
//
// The package does not open USB devices. Callers provide a Pipe:
//
//	type Pipe interface {
//	    ReadContext(ctx context.Context, buf []byte) (int, error)
//	    WriteContext(ctx context.Context, buf []byte) (int, error)
//	}
//
// The usbdev package provides a libusb-backed Pipe; tests and examples use a
// simulated target.
//
// # Diagnostics
//
// Setting FIREHOSE_VERBOSE in the environment dumps every transferred buffer
// (hex and printable ASCII) to stderr.
package transport
