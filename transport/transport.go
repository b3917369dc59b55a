package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// ReceiveBufferSize is the size of the fixed bulk-in buffer (4 KiB)
	ReceiveBufferSize = 4 * 1024

	// DefaultPollAttempts is the number of bulk-in attempts in PollUntilReady mode
	DefaultPollAttempts = 600

	// DefaultAttemptTimeout bounds every single bulk transfer
	DefaultAttemptTimeout = 1000 * time.Millisecond
)

// PollMode selects how many bulk-in attempts Receive makes.
type PollMode int

const (
	// Single makes exactly one attempt.
	Single PollMode = iota

	// PollUntilReady retries timed-out attempts up to the poll budget.
	// Used for commands that may take a long time (erase, program, startup).
	PollUntilReady
)

func (m PollMode) String() string {
	switch m {
	case Single:
		return "single"
	case PollUntilReady:
		return "poll"
	default:
		return fmt.Sprintf("PollMode(%d)", int(m))
	}
}

// Pipe is one bulk-in/bulk-out endpoint pair. Each call performs exactly one
// bulk transfer and must honour the context deadline.
type Pipe interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

// Conn is the message-level contract the protocol layers depend on.
// *Transport implements it.
type Conn interface {
	Send(ctx context.Context, buf []byte) error
	Receive(ctx context.Context, mode PollMode) ([]byte, error)
}

// Transport sends and receives whole buffers over a Pipe.
// It owns its receive buffer and is not safe for concurrent use.
type Transport struct {
	pipe   Pipe
	config Config
	rx     [ReceiveBufferSize]byte
}

// New creates a Transport over the given pipe.
func New(pipe Pipe, opts ...Option) *Transport {
	if pipe == nil {
		panic("pipe cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Transport{
		pipe:   pipe,
		config: cfg,
	}
}

// Send writes buf in one bulk-out transfer.
func (t *Transport) Send(ctx context.Context, buf []byte) error {
	t.dump("writing", buf)

	attemptCtx, cancel := context.WithTimeout(ctx, t.config.AttemptTimeout)
	defer cancel()

	n, err := t.pipe.WriteContext(attemptCtx, buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &Error{Op: "bulk out", Err: ctxErr}
		}
		return &Error{Op: "bulk out", Err: err}
	}
	if n != len(buf) {
		return &Error{Op: "bulk out", Err: fmt.Errorf("%w: only wrote %d of %d bytes", ErrShortWrite, n, len(buf))}
	}

	return nil
}

// Receive reads one message from the bulk-in endpoint. The returned slice is
// a copy and stays valid after the next call.
func (t *Transport) Receive(ctx context.Context, mode PollMode) ([]byte, error) {
	attempts := 1
	if mode == PollUntilReady {
		attempts = t.config.PollAttempts
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Op: "bulk in", Err: err}
		}

		n, err := t.readOnce(ctx)
		if err != nil {
			if t.isTimeout(ctx, err) {
				t.logDebug("ignoring bulk in timeout", "attempt", i+1, "of", attempts)
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &Error{Op: "bulk in", Err: ctxErr}
			}
			return nil, &Error{Op: "bulk in", Err: err}
		}

		t.dump("read", t.rx[:n])

		msg := make([]byte, n)
		copy(msg, t.rx[:n])
		return msg, nil
	}

	return nil, &Error{Op: "bulk in", Err: ErrNoResponse}
}

// readOnce performs a single bulk-in attempt bounded by the attempt timeout.
// A deadline expiry is reported as ErrTimeout regardless of how the pipe
// phrased it.
func (t *Transport) readOnce(ctx context.Context) (int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, t.config.AttemptTimeout)
	defer cancel()

	clear(t.rx[:])
	n, err := t.pipe.ReadContext(attemptCtx, t.rx[:])
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return n, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return n, err
}

func (t *Transport) isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return errors.Is(err, ErrTimeout)
}

func (t *Transport) logDebug(msg string, keysAndValues ...interface{}) {
	if t.config.Logger != nil {
		t.config.Logger.Debug(msg, keysAndValues...)
	}
}
