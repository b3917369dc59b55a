package sahara

import (
	"context"
	"fmt"

	"github.com/moffa90/go-firehose/transport"
)

// State is a Sahara host state.
type State int

const (
	// StateAwaitHello waits for the target's Hello
	StateAwaitHello State = iota

	// StateAwaitImageRequest serves ReadData requests until EndImageTransfer
	StateAwaitImageRequest

	// StateAwaitDoneResponse waits for the target to leave the protocol
	StateAwaitDoneResponse

	// StateFinished is the successful terminal state
	StateFinished

	// StateAborted is the failed terminal state
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateAwaitHello:
		return "await hello"
	case StateAwaitImageRequest:
		return "await image request"
	case StateAwaitDoneResponse:
		return "await done response"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions lists the commands accepted in each non-terminal state.
var transitions = map[State]map[Command]bool{
	StateAwaitHello: {
		CmdHello: true,
	},
	StateAwaitImageRequest: {
		CmdReadData:         true,
		CmdReadData64:       true,
		CmdEndImageTransfer: true,
	},
	StateAwaitDoneResponse: {
		CmdDoneResponse: true,
	},
}

// Machine uploads one programmer image over Sahara.
// A Machine is single use and not safe for concurrent use.
type Machine struct {
	conn   transport.Conn
	image  []byte
	config Config

	state    State
	requests int
	sent     int64
}

// NewMachine creates a Machine that serves image over conn.
//
// Example:
//
//	m := sahara.NewMachine(tr, programmer, sahara.WithLogger(logger))
//	if err := m.Run(ctx); err != nil {
//	    return err
//	}
func NewMachine(conn transport.Conn, image []byte, opts ...Option) *Machine {
	if conn == nil {
		panic("conn cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Machine{
		conn:   conn,
		image:  image,
		config: cfg,
		state:  StateAwaitHello,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// BytesSent returns the number of image bytes sent so far.
func (m *Machine) BytesSent() int64 {
	return m.sent
}

// Run drives the handshake to completion:
//  1. Hello is answered with a Hello response in image-transfer-complete mode
//  2. every ReadData window is answered with the raw image slice
//  3. a successful EndImageTransfer is answered with Done
//  4. DoneResponse finishes the upload
//
// Each step waits for the target with transport.PollUntilReady.
func (m *Machine) Run(ctx context.Context) error {
	for m.state != StateFinished {
		if m.state == StateAborted {
			return fmt.Errorf("sahara: machine already aborted")
		}

		if err := m.step(ctx); err != nil {
			m.state = StateAborted
			return err
		}
	}
	return nil
}

func (m *Machine) step(ctx context.Context) error {
	msg, err := m.conn.Receive(ctx, transport.PollUntilReady)
	if err != nil {
		return fmt.Errorf("sahara: receive in state %s: %w", m.state, err)
	}

	cmd, err := PeekCommand(msg)
	if err != nil {
		return err
	}
	if !transitions[m.state][cmd] {
		return &UnexpectedCommandError{State: m.state, Command: cmd}
	}

	pkt, err := Decode(msg)
	if err != nil {
		return err
	}

	switch p := pkt.(type) {
	case Hello:
		return m.onHello(ctx, p)
	case ReadData:
		return m.onRead(ctx, uint64(p.ImageID), uint64(p.Offset), uint64(p.Length))
	case ReadData64:
		return m.onRead(ctx, p.ImageID, p.Offset, p.Length)
	case EndImageTransfer:
		return m.onEnd(ctx, p)
	case DoneResponse:
		m.logDebug("sahara done", "image_transfer_status", p.ImageTransferStatus, "bytes", m.sent)
		m.state = StateFinished
		return nil
	default:
		return &UnexpectedCommandError{State: m.state, Command: cmd}
	}
}

func (m *Machine) onHello(ctx context.Context, p Hello) error {
	m.logDebug("sahara hello",
		"version", p.Version,
		"version_compatible", p.VersionCompatible,
		"max_packet_length", p.MaxPacketLength,
		"mode", p.Mode,
	)

	resp := HelloResponse{
		Version:           Version,
		VersionCompatible: VersionCompatible,
		Status:            StatusSuccess,
		Mode:              ModeImageTransferComplete,
	}
	if err := m.conn.Send(ctx, Encode(resp)); err != nil {
		return fmt.Errorf("sahara: send hello response: %w", err)
	}

	m.state = StateAwaitImageRequest
	return nil
}

func (m *Machine) onRead(ctx context.Context, imageID, offset, length uint64) error {
	m.requests++
	if m.requests > m.config.MaxReadRequests {
		return fmt.Errorf("%w: limit is %d", ErrTooManyRequests, m.config.MaxReadRequests)
	}

	size := uint64(len(m.image))
	if offset > size || length > size-offset {
		return &ReadRangeError{Offset: offset, Length: length, ImageSize: len(m.image)}
	}

	m.logDebug("sahara read data", "image_id", imageID, "offset", offset, "length", length)

	if err := m.conn.Send(ctx, m.image[offset:offset+length]); err != nil {
		return fmt.Errorf("sahara: send image data at offset %d: %w", offset, err)
	}
	m.sent += int64(length)
	return nil
}

func (m *Machine) onEnd(ctx context.Context, p EndImageTransfer) error {
	if p.Status != StatusSuccess {
		return &TransferError{ImageID: p.ImageID, Status: LookupStatus(p.Status)}
	}

	if err := m.conn.Send(ctx, Encode(Done{})); err != nil {
		return fmt.Errorf("sahara: send done: %w", err)
	}

	m.state = StateAwaitDoneResponse
	return nil
}

func (m *Machine) logDebug(msg string, keysAndValues ...interface{}) {
	if m.config.Logger != nil {
		m.config.Logger.Debug(msg, keysAndValues...)
	}
}
