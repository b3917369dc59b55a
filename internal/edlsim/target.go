package edlsim

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/moffa90/go-firehose/firehose"
	"github.com/moffa90/go-firehose/sahara"
	"github.com/moffa90/go-firehose/transport"
)

// Command is one Firehose command received by the target.
type Command struct {
	// Element is the command tag (configure, erase, program, power, ...)
	Element string

	// Attrs are the command attributes
	Attrs map[string]string

	// Raw is the command text as received
	Raw string

	// Data is the raw data streamed after a program command
	Data []byte

	// Chunks are the sizes of the bulk transfers that carried Data
	Chunks []int
}

// Uint returns a numeric attribute, or 0.
func (c *Command) Uint(name string) uint64 {
	n, _ := strconv.ParseUint(c.Attrs[name], 0, 64)
	return n
}

type mode int

const (
	modeSahara mode = iota
	modeFirehose
)

type saharaState int

const (
	awaitHelloResponse saharaState = iota
	awaitImageData
	awaitDone
)

// Target simulates a Qualcomm device in EDL mode. It implements
// transport.Pipe: host writes are interpreted immediately and the replies are
// queued for the following reads. A read with nothing queued fails with
// transport.ErrTimeout, like an idle bulk-in endpoint.
//
// Target is safe for concurrent use.
type Target struct {
	mu     sync.Mutex
	config Config

	mode   mode
	outbox [][]byte

	// sahara
	sstate     saharaState
	imageSize  int
	offset     int
	pending    int
	programmer []byte

	// firehose
	commands  []*Command
	raw       *Command
	remaining int64
	erases    int
	programs  int
	maxTx     int
	reset     bool
}

// New creates a Target. Without WithProgrammer the target starts directly in
// Firehose mode and announces its banner.
func New(opts ...Option) *Target {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Target{config: cfg, maxTx: cfg.MaxTx}
	if cfg.ProgrammerSize > 0 {
		t.mode = modeSahara
		t.imageSize = cfg.ProgrammerSize
		t.queue(sahara.Encode(sahara.Hello{
			Version:         sahara.Version,
			MaxPacketLength: uint32(cfg.ReadWindow),
			Mode:            sahara.ModeImageTransferPending,
		}))
	} else {
		t.enterFirehose()
	}
	return t
}

// ReadContext implements transport.Pipe.
func (t *Target) ReadContext(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.outbox) == 0 {
		return 0, fmt.Errorf("edlsim: nothing to read: %w", transport.ErrTimeout)
	}
	msg := t.outbox[0]
	t.outbox = t.outbox[1:]
	if len(msg) > len(buf) {
		return 0, fmt.Errorf("edlsim: %d-byte message overflows %d-byte read", len(msg), len(buf))
	}
	return copy(buf, msg), nil
}

// WriteContext implements transport.Pipe.
func (t *Target) WriteContext(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reset {
		return 0, fmt.Errorf("edlsim: device has reset")
	}

	msg := append([]byte(nil), buf...)
	if t.mode == modeSahara {
		return len(buf), t.handleSahara(msg)
	}
	return len(buf), t.handleFirehose(msg)
}

func (t *Target) queue(msg []byte) {
	t.outbox = append(t.outbox, msg)
}

func (t *Target) queueXML(body string) {
	t.queue([]byte(`<?xml version="1.0" encoding="UTF-8" ?><data>` + body + `</data>`))
}

func (t *Target) queueLog(value string) {
	t.queueXML(fmt.Sprintf(`<log value="%s" />`, value))
}

func (t *Target) handleSahara(msg []byte) error {
	switch t.sstate {
	case awaitHelloResponse:
		pkt, err := sahara.Decode(msg)
		if err != nil {
			return err
		}
		if _, ok := pkt.(sahara.HelloResponse); !ok {
			return fmt.Errorf("edlsim: expected hello response, got %s", pkt.Command())
		}
		t.sstate = awaitImageData
		t.requestNext()

	case awaitImageData:
		if len(msg) != t.pending {
			return fmt.Errorf("edlsim: expected %d image bytes, got %d", t.pending, len(msg))
		}
		t.programmer = append(t.programmer, msg...)
		t.offset += len(msg)
		t.requestNext()

	case awaitDone:
		if len(msg) < sahara.HeaderSize || binary.LittleEndian.Uint32(msg[0:4]) != uint32(sahara.CmdDone) {
			return fmt.Errorf("edlsim: expected done, got % X", msg)
		}
		t.queue(sahara.Encode(sahara.DoneResponse{ImageTransferStatus: 1}))
		t.enterFirehose()
	}
	return nil
}

// requestNext asks for the next image window, or ends the transfer.
func (t *Target) requestNext() {
	if t.offset >= t.imageSize {
		t.sstate = awaitDone
		t.queue(sahara.Encode(sahara.EndImageTransfer{ImageID: 13, Status: t.config.SaharaStatus}))
		return
	}

	t.pending = t.config.ReadWindow
	if rest := t.imageSize - t.offset; rest < t.pending {
		t.pending = rest
	}
	t.queue(sahara.Encode(sahara.ReadData{ImageID: 13, Offset: uint32(t.offset), Length: uint32(t.pending)}))
}

func (t *Target) enterFirehose() {
	t.mode = modeFirehose
	for _, line := range t.config.Banner {
		t.queueLog(line)
	}
	t.queueLog(firehose.BannerPrefix + " 29")
}

func (t *Target) handleFirehose(msg []byte) error {
	if t.remaining > 0 {
		return t.receiveRaw(msg)
	}

	responses, err := firehose.ParseMessage(msg)
	if err != nil {
		return err
	}
	r := responses[0]
	cmd := &Command{Element: r.Element, Attrs: r.Attrs, Raw: string(msg)}
	t.commands = append(t.commands, cmd)

	switch cmd.Element {
	case "configure":
		t.configure(cmd)
	case "erase":
		t.erases++
		if t.config.FailErase == t.erases {
			t.queueXML(`<response value="NAK" />`)
			return nil
		}
		t.queueLog(fmt.Sprintf("Erasing start_sector %s", cmd.Attrs["start_sector"]))
		t.queueXML(`<response value="ACK" />`)
	case "program":
		t.programs++
		if t.config.FailProgram == t.programs {
			t.queueXML(`<response value="NAK" />`)
			return nil
		}
		t.raw = cmd
		t.remaining = int64(cmd.Uint("num_partition_sectors") * cmd.Uint("SECTOR_SIZE_IN_BYTES"))
		t.queueXML(`<response value="ACK" rawmode="true" />`)
		if t.remaining == 0 {
			t.finishRaw()
		}
	case "power":
		t.reset = true
		t.queueXML(`<response value="ACK" />`)
	default:
		t.queueXML(`<response value="NAK" />`)
	}
	return nil
}

func (t *Target) configure(cmd *Command) {
	requested := int(cmd.Uint("MaxPayloadSizeToTargetInBytes"))
	if t.config.RejectMaxTx && requested > t.config.MaxTx {
		t.queueXML(fmt.Sprintf(`<response value="NAK" MaxPayloadSizeToTargetInBytesSupported="%d" />`, t.config.MaxTx))
		return
	}

	accepted := requested
	if accepted > t.config.MaxTx {
		accepted = t.config.MaxTx
	}
	t.maxTx = accepted
	t.queueXML(fmt.Sprintf(`<response value="ACK" MemoryName="%s" MaxPayloadSizeToTargetInBytes="%d" MaxPayloadSizeToTargetInBytesSupported="%d" />`,
		cmd.Attrs["MemoryName"], accepted, t.config.MaxTx))
}

func (t *Target) receiveRaw(msg []byte) error {
	if len(msg) > t.maxTx {
		return fmt.Errorf("edlsim: %d-byte chunk exceeds negotiated %d", len(msg), t.maxTx)
	}
	if int64(len(msg)) > t.remaining {
		return fmt.Errorf("edlsim: %d-byte chunk overruns the %d bytes left", len(msg), t.remaining)
	}

	t.raw.Data = append(t.raw.Data, msg...)
	t.raw.Chunks = append(t.raw.Chunks, len(msg))
	t.remaining -= int64(len(msg))
	if t.remaining == 0 {
		t.finishRaw()
	}
	return nil
}

func (t *Target) finishRaw() {
	t.queueLog(fmt.Sprintf("Finished sector address %d", t.raw.Uint("last_sector")))
	t.queueXML(`<response value="ACK" rawmode="false" />`)
	t.raw = nil
}

// Programmer returns the image uploaded over Sahara.
func (t *Target) Programmer() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.programmer...)
}

// Commands returns the Firehose commands received so far.
func (t *Target) Commands() []*Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Command(nil), t.commands...)
}

// CommandsNamed returns the received commands with the given element name.
func (t *Target) CommandsNamed(element string) []*Command {
	var out []*Command
	for _, c := range t.Commands() {
		if c.Element == element {
			out = append(out, c)
		}
	}
	return out
}

// Reset reports whether the target received a power reset.
func (t *Target) Reset() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reset
}

// MaxTx returns the negotiated host-to-target payload size.
func (t *Target) MaxTx() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxTx
}
