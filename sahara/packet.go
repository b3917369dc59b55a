package sahara

import (
	"encoding/binary"
	"fmt"
)

// Packet is one Sahara record. The set of implementations is closed; use a
// type switch on the concrete types below.
type Packet interface {
	// Command returns the header command code
	Command() Command

	size() int
	put(body []byte)
}

// Hello is sent by the target to open the protocol.
type Hello struct {
	Version           uint32
	VersionCompatible uint32
	MaxPacketLength   uint32
	Mode              Mode
}

// HelloResponse is the host reply to Hello.
type HelloResponse struct {
	Version           uint32
	VersionCompatible uint32
	Status            uint32
	Mode              Mode
}

// ReadData asks the host for Length bytes of the image at Offset.
type ReadData struct {
	ImageID uint32
	Offset  uint32
	Length  uint32
}

// ReadData64 is ReadData with 64-bit fields.
type ReadData64 struct {
	ImageID uint64
	Offset  uint64
	Length  uint64
}

// EndImageTransfer ends the image transfer. A non-zero Status is a target failure.
type EndImageTransfer struct {
	ImageID uint32
	Status  uint32
}

// Done acknowledges a successful end of image transfer.
type Done struct{}

// DoneResponse reports the target is leaving the protocol.
type DoneResponse struct {
	ImageTransferStatus uint32
}

// Reset asks the target to reset.
type Reset struct{}

// ResetResponse reports the target is about to reset.
type ResetResponse struct{}

// CommandReady reports the target accepts client commands.
type CommandReady struct{}

// SwitchMode asks the target to change mode.
type SwitchMode struct {
	Mode Mode
}

// ResetMachine resets the Sahara state machine on the target.
type ResetMachine struct{}

func (Hello) Command() Command            { return CmdHello }
func (HelloResponse) Command() Command    { return CmdHelloResponse }
func (ReadData) Command() Command         { return CmdReadData }
func (ReadData64) Command() Command       { return CmdReadData64 }
func (EndImageTransfer) Command() Command { return CmdEndImageTransfer }
func (Done) Command() Command             { return CmdDone }
func (DoneResponse) Command() Command     { return CmdDoneResponse }
func (Reset) Command() Command            { return CmdReset }
func (ResetResponse) Command() Command    { return CmdResetResponse }
func (CommandReady) Command() Command     { return CmdCommandReady }
func (SwitchMode) Command() Command       { return CmdSwitchMode }
func (ResetMachine) Command() Command     { return CmdResetMachine }

func (Hello) size() int            { return HelloSize }
func (HelloResponse) size() int    { return HelloResponseSize }
func (ReadData) size() int         { return ReadDataSize }
func (ReadData64) size() int       { return ReadData64Size }
func (EndImageTransfer) size() int { return EndImageTransferSize }
func (Done) size() int             { return DoneSize }
func (DoneResponse) size() int     { return DoneResponseSize }
func (Reset) size() int            { return ResetSize }
func (ResetResponse) size() int    { return ResetResponseSize }
func (CommandReady) size() int     { return CommandReadySize }
func (SwitchMode) size() int       { return SwitchModeSize }
func (ResetMachine) size() int     { return ResetMachineSize }

func (p Hello) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], p.Version)
	binary.LittleEndian.PutUint32(b[4:8], p.VersionCompatible)
	binary.LittleEndian.PutUint32(b[8:12], p.MaxPacketLength)
	binary.LittleEndian.PutUint32(b[12:16], uint32(p.Mode))
}

func (p HelloResponse) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], p.Version)
	binary.LittleEndian.PutUint32(b[4:8], p.VersionCompatible)
	binary.LittleEndian.PutUint32(b[8:12], p.Status)
	binary.LittleEndian.PutUint32(b[12:16], uint32(p.Mode))
}

func (p ReadData) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], p.ImageID)
	binary.LittleEndian.PutUint32(b[4:8], p.Offset)
	binary.LittleEndian.PutUint32(b[8:12], p.Length)
}

func (p ReadData64) put(b []byte) {
	binary.LittleEndian.PutUint64(b[0:8], p.ImageID)
	binary.LittleEndian.PutUint64(b[8:16], p.Offset)
	binary.LittleEndian.PutUint64(b[16:24], p.Length)
}

func (p EndImageTransfer) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], p.ImageID)
	binary.LittleEndian.PutUint32(b[4:8], p.Status)
}

func (p DoneResponse) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], p.ImageTransferStatus)
}

func (p SwitchMode) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], uint32(p.Mode))
}

func (Done) put([]byte)          {}
func (Reset) put([]byte)         {}
func (ResetResponse) put([]byte) {}
func (CommandReady) put([]byte)  {}
func (ResetMachine) put([]byte)  {}

// Encode serializes p. The header length always equals the returned size.
//
// Frame structure (all fields little-endian u32 unless noted):
//
//	[COMMAND][LENGTH][FIELDS...]
func Encode(p Packet) []byte {
	b := make([]byte, p.size())
	binary.LittleEndian.PutUint32(b[0:4], uint32(p.Command()))
	binary.LittleEndian.PutUint32(b[4:8], uint32(len(b)))
	p.put(b[HeaderSize:])
	return b
}

// recordSizes lists the commands Decode understands.
var recordSizes = map[Command]int{
	CmdHello:            HelloSize,
	CmdHelloResponse:    HelloResponseSize,
	CmdReadData:         ReadDataSize,
	CmdReadData64:       ReadData64Size,
	CmdEndImageTransfer: EndImageTransferSize,
	CmdDone:             DoneSize,
	CmdDoneResponse:     DoneResponseSize,
	CmdReset:            ResetSize,
	CmdResetResponse:    ResetResponseSize,
	CmdCommandReady:     CommandReadySize,
	CmdSwitchMode:       SwitchModeSize,
	CmdResetMachine:     ResetMachineSize,
}

// PeekCommand returns the command code of a raw record without decoding it.
func PeekCommand(b []byte) (Command, error) {
	if len(b) < HeaderSize {
		return 0, &DecodeError{Reason: fmt.Sprintf("packet too short: got %d bytes, minimum is %d", len(b), HeaderSize)}
	}
	return Command(binary.LittleEndian.Uint32(b[0:4])), nil
}

// Decode parses one record. Unknown command codes and records whose length
// field disagrees with the command's layout are rejected.
func Decode(b []byte) (Packet, error) {
	cmd, err := PeekCommand(b)
	if err != nil {
		return nil, err
	}

	size, ok := recordSizes[cmd]
	if !ok {
		return nil, &DecodeError{Command: cmd, Reason: "unsupported command"}
	}

	length := binary.LittleEndian.Uint32(b[4:8])
	if int(length) != size {
		return nil, &DecodeError{Command: cmd, Reason: fmt.Sprintf("length field is %d, expected %d", length, size)}
	}
	if len(b) < size {
		return nil, &DecodeError{Command: cmd, Reason: fmt.Sprintf("packet too short: got %d bytes, expected %d", len(b), size)}
	}

	body := b[HeaderSize:size]
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(body[off : off+4]) }
	u64 := func(off int) uint64 { return binary.LittleEndian.Uint64(body[off : off+8]) }

	switch cmd {
	case CmdHello:
		return Hello{Version: u32(0), VersionCompatible: u32(4), MaxPacketLength: u32(8), Mode: Mode(u32(12))}, nil
	case CmdHelloResponse:
		return HelloResponse{Version: u32(0), VersionCompatible: u32(4), Status: u32(8), Mode: Mode(u32(12))}, nil
	case CmdReadData:
		return ReadData{ImageID: u32(0), Offset: u32(4), Length: u32(8)}, nil
	case CmdReadData64:
		return ReadData64{ImageID: u64(0), Offset: u64(8), Length: u64(16)}, nil
	case CmdEndImageTransfer:
		return EndImageTransfer{ImageID: u32(0), Status: u32(4)}, nil
	case CmdDone:
		return Done{}, nil
	case CmdDoneResponse:
		return DoneResponse{ImageTransferStatus: u32(0)}, nil
	case CmdReset:
		return Reset{}, nil
	case CmdResetResponse:
		return ResetResponse{}, nil
	case CmdCommandReady:
		return CommandReady{}, nil
	case CmdSwitchMode:
		return SwitchMode{Mode: Mode(u32(0))}, nil
	default:
		return ResetMachine{}, nil
	}
}
