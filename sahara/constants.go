package sahara

import "fmt"

// Version values sent in the Hello response.
const (
	// Version is the Sahara protocol version implemented by this package
	Version = 0x02

	// VersionCompatible is the oldest version this host accepts
	VersionCompatible = 0x00
)

// Command is the Sahara command code carried in every packet header.
type Command uint32

// Command codes. Direction is noted as target (T) or host (H).
const (
	// CmdHello (T) initializes the connection
	CmdHello Command = 0x01

	// CmdHelloResponse (H) acknowledges Hello and selects the mode
	CmdHelloResponse Command = 0x02

	// CmdReadData (T) requests a window of the image
	CmdReadData Command = 0x03

	// CmdEndImageTransfer (T) ends the transfer, with a status
	CmdEndImageTransfer Command = 0x04

	// CmdDone (H) acknowledges the end of the transfer
	CmdDone Command = 0x05

	// CmdDoneResponse (T) reports the target is leaving the protocol
	CmdDoneResponse Command = 0x06

	// CmdReset (H) asks the target to reset
	CmdReset Command = 0x07

	// CmdResetResponse (T) reports the target is about to reset
	CmdResetResponse Command = 0x08

	// CmdMemoryDebug (T) announces memory debug mode
	CmdMemoryDebug Command = 0x09

	// CmdMemoryRead (H) reads target memory
	CmdMemoryRead Command = 0x0A

	// CmdCommandReady (T) reports the target accepts client commands
	CmdCommandReady Command = 0x0B

	// CmdSwitchMode (H) switches the target mode
	CmdSwitchMode Command = 0x0C

	// CmdExecute (H) executes a client command
	CmdExecute Command = 0x0D

	// CmdExecuteResponse (T) reports a client command result
	CmdExecuteResponse Command = 0x0E

	// CmdExecuteData (H) requests client command output
	CmdExecuteData Command = 0x0F

	// CmdMemoryDebug64 (T) announces 64-bit memory debug mode
	CmdMemoryDebug64 Command = 0x10

	// CmdMemoryRead64 (H) reads target memory at a 64-bit address
	CmdMemoryRead64 Command = 0x11

	// CmdReadData64 (T) requests a window of the image with 64-bit fields
	CmdReadData64 Command = 0x12

	// CmdResetMachine (H) resets the Sahara state machine without a target reset
	CmdResetMachine Command = 0x13
)

var commandNames = map[Command]string{
	CmdHello:            "hello",
	CmdHelloResponse:    "hello response",
	CmdReadData:         "read data",
	CmdEndImageTransfer: "end of image transfer",
	CmdDone:             "done",
	CmdDoneResponse:     "done response",
	CmdReset:            "reset",
	CmdResetResponse:    "reset response",
	CmdMemoryDebug:      "memory debug",
	CmdMemoryRead:       "memory read",
	CmdCommandReady:     "command ready",
	CmdSwitchMode:       "switch mode",
	CmdExecute:          "execute",
	CmdExecuteResponse:  "execute response",
	CmdExecuteData:      "execute data",
	CmdMemoryDebug64:    "64-bit memory debug",
	CmdMemoryRead64:     "64-bit memory read",
	CmdReadData64:       "64-bit read data",
	CmdResetMachine:     "reset machine",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command 0x%02X", uint32(c))
}

// Mode is the operating mode selected in Hello response and Switch mode.
type Mode uint32

const (
	// ModeImageTransferPending expects another image after this one
	ModeImageTransferPending Mode = 0x0

	// ModeImageTransferComplete transfers a single image
	ModeImageTransferComplete Mode = 0x1

	// ModeMemoryDebug prepares the host for a memory dump
	ModeMemoryDebug Mode = 0x2

	// ModeCommand lets the host run client commands
	ModeCommand Mode = 0x3
)

// Serialized record sizes in bytes, header included.
const (
	// HeaderSize is the common {command, length} header
	HeaderSize = 8

	// HelloSize covers version, compatible version, packet length, mode and 6 reserved words
	HelloSize = HeaderSize + 4*4 + 6*4

	// HelloResponseSize has the same layout as Hello with status in place of packet length
	HelloResponseSize = HelloSize

	// ReadDataSize is image id, offset, length
	ReadDataSize = HeaderSize + 3*4

	// ReadData64Size is image id, offset, length as 64-bit words
	ReadData64Size = HeaderSize + 3*8

	// EndImageTransferSize is image id, status
	EndImageTransferSize = HeaderSize + 2*4

	// DoneSize is the bare header
	DoneSize = HeaderSize

	// DoneResponseSize is the image transfer status
	DoneResponseSize = HeaderSize + 4

	// ResetSize is the bare header
	ResetSize = HeaderSize

	// ResetResponseSize is the bare header
	ResetResponseSize = HeaderSize

	// CommandReadySize is the bare header
	CommandReadySize = HeaderSize

	// SwitchModeSize is the mode
	SwitchModeSize = HeaderSize + 4

	// ResetMachineSize is the bare header
	ResetMachineSize = HeaderSize
)
