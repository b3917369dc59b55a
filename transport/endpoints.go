package transport

import "fmt"

// Default endpoint addresses and payload sizes for a target in EDL mode.
const (
	// DefaultEndpointIn is the bulk-in endpoint address
	DefaultEndpointIn = 0x81

	// DefaultEndpointOut is the bulk-out endpoint address
	DefaultEndpointOut = 0x01

	// DefaultMaxTx is the largest payload the host sends in one transfer (8 KiB)
	DefaultMaxTx = 8 * 1024

	// DefaultMaxRx is the largest payload the target sends in one transfer (4 KiB)
	DefaultMaxRx = 4 * 1024
)

// Endpoints describes the bulk endpoint pair of a claimed EDL interface and
// the negotiated payload sizes. It is a value; renegotiation produces a new
// Endpoints rather than mutating a shared one.
type Endpoints struct {
	// In is the bulk-in endpoint address (target to host)
	In uint8

	// Out is the bulk-out endpoint address (host to target)
	Out uint8

	// MaxTx is the maximum number of bytes the host may send per transfer
	MaxTx int

	// MaxRx is the maximum number of bytes the target may send per transfer
	MaxRx int
}

// DefaultEndpoints returns the endpoint set used before any negotiation.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		In:    DefaultEndpointIn,
		Out:   DefaultEndpointOut,
		MaxTx: DefaultMaxTx,
		MaxRx: DefaultMaxRx,
	}
}

// WithMaxTx returns a copy of e with MaxTx replaced.
func (e Endpoints) WithMaxTx(n int) Endpoints {
	e.MaxTx = n
	return e
}

// Validate reports whether the payload sizes are usable.
func (e Endpoints) Validate() error {
	if e.MaxTx <= 0 {
		return fmt.Errorf("invalid MaxTx %d", e.MaxTx)
	}
	if e.MaxRx <= 0 {
		return fmt.Errorf("invalid MaxRx %d", e.MaxRx)
	}
	return nil
}

func (e Endpoints) String() string {
	return fmt.Sprintf("in=0x%02X out=0x%02X maxTx=%d maxRx=%d", e.In, e.Out, e.MaxTx, e.MaxRx)
}
