package usbdev

import (
	"errors"
	"io"
	"testing"

	"github.com/google/gousb"

	"github.com/moffa90/go-firehose/transport"
)

func endpoint(addr gousb.EndpointAddress, tt gousb.TransferType) gousb.EndpointDesc {
	dir := gousb.EndpointDirectionOut
	if addr&0x80 != 0 {
		dir = gousb.EndpointDirectionIn
	}
	return gousb.EndpointDesc{
		Address:       addr,
		Number:        int(addr & 0x0f),
		Direction:     dir,
		MaxPacketSize: 512,
		TransferType:  tt,
	}
}

func setting(eps ...gousb.EndpointDesc) gousb.InterfaceSetting {
	s := gousb.InterfaceSetting{Endpoints: map[gousb.EndpointAddress]gousb.EndpointDesc{}}
	for _, ep := range eps {
		s.Endpoints[ep.Address] = ep
	}
	return s
}

func TestFindBulk(t *testing.T) {
	tests := []struct {
		name    string
		setting gousb.InterfaceSetting
		wantIn  gousb.EndpointAddress
		wantOut gousb.EndpointAddress
		wantErr bool
	}{
		{
			name:    "edl pair",
			setting: setting(endpoint(0x81, gousb.TransferTypeBulk), endpoint(0x01, gousb.TransferTypeBulk)),
			wantIn:  0x81,
			wantOut: 0x01,
		},
		{
			name: "interrupt endpoint ignored",
			setting: setting(
				endpoint(0x81, gousb.TransferTypeInterrupt),
				endpoint(0x82, gousb.TransferTypeBulk),
				endpoint(0x02, gousb.TransferTypeBulk),
			),
			wantIn:  0x82,
			wantOut: 0x02,
		},
		{
			name: "lowest address wins",
			setting: setting(
				endpoint(0x83, gousb.TransferTypeBulk),
				endpoint(0x81, gousb.TransferTypeBulk),
				endpoint(0x03, gousb.TransferTypeBulk),
				endpoint(0x01, gousb.TransferTypeBulk),
			),
			wantIn:  0x81,
			wantOut: 0x01,
		},
		{
			name:    "no bulk out",
			setting: setting(endpoint(0x81, gousb.TransferTypeBulk)),
			wantErr: true,
		},
		{
			name:    "no endpoints",
			setting: setting(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := findBulk(tt.setting)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("findBulk() error: %v", err)
			}
			if in.Address != tt.wantIn || out.Address != tt.wantOut {
				t.Errorf("findBulk() = %s, %s; want %s, %s", in.Address, out.Address, tt.wantIn, tt.wantOut)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantTimeout bool
	}{
		{name: "nil", err: nil},
		{name: "transfer timed out", err: gousb.TransferTimedOut, wantTimeout: true},
		{name: "libusb timeout", err: gousb.ErrorTimeout, wantTimeout: true},
		{name: "stall", err: gousb.TransferStall},
		{name: "other", err: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("mapError(nil) = %v", got)
				}
				return
			}
			if errors.Is(got, transport.ErrTimeout) != tt.wantTimeout {
				t.Errorf("mapError(%v) = %v, timeout want %v", tt.err, got, tt.wantTimeout)
			}
			if !errors.Is(got, tt.err) && !tt.wantTimeout {
				t.Errorf("mapError(%v) lost the cause: %v", tt.err, got)
			}
		})
	}
}

func TestCloseZeroDevice(t *testing.T) {
	d := &Device{}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
