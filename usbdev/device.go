package usbdev

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/gousb"

	"github.com/moffa90/go-firehose/transport"
)

// USB identifiers of a Qualcomm device in Emergency Download mode.
const (
	DefaultVID gousb.ID = 0x05c6
	DefaultPID gousb.ID = 0x9008
)

// ErrNotFound is returned by Open when no device matches the VID/PID.
var ErrNotFound = errors.New("usbdev: device not found")

// Device is a claimed EDL interface. It implements transport.Pipe.
type Device struct {
	ctx       *gousb.Context
	dev       *gousb.Device
	done      func()
	in        *gousb.InEndpoint
	out       *gousb.OutEndpoint
	endpoints transport.Endpoints
}

// Open finds the first device with the given VID/PID, detaches any kernel
// driver, claims its default interface and opens the bulk endpoint pair.
//
// Example:
//
//	dev, err := usbdev.Open(usbdev.DefaultVID, usbdev.DefaultPID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
func Open(vid, pid gousb.ID) (*Device, error) {
	d := &Device{ctx: gousb.NewContext()}

	dev, err := d.ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: open %s:%s: %w", vid, pid, err)
	}
	if dev == nil {
		d.Close()
		return nil, fmt.Errorf("%w: %s:%s", ErrNotFound, vid, pid)
	}
	d.dev = dev

	if err := dev.SetAutoDetach(true); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: auto detach: %w", err)
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: claim interface: %w", err)
	}
	d.done = done

	inDesc, outDesc, err := findBulk(intf.Setting)
	if err != nil {
		d.Close()
		return nil, err
	}

	if d.in, err = intf.InEndpoint(inDesc.Number); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: open %s: %w", inDesc, err)
	}
	if d.out, err = intf.OutEndpoint(outDesc.Number); err != nil {
		d.Close()
		return nil, fmt.Errorf("usbdev: open %s: %w", outDesc, err)
	}

	d.endpoints = transport.DefaultEndpoints()
	d.endpoints.In = uint8(inDesc.Address)
	d.endpoints.Out = uint8(outDesc.Address)
	return d, nil
}

// Endpoints returns the discovered endpoint addresses with the default
// payload sizes.
func (d *Device) Endpoints() transport.Endpoints {
	return d.endpoints
}

// ReadContext performs one bulk-in transfer.
func (d *Device) ReadContext(ctx context.Context, buf []byte) (int, error) {
	n, err := d.in.ReadContext(ctx, buf)
	return n, mapError(err)
}

// WriteContext performs one bulk-out transfer.
func (d *Device) WriteContext(ctx context.Context, buf []byte) (int, error) {
	n, err := d.out.WriteContext(ctx, buf)
	return n, mapError(err)
}

// Close releases the interface, the device and the libusb context.
func (d *Device) Close() error {
	var errs []error
	if d.done != nil {
		d.done()
		d.done = nil
	}
	if d.dev != nil {
		errs = append(errs, d.dev.Close())
		d.dev = nil
	}
	if d.ctx != nil {
		errs = append(errs, d.ctx.Close())
		d.ctx = nil
	}
	return errors.Join(errs...)
}

// findBulk picks the lowest-numbered bulk-in and bulk-out endpoints.
func findBulk(s gousb.InterfaceSetting) (in, out gousb.EndpointDesc, err error) {
	descs := make([]gousb.EndpointDesc, 0, len(s.Endpoints))
	for _, ep := range s.Endpoints {
		descs = append(descs, ep)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].Address < descs[j].Address })

	var haveIn, haveOut bool
	for _, ep := range descs {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionIn && !haveIn:
			in, haveIn = ep, true
		case ep.Direction == gousb.EndpointDirectionOut && !haveOut:
			out, haveOut = ep, true
		}
	}

	if !haveIn || !haveOut {
		return in, out, fmt.Errorf("usbdev: interface %d has no bulk endpoint pair", s.Number)
	}
	return in, out, nil
}

// mapError reports libusb timeouts as transport.ErrTimeout.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gousb.TransferTimedOut) || errors.Is(err, gousb.ErrorTimeout) {
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	}
	return err
}
