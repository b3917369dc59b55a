// Package usbdev opens a Qualcomm device in EDL mode over libusb.
//
// A Device claims the default interface of the first device matching the
// VID/PID and exposes its bulk endpoint pair as a transport.Pipe. Building
// this package requires cgo and libusb-1.0.
package usbdev
