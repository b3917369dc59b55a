// Package flasher provides a high-level API for flashing firmware onto
// Qualcomm modems in Emergency Download (EDL) mode.
//
// # Overview
//
// This package orchestrates the complete update sequence:
//   - Uploading the flash programmer over Sahara
//   - Configuring the Firehose session
//   - Erasing and programming flash as listed in the rawprogram manifest
//   - Resetting the device
//
// # Basic Usage
//
//	dev, err := usbdev.Open(usbdev.DefaultVID, usbdev.DefaultPID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	b, err := bundle.Open("firmware.zip")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f := flasher.New(dev, flasher.WithEndpoints(dev.Endpoints()))
//	if err := f.Flash(context.Background(), b); err != nil {
//	    log.Fatal(err)
//	}
//
// # Progress Tracking
//
//	f := flasher.New(dev,
//	    flasher.WithStatusCallback(func(p flasher.Phase) {
//	        fmt.Println("status:", p)
//	    }),
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("[%s] %.1f%% %s\n", p.Phase, p.Percentage, p.Label)
//	    }),
//	)
//
// # Error Handling
//
// Flash returns a *StepError naming the failed step. The cause underneath is
// one of:
//   - *transport.Error: a bulk transfer failed or the target stopped answering
//   - *sahara.TransferError, *sahara.UnexpectedCommandError: the upload failed
//   - *firehose.NAKError: the programmer rejected a command
//   - *manifest.ConfigurationError: the manifest is invalid
//   - bundle.ErrNotFound: a file referenced by the manifest is missing
//
// # Hardware Independence
//
// The flasher talks to any transport.Pipe. usbdev provides one over libusb;
// tests use a simulated target.
package flasher
