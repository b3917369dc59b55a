// edlflash flashes a firmware bundle onto a Qualcomm device in Emergency
// Download mode.
//
// The bundle is a directory or zip archive holding a rawprogram_*.xml manifest,
// the files it references and, optionally, a prog_* flash programmer.
//
// Usage:
//
//	edlflash --logtostderr --firmware=/path/to/firmware.zip
//	edlflash --logtostderr -v=2 --firmware=/path/to/dir --memory=emmc --no-reset
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/gousb"

	"github.com/moffa90/go-firehose/bundle"
	"github.com/moffa90/go-firehose/firehose"
	"github.com/moffa90/go-firehose/flasher"
	"github.com/moffa90/go-firehose/transport"
	"github.com/moffa90/go-firehose/usbdev"
)

var (
	firmware = flag.String("firmware", "", "Firmware bundle: a directory or zip archive")
	vid      = flag.Uint("vid", uint(usbdev.DefaultVID), "USB vendor ID of the EDL device")
	pid      = flag.Uint("pid", uint(usbdev.DefaultPID), "USB product ID of the EDL device")
	memory   = flag.String("memory", firehose.DefaultMemoryName, "Firehose MemoryName (nand, emmc, ufs)")
	maxTx    = flag.Int("max-tx", transport.DefaultMaxTx, "Requested host-to-target payload size in bytes")
	maxRx    = flag.Int("max-rx", transport.DefaultMaxRx, "Target-to-host payload size in bytes")
	settle   = flag.Duration("settle", flasher.DefaultSettleDelay, "Wait after the programmer upload")
	noReset  = flag.Bool("no-reset", false, "Leave the device in the programmer after flashing")
	timeout  = flag.Duration("timeout", 30*time.Minute, "Overall time limit")
	dump     = flag.Bool("dump", os.Getenv(transport.DumpEnv) != "", "Hex-dump every bulk transfer to stderr")
)

// glogLogger adapts glog to flasher.Logger. Debug goes to -v=2.
type glogLogger struct{}

func (glogLogger) Debug(msg string, keysAndValues ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, format(msg, keysAndValues))
	}
}

func (glogLogger) Info(msg string, keysAndValues ...interface{}) {
	glog.InfoDepth(1, format(msg, keysAndValues))
}

func (glogLogger) Error(msg string, keysAndValues ...interface{}) {
	glog.ErrorDepth(1, format(msg, keysAndValues))
}

func format(msg string, keysAndValues []interface{}) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&sb, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&sb, " %v", keysAndValues[i])
		}
	}
	return sb.String()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if len(*firmware) == 0 {
		glog.Exit("Missing --firmware argument")
	}

	b, err := bundle.Open(*firmware)
	if err != nil {
		glog.Exitf("Failed to open firmware bundle: %v", err)
	}

	dev, err := usbdev.Open(gousb.ID(*vid), gousb.ID(*pid))
	if err != nil {
		glog.Exitf("Failed to open device: %v", err)
	}
	defer dev.Close()

	endpoints := dev.Endpoints()
	endpoints.MaxTx = *maxTx
	endpoints.MaxRx = *maxRx
	glog.Infof("Opened %s:%s (%s)", gousb.ID(*vid), gousb.ID(*pid), endpoints)

	opts := []flasher.Option{
		flasher.WithLogger(glogLogger{}),
		flasher.WithEndpoints(endpoints),
		flasher.WithMemoryName(*memory),
		flasher.WithSettleDelay(*settle),
		flasher.WithReset(!*noReset),
		flasher.WithStatusCallback(func(p flasher.Phase) {
			glog.Infof("Status: %s", p)
		}),
		flasher.WithProgressCallback(progress()),
	}
	if *dump {
		opts = append(opts, flasher.WithDumpWriter(os.Stderr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	f := flasher.New(dev, opts...)
	if err := f.Flash(ctx, b); err != nil {
		glog.Errorf("Flash failed at step %q: %v", flasher.FailedStep(err), err)
		glog.Flush()
		dev.Close()
		os.Exit(1)
	}

	glog.Info("Firmware flashed successfully")
}

// progress logs at most one line per whole percent.
func progress() flasher.ProgressCallback {
	last := -1
	return func(p flasher.Progress) {
		pct := int(p.Percentage)
		if pct == last {
			return
		}
		last = pct
		glog.Infof("[%-12s] %3d%% %s (%d bytes, %s)", p.Phase, pct, p.Label, p.BytesWritten, p.ElapsedTime.Round(time.Second))
	}
}
