package flasher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-firehose/bundle"
	"github.com/moffa90/go-firehose/firehose"
	"github.com/moffa90/go-firehose/manifest"
	"github.com/moffa90/go-firehose/sahara"
	"github.com/moffa90/go-firehose/transport"
)

// ProgrammerPrefix is the name prefix of the flash programmer inside a bundle.
const ProgrammerPrefix = "prog_"

// Overall progress boundaries of each phase, in percent.
const (
	percentUploadStart = 0
	percentEraseStart  = 10
	percentWriteStart  = 30
	percentWriteEnd    = 95
	percentRestart     = 97
)

// Flasher drives a Qualcomm EDL target through a complete firmware update.
// The pipe is borrowed; closing it is the caller's job.
//
// A Flasher is not safe for concurrent use.
type Flasher struct {
	pipe   transport.Pipe
	config Config
}

// New creates a new Flasher over the given pipe.
//
// Example:
//
//	dev, _ := usbdev.Open(usbdev.DefaultVID, usbdev.DefaultPID)
//	defer dev.Close()
//	f := flasher.New(dev,
//	    flasher.WithProgressCallback(progressFunc),
//	    flasher.WithEndpoints(dev.Endpoints()),
//	)
func New(pipe transport.Pipe, opts ...Option) *Flasher {
	if pipe == nil {
		panic("pipe cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Flasher{
		pipe:   pipe,
		config: cfg,
	}
}

// Flash performs the complete update sequence:
//  1. Parse the rawprogram_ manifest from the bundle
//  2. Upload the prog_ programmer over Sahara, if the bundle has one, and wait for it to boot
//  3. Drain the programmer banner
//  4. Send configure and apply the negotiated payload size
//  5. Run every erase in manifest order
//  6. Run every program in manifest order, streaming its file
//  7. Send a power reset, if enabled
//
// The first failure aborts the sequence and is returned as a *StepError.
// Nothing already written is rolled back.
//
// Example:
//
//	b, _ := bundle.Open("firmware.zip")
//	err := f.Flash(context.Background(), b)
func (f *Flasher) Flash(ctx context.Context, b bundle.Bundle) error {
	if b == nil {
		return fmt.Errorf("bundle cannot be nil")
	}

	s := f.newSession()

	s.setPhase(PhaseDecompressing)
	m, err := loadManifest(b)
	if err != nil {
		return &StepError{Step: StepManifest, Index: -1, Err: err}
	}
	programmer, err := b.LookupByPrefix(ProgrammerPrefix)
	if err != nil && !errors.Is(err, bundle.ErrNotFound) {
		return &StepError{Step: StepUpload, Index: -1, Err: err}
	}

	erases := m.Erases()
	programs := m.Programs()
	f.logInfo("manifest loaded",
		"erases", len(erases),
		"programs", len(programs),
		"programmer_bytes", len(programmer),
	)

	if programmer != nil {
		if err := s.upload(ctx, programmer); err != nil {
			return &StepError{Step: StepUpload, Index: -1, Err: err}
		}
	}

	if _, err := s.channel.Execute(ctx, "", transport.PollUntilReady); err != nil {
		return &StepError{Step: StepStartup, Index: -1, Err: err}
	}

	if err := s.configure(ctx); err != nil {
		return &StepError{Step: StepConfigure, Index: -1, Err: err}
	}

	s.setPhase(PhaseErasing)
	for i, d := range erases {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		if err := s.erase(ctx, d); err != nil {
			return &StepError{Step: StepErase, Index: i, Label: d.Label, Err: err}
		}
		s.report(PhaseErasing, i+1, len(erases), percentEraseStart+
			float64(i+1)/float64(len(erases))*(percentWriteStart-percentEraseStart), d.Label)
	}

	s.setPhase(PhaseWriting)
	for i, d := range programs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}
		if err := s.program(ctx, b, d, i, len(programs)); err != nil {
			return &StepError{Step: StepProgram, Index: i, Label: d.Label, Err: err}
		}
	}

	if f.config.Reset {
		s.setPhase(PhaseRestarting)
		s.report(PhaseRestarting, 0, 0, percentRestart, "")
		if err := s.powerReset(ctx); err != nil {
			f.logError("power reset failed", "error", err)
		}
	}

	s.setPhase(PhaseComplete)
	s.report(PhaseComplete, 0, 0, 100, "")

	f.logInfo("flash complete",
		"erases", len(erases),
		"programs", len(programs),
		"bytes", s.bytesWritten,
		"elapsed", time.Since(s.start).String(),
	)
	return nil
}

// Reset sends only a power reset to a target already running the programmer.
// Unlike the reset at the end of Flash, a failure is returned.
func (f *Flasher) Reset(ctx context.Context) error {
	s := f.newSession()
	if err := s.powerReset(ctx); err != nil {
		return &StepError{Step: StepPowerReset, Index: -1, Err: err}
	}
	return nil
}

func loadManifest(b bundle.Bundle) (*manifest.Manifest, error) {
	raw, err := b.LookupByPrefix(manifest.FilePrefix)
	if err != nil {
		return nil, err
	}
	return manifest.ParseBytes(raw)
}

func (f *Flasher) newSession() *session {
	cfg := f.config

	tr := transport.New(f.pipe,
		transport.WithPollAttempts(cfg.PollAttempts),
		transport.WithAttemptTimeout(cfg.AttemptTimeout),
		transport.WithDump(cfg.Dump),
		transport.WithLogger(cfg.Logger),
	)

	return &session{
		flasher:   f,
		endpoints: cfg.Endpoints,
		transport: tr,
		channel: firehose.NewChannel(tr,
			firehose.WithLogger(cfg.Logger),
			firehose.WithMaxResponses(cfg.MaxResponses),
		),
		downloader: firehose.NewDownloader(tr, cfg.Endpoints.MaxTx),
		start:      time.Now(),
	}
}

func (f *Flasher) newMachine(tr transport.Conn, image []byte) *sahara.Machine {
	return sahara.NewMachine(tr, image, sahara.WithLogger(f.config.Logger))
}

func (f *Flasher) logDebug(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (f *Flasher) logInfo(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Info(msg, keysAndValues...)
	}
}

func (f *Flasher) logError(msg string, keysAndValues ...interface{}) {
	if f.config.Logger != nil {
		f.config.Logger.Error(msg, keysAndValues...)
	}
}
