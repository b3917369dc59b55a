package flasher

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-firehose/bundle"
	"github.com/moffa90/go-firehose/firehose"
	"github.com/moffa90/go-firehose/manifest"
	"github.com/moffa90/go-firehose/transport"
)

// session is the state of one Flash or Reset call.
type session struct {
	flasher    *Flasher
	endpoints  transport.Endpoints
	transport  *transport.Transport
	channel    *firehose.Channel
	downloader *firehose.Downloader

	phase        Phase
	start        time.Time
	bytesWritten int64
}

func (s *session) setPhase(p Phase) {
	if s.phase == p {
		return
	}
	s.phase = p
	s.flasher.logDebug("phase", "phase", string(p))
	if cb := s.flasher.config.StatusCallback; cb != nil {
		cb(p)
	}
}

func (s *session) report(p Phase, current, total int, percentage float64, label string) {
	cb := s.flasher.config.ProgressCallback
	if cb == nil {
		return
	}
	cb(Progress{
		Phase:        p,
		Current:      current,
		Total:        total,
		Percentage:   percentage,
		BytesWritten: s.bytesWritten,
		ElapsedTime:  time.Since(s.start),
		Label:        label,
	})
}

func (s *session) upload(ctx context.Context, image []byte) error {
	s.setPhase(PhaseUploading)
	s.report(PhaseUploading, 0, len(image), percentUploadStart, "")

	m := s.flasher.newMachine(s.transport, image)
	if err := m.Run(ctx); err != nil {
		return err
	}
	s.flasher.logInfo("programmer uploaded", "bytes", m.BytesSent())

	if delay := s.flasher.config.SettleDelay; delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return nil
}

func (s *session) configure(ctx context.Context) error {
	params, err := s.channel.Configure(ctx, firehose.ConfigureParams{
		MemoryName: s.flasher.config.MemoryName,
		MaxTx:      s.endpoints.MaxTx,
		MaxRx:      s.endpoints.MaxRx,
	})
	if err != nil {
		return err
	}

	if params.MaxTx != s.endpoints.MaxTx {
		s.flasher.logInfo("payload size renegotiated", "from", s.endpoints.MaxTx, "to", params.MaxTx)
		s.endpoints = s.endpoints.WithMaxTx(params.MaxTx)
		s.downloader.SetMaxTx(params.MaxTx)
	}
	return nil
}

func (s *session) erase(ctx context.Context, d manifest.Directive) error {
	s.flasher.logDebug("erase",
		"start_sector", d.StartSector,
		"last_sector", d.EraseLastSector(),
		"partition", d.PhysicalPartitionNumber,
	)
	_, err := s.channel.Execute(ctx, firehose.BuildErase(d), transport.PollUntilReady)
	return err
}

func (s *session) program(ctx context.Context, b bundle.Bundle, d manifest.Directive, index, count int) error {
	if d.Filename == "" {
		s.flasher.logDebug("skipping program without filename", "index", index, "label", d.Label)
		return nil
	}

	data, err := b.LookupByName(d.Filename)
	if err != nil {
		return err
	}

	size := int64(len(data))
	total := d.ProgramByteCount(size)
	s.flasher.logInfo("program",
		"file", d.Filename,
		"bytes", size,
		"sectors", d.ProgramSectorCount(size),
		"start_sector", d.StartSector,
	)

	s.setPhase(PhaseWriting)
	if _, err := s.channel.Execute(ctx, firehose.BuildProgram(d, size), transport.PollUntilReady); err != nil {
		return err
	}

	span := float64(percentWriteEnd-percentWriteStart) / float64(count)
	base := percentWriteStart + float64(index)*span
	sent := s.bytesWritten

	err = s.downloader.Download(ctx, data, total, func(current, chunks int) {
		s.bytesWritten = sent + minInt64(int64(current)*int64(s.downloader.MaxTx()), total)
		s.report(PhaseWriting, current, chunks, base+float64(current)/float64(chunks)*span, d.Label)
	})
	if err != nil {
		return err
	}
	s.bytesWritten = sent + total

	s.setPhase(PhaseVerifying)
	if _, err := s.channel.Execute(ctx, "", transport.PollUntilReady); err != nil {
		return fmt.Errorf("completion: %w", err)
	}
	s.report(PhaseVerifying, index+1, count, base+span, d.Label)
	return nil
}

func (s *session) powerReset(ctx context.Context) error {
	_, err := s.channel.Execute(ctx, firehose.BuildPower(firehose.PowerReset), transport.Single)
	return err
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
