package flasher

import (
	"time"

	"github.com/moffa90/go-firehose/transport"
)

// Phase is a stage of a flash operation.
type Phase string

// Phases reported through the status and progress callbacks, in order.
const (
	PhaseDecompressing Phase = "decompressing"
	PhaseUploading     Phase = "uploading"
	PhaseErasing       Phase = "erasing"
	PhaseWriting       Phase = "writing"
	PhaseVerifying     Phase = "verifying"
	PhaseRestarting    Phase = "restarting"
	PhaseComplete      Phase = "complete"
)

// Progress contains information about the flashing progress.
// Passed to ProgressCallback during Flash.
type Progress struct {
	// Phase is the current stage
	Phase Phase

	// Current is the 1-based step within the phase: erase index while
	// erasing, chunk index while writing
	Current int

	// Total is the number of steps in the phase
	Total int

	// Percentage is the overall completion (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the number of raw bytes streamed so far, padding included
	BytesWritten int64

	// ElapsedTime is the time elapsed since Flash started
	ElapsedTime time.Duration

	// Label is the partition label of the current directive, if any
	Label string
}

// ProgressCallback is called during flashing to report progress.
// Implementations should return quickly to avoid stalling the transfer.
//
// Example:
//
//	f := flasher.New(dev,
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("[%s] %.1f%% %s %d/%d\n",
//	            p.Phase, p.Percentage, p.Label, p.Current, p.Total)
//	    }),
//	)
type ProgressCallback func(Progress)

// StatusCallback is called whenever the phase changes.
type StatusCallback func(Phase)

// Logger is the logging interface accepted by the flasher. *slog.Logger
// satisfies it, as does any adapter with the same three methods.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	f := flasher.New(dev, flasher.WithLogger(&StdLogger{}))
type Logger = transport.Logger
