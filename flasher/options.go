package flasher

import (
	"io"
	"time"

	"github.com/moffa90/go-firehose/firehose"
	"github.com/moffa90/go-firehose/transport"
)

// DefaultSettleDelay is the pause between the Sahara upload and the first
// Firehose exchange, while the programmer boots.
const DefaultSettleDelay = 3 * time.Second

// Config holds the flasher configuration.
type Config struct {
	// ProgressCallback is called during flashing to report progress (optional)
	ProgressCallback ProgressCallback

	// StatusCallback is called on every phase change (optional)
	StatusCallback StatusCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Endpoints are the initial endpoint addresses and payload sizes
	Endpoints transport.Endpoints

	// PollAttempts is the bulk-in attempt budget for long operations
	PollAttempts int

	// AttemptTimeout bounds each bulk transfer
	AttemptTimeout time.Duration

	// SettleDelay is the pause after the programmer upload
	SettleDelay time.Duration

	// MemoryName is the storage type sent in configure
	MemoryName string

	// Reset sends a power reset after a successful flash
	Reset bool

	// MaxResponses caps the messages read for one command
	MaxResponses int

	// Dump receives a hex dump of every transfer (optional)
	Dump io.Writer
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Endpoints:      transport.DefaultEndpoints(),
		PollAttempts:   transport.DefaultPollAttempts,
		AttemptTimeout: transport.DefaultAttemptTimeout,
		SettleDelay:    DefaultSettleDelay,
		MemoryName:     firehose.DefaultMemoryName,
		Reset:          true,
		MaxResponses:   firehose.DefaultMaxResponses,
	}
}

// Option is a functional option for configuring the Flasher.
type Option func(*Config)

// WithProgressCallback sets a callback function to track flashing progress.
//
// Example:
//
//	f := flasher.New(dev,
//	    flasher.WithProgressCallback(func(p flasher.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithStatusCallback sets a callback invoked on every phase change.
func WithStatusCallback(callback StatusCallback) Option {
	return func(c *Config) {
		c.StatusCallback = callback
	}
}

// WithLogger sets a logger for the flasher and the protocol layers below it.
//
// Example:
//
//	f := flasher.New(dev, flasher.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithEndpoints sets the initial endpoint set. The payload sizes are the
// values offered in configure.
func WithEndpoints(ep transport.Endpoints) Option {
	return func(c *Config) {
		if ep.Validate() == nil {
			c.Endpoints = ep
		}
	}
}

// WithPollAttempts sets the bulk-in attempt budget for long operations.
// Default is 600.
func WithPollAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PollAttempts = n
		}
	}
}

// WithAttemptTimeout sets the timeout of a single bulk transfer.
// Default is 1 second.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.AttemptTimeout = d
		}
	}
}

// WithSettleDelay sets the pause after the programmer upload.
// Default is 3 seconds.
//
// Example:
//
//	f := flasher.New(dev, flasher.WithSettleDelay(5*time.Second))
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.SettleDelay = d
		}
	}
}

// WithMemoryName sets the storage type sent in configure. Default is "nand".
func WithMemoryName(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.MemoryName = name
		}
	}
}

// WithReset enables or disables the power reset after a successful flash.
// Default is true.
func WithReset(reset bool) Option {
	return func(c *Config) {
		c.Reset = reset
	}
}

// WithMaxResponses sets the number of messages read for one command before
// giving up. Default is 1024.
func WithMaxResponses(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxResponses = n
		}
	}
}

// WithDumpWriter writes a hex dump of every transfer to w.
func WithDumpWriter(w io.Writer) Option {
	return func(c *Config) {
		c.Dump = w
	}
}
