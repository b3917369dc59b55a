package transport

import (
	"io"
	"os"
	"time"
)

// DumpEnv is the environment variable that enables buffer dumps to stderr.
const DumpEnv = "FIREHOSE_VERBOSE"

// Logger is the logging interface used throughout the module.
// It is satisfied by *slog.Logger and by simple adapters over other loggers.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the transport configuration.
type Config struct {
	// PollAttempts is the number of bulk-in attempts in PollUntilReady mode
	PollAttempts int

	// AttemptTimeout bounds each bulk transfer
	AttemptTimeout time.Duration

	// Dump receives a hex dump of every transferred buffer (optional)
	Dump io.Writer

	// Logger is used for retry diagnostics (optional)
	Logger Logger
}

func defaultConfig() Config {
	cfg := Config{
		PollAttempts:   DefaultPollAttempts,
		AttemptTimeout: DefaultAttemptTimeout,
	}
	if os.Getenv(DumpEnv) != "" {
		cfg.Dump = os.Stderr
	}
	return cfg
}

// Option is a functional option for configuring a Transport.
type Option func(*Config)

// WithPollAttempts sets the number of attempts made in PollUntilReady mode.
func WithPollAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PollAttempts = n
		}
	}
}

// WithAttemptTimeout sets the timeout of a single bulk transfer.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.AttemptTimeout = d
		}
	}
}

// WithDump writes a hex dump of every transferred buffer to w.
// A nil writer keeps the environment-controlled default.
func WithDump(w io.Writer) Option {
	return func(c *Config) {
		if w != nil {
			c.Dump = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
