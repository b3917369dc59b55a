package firehose

import "github.com/moffa90/go-firehose/transport"

// DefaultMaxResponses bounds the messages read for a single command.
const DefaultMaxResponses = 1024

// Config holds the channel configuration.
type Config struct {
	// Logger receives target log lines and diagnostics (optional)
	Logger transport.Logger

	// MaxResponses caps the messages read while waiting for ACK or NAK
	MaxResponses int
}

func defaultConfig() Config {
	return Config{
		MaxResponses: DefaultMaxResponses,
	}
}

// Option is a functional option for configuring a Channel.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(logger transport.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMaxResponses sets the response budget. Non-positive values are ignored.
func WithMaxResponses(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxResponses = n
		}
	}
}
