package sahara

import "github.com/moffa90/go-firehose/transport"

// DefaultMaxReadRequests bounds the number of image windows served in one upload.
const DefaultMaxReadRequests = 65536

// Config holds the state machine configuration.
type Config struct {
	// Logger is used for protocol diagnostics (optional)
	Logger transport.Logger

	// MaxReadRequests caps the number of ReadData requests served
	MaxReadRequests int
}

func defaultConfig() Config {
	return Config{
		MaxReadRequests: DefaultMaxReadRequests,
	}
}

// Option is a functional option for configuring a Machine.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(logger transport.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMaxReadRequests sets the read request cap. Non-positive values are ignored.
func WithMaxReadRequests(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxReadRequests = n
		}
	}
}
