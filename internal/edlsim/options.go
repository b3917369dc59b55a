package edlsim

import "github.com/moffa90/go-firehose/transport"

// Config holds the simulated target configuration.
type Config struct {
	// ProgrammerSize enables the Sahara stage, expecting an image of this size
	ProgrammerSize int

	// ReadWindow is the Sahara read request size
	ReadWindow int

	// SaharaStatus is sent in EndImageTransfer
	SaharaStatus uint32

	// Banner lines precede the end-of-supported-functions log
	Banner []string

	// MaxTx is the largest payload the target accepts per transfer
	MaxTx int

	// RejectMaxTx answers an oversized configure with NAK instead of lowering it
	RejectMaxTx bool

	// FailErase NAKs the n-th erase (1-based, 0 disables)
	FailErase int

	// FailProgram NAKs the n-th program (1-based, 0 disables)
	FailProgram int
}

func defaultConfig() Config {
	return Config{
		ReadWindow: 0x1000,
		Banner: []string{
			"Binary build date: Jan 01 2020 @ 00:00:00",
			"Chip serial num: 0 (0x0)",
			"Supported Functions: program configure nop power erase",
		},
		MaxTx: transport.DefaultMaxTx,
	}
}

// Option is a functional option for configuring a Target.
type Option func(*Config)

// WithProgrammer starts the target in Sahara mode expecting an image of size bytes.
func WithProgrammer(size int) Option {
	return func(c *Config) {
		c.ProgrammerSize = size
	}
}

// WithReadWindow sets the Sahara read request size.
func WithReadWindow(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ReadWindow = n
		}
	}
}

// WithSaharaStatus sets the EndImageTransfer status.
func WithSaharaStatus(status uint32) Option {
	return func(c *Config) {
		c.SaharaStatus = status
	}
}

// WithMaxTx sets the largest payload the target accepts.
func WithMaxTx(n int, reject bool) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTx = n
		}
		c.RejectMaxTx = reject
	}
}

// WithFailErase makes the n-th erase fail.
func WithFailErase(n int) Option {
	return func(c *Config) {
		c.FailErase = n
	}
}

// WithFailProgram makes the n-th program fail.
func WithFailProgram(n int) Option {
	return func(c *Config) {
		c.FailProgram = n
	}
}
