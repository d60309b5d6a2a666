package flash

import (
	"time"

	"github.com/moffa90/go-flxboot/protocol"
)

// Logger matches bootloader.Logger so a single implementation serves both packages.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Config holds the transport configuration.
type Config struct {
	// MaxBusyPolls is the number of status reads before giving up
	MaxBusyPolls int

	// PollInterval is slept between status reads (zero spins)
	PollInterval time.Duration

	// Logger is used for logging operations (optional)
	Logger Logger
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		MaxBusyPolls: protocol.DefaultMaxBusyPolls,
	}
}

// Option is a functional option for configuring the Transport.
type Option func(*Config)

// WithMaxBusyPolls bounds the status polling loop. Values below 1 are ignored.
//
// Example:
//
//	t := flash.New(bus, flash.WithMaxBusyPolls(1000))
func WithMaxBusyPolls(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxBusyPolls = n
		}
	}
}

// WithPollInterval sets the delay between status reads.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollInterval = d
		}
	}
}

// WithLogger sets a logger for transport operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
