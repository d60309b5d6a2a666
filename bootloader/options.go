package bootloader

import "io"

// Config holds the programmer and sequencer configuration.
type Config struct {
	// ProgressCallback is called to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Diagnostics receives fatal error reports before the application is launched (optional)
	Diagnostics io.Writer

	// PadTrailingPage flushes a final partial page padded with PadByte.
	// When false the trailing partial page is dropped.
	PadTrailingPage bool

	// VerifyAfterProgram reads every page back after writing it
	VerifyAfterProgram bool

	// BufferAllocator returns the page scratch buffer
	BufferAllocator func(size int) ([]byte, error)
}

// PadByte fills the unused tail of a trailing partial page; it matches erased flash.
const PadByte = 0xFF

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		PadTrailingPage: true,
		BufferAllocator: func(size int) ([]byte, error) {
			return make([]byte, size), nil
		},
	}
}

// Option is a functional option for configuring the Programmer and Sequencer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track progress.
//
// Example:
//
//	seq := bootloader.NewSequencer(platform, t, ctrl,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for bootloader operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithDiagnostics sets the writer that receives fatal error reports,
// typically the serial console.
func WithDiagnostics(w io.Writer) Option {
	return func(c *Config) {
		c.Diagnostics = w
	}
}

// WithPadTrailingPage controls whether a trailing partial page is padded
// and written (default) or dropped.
func WithPadTrailingPage(pad bool) Option {
	return func(c *Config) {
		c.PadTrailingPage = pad
	}
}

// WithVerifyAfterProgram enables read-back verification of each page.
// Default is false.
func WithVerifyAfterProgram(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterProgram = verify
	}
}

// WithBufferAllocator replaces the page buffer allocator.
//
// Example:
//
//	var pool [512]byte
//	prog := bootloader.NewProgrammer(t, ctrl,
//	    bootloader.WithBufferAllocator(func(n int) ([]byte, error) {
//	        return pool[:n], nil
//	    }),
//	)
func WithBufferAllocator(alloc func(size int) ([]byte, error)) Option {
	return func(c *Config) {
		if alloc != nil {
			c.BufferAllocator = alloc
		}
	}
}
