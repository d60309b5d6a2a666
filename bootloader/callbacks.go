package bootloader

import "time"

// Boot phases reported through ProgressCallback.
const (
	PhaseIdentifying = "identifying"
	PhaseValidating  = "validating"
	PhaseProgramming = "programming"
	PhaseErasing     = "erasing"
	PhaseLaunching   = "launching"
	PhaseComplete    = "complete"
)

// Progress contains information about the update progress.
// Passed to ProgressCallback during the boot sequence.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// CurrentPage is the number of internal flash pages written so far
	CurrentPage int

	// TotalPages is the number of pages the image occupies
	TotalPages int

	// Percentage is the completion percentage of the current phase (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the number of payload bytes copied so far
	BytesWritten int

	// ElapsedTime is the time elapsed since the phase started
	ElapsedTime time.Duration
}

// ProgressCallback is called during the boot sequence to report progress.
// Implementations should return quickly; the copy loop is synchronous.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the
// sequencer and programmer. It matches flash.Logger.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
