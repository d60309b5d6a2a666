package bootloader

import (
	"fmt"
)

// AllocationError indicates the page scratch buffer could not be obtained.
// No internal flash has been touched when it is returned.
type AllocationError struct {
	Size int
	Err  error
}

func (e *AllocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("allocate %d byte page buffer: %v", e.Size, e.Err)
	}
	return fmt.Sprintf("allocate %d byte page buffer: short buffer", e.Size)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// OutOfRangeError indicates a write outside the application space.
type OutOfRangeError struct {
	Addr     uint32
	Length   uint32
	AppStart uint32
	AppEnd   uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("write 0x%08X+%d is out of range: application space is 0x%08X-0x%08X",
		e.Addr, e.Length, e.AppStart, e.AppEnd)
}

// VerificationError indicates that a programmed page did not read back as written.
type VerificationError struct {
	Addr     uint32
	Expected byte
	Actual   byte
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed at 0x%08X: expected 0x%02X, got 0x%02X",
		e.Addr, e.Expected, e.Actual)
}
