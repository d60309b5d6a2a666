package protocol

import (
	"errors"
	"fmt"
)

// ErrTimeout is matched by every *TimeoutError via errors.Is.
var ErrTimeout = errors.New("timeout")

// TimeoutError reports that a busy flag never cleared within the poll limit.
type TimeoutError struct {
	// Operation is the command that was waiting
	Operation string

	// Attempts is the number of polls performed
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: device still busy after %d polls", e.Operation, e.Attempts)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// IsTimeoutError returns true if err is or wraps a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// OpcodeName returns a human-readable name for a flash opcode.
func OpcodeName(op byte) string {
	switch op {
	case CmdStatusWrite:
		return "status write"
	case CmdArrayReadLowFreq:
		return "array read"
	case CmdStatusRead:
		return "status read"
	case CmdWriteEnable:
		return "write enable"
	case CmdBlockErase32K:
		return "block erase 32K"
	case CmdJEDECID:
		return "jedec id"
	default:
		return fmt.Sprintf("opcode 0x%02X", op)
	}
}
