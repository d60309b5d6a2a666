package bootloader

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/nvm"
)

// ResetCause is the raw reset-cause register value captured at boot.
type ResetCause uint32

// Reset cause register values (SAMD21 PM.RCAUSE).
const (
	ResetPowerOn  ResetCause = 0x01
	ResetBOD12    ResetCause = 0x02
	ResetBOD33    ResetCause = 0x04
	ResetExternal ResetCause = 0x10
	ResetWatchdog ResetCause = 0x20
	ResetSystem   ResetCause = 0x40
)

func (c ResetCause) String() string {
	switch c {
	case ResetPowerOn:
		return "power-on"
	case ResetBOD12:
		return "bod12"
	case ResetBOD33:
		return "bod33"
	case ResetExternal:
		return "external"
	case ResetWatchdog:
		return "watchdog"
	case ResetSystem:
		return "system"
	default:
		return fmt.Sprintf("0x%02X", uint32(c))
	}
}

// ParseResetCause accepts a cause name as printed by String or a numeric
// register value ("0x20", "32").
func ParseResetCause(s string) (ResetCause, error) {
	for _, c := range []ResetCause{ResetPowerOn, ResetBOD12, ResetBOD33, ResetExternal, ResetWatchdog, ResetSystem} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Errorf("unknown reset cause %q", s)
	}
	return ResetCause(v), nil
}

// Entry is the application's launch point, taken from its vector table.
type Entry struct {
	// VectorTable is written to the vector table offset register
	VectorTable uint32

	// StackPointer is the initial main stack pointer (vector 0)
	StackPointer uint32

	// ResetHandler is the application entry point (vector 1)
	ResetHandler uint32
}

func (e Entry) String() string {
	return fmt.Sprintf("vtor=0x%08X sp=0x%08X reset=0x%08X", e.VectorTable, e.StackPointer, e.ResetHandler)
}

// Platform is the hardware the boot sequence runs on. Production
// implementations touch real registers; tests use an in-memory fake.
type Platform interface {
	// ResetCause returns the cause of the current boot
	ResetCause() ResetCause

	// InitHardware brings up clocks, pins and the flash bus
	InitHardware() error

	// EnterConsole runs the interactive serial console until it exits
	EnterConsole(ctx context.Context) error

	// Release frees bootloader-owned peripherals before launch
	Release()

	// TransferControl sets the vector table offset and stack pointer and
	// jumps to the reset handler. On hardware it never returns.
	TransferControl(entry Entry)
}

// ReadEntry reads the application's initial stack pointer and reset
// handler from the first two words of its vector table.
func ReadEntry(ctrl *nvm.Controller) (Entry, error) {
	start := ctrl.Region().AppStart()

	var words [8]byte
	if err := ctrl.Read(start, words[:]); err != nil {
		return Entry{}, errors.Wrap(err, "read vector table")
	}

	return Entry{
		VectorTable:  start,
		StackPointer: binary.LittleEndian.Uint32(words[0:4]),
		ResetHandler: binary.LittleEndian.Uint32(words[4:8]),
	}, nil
}
