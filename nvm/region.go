// Package nvm models the microcontroller's internal program memory: the
// fixed bootloader/application/eeprom partition, a bounded-polling
// controller over the erase/write primitives, and the persisted reset flag.
package nvm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Region describes the internal flash partition of a target.
//
//	[0, BootSize)                     bootloader
//	[BootSize, BootSize+AppSpace())   application image
//	trailing EEPROMSize bytes         reserved
type Region struct {
	TotalSize  uint32
	BootSize   uint32
	EEPROMSize uint32
	PageSize   uint32
}

// AppSpace returns the number of bytes available to the application.
// It is zero when the partition is inconsistent; see Validate.
func (r Region) AppSpace() uint32 {
	if r.BootSize+r.EEPROMSize > r.TotalSize {
		return 0
	}
	return r.TotalSize - r.BootSize - r.EEPROMSize
}

// AppStart returns the first address of the application image.
func (r Region) AppStart() uint32 {
	return r.BootSize
}

// AppEnd returns the first address past the application image.
func (r Region) AppEnd() uint32 {
	return r.BootSize + r.AppSpace()
}

// Contains reports whether [addr, addr+n) lies inside the application image.
func (r Region) Contains(addr, n uint32) bool {
	return addr >= r.AppStart() && uint64(addr)+uint64(n) <= uint64(r.AppEnd())
}

// Validate checks the partition is self-consistent.
func (r Region) Validate() error {
	if r.PageSize == 0 {
		return errors.Errorf("page size must be non-zero")
	}
	if uint64(r.BootSize)+uint64(r.EEPROMSize) > uint64(r.TotalSize) {
		return errors.Errorf("boot (0x%X) + eeprom (0x%X) exceeds total size 0x%X",
			r.BootSize, r.EEPROMSize, r.TotalSize)
	}
	if r.BootSize%r.PageSize != 0 {
		return errors.Errorf("boot size 0x%X is not a multiple of page size %d", r.BootSize, r.PageSize)
	}
	if r.AppSpace()%r.PageSize != 0 {
		return errors.Errorf("application space 0x%X is not a multiple of page size %d", r.AppSpace(), r.PageSize)
	}
	return nil
}

func (r Region) String() string {
	return fmt.Sprintf("total=0x%X boot=0x%X eeprom=0x%X page=%d app=0x%X",
		r.TotalSize, r.BootSize, r.EEPROMSize, r.PageSize, r.AppSpace())
}
