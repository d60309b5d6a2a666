package nvm

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ResetFlagAddr is where the reset-cause record of the most recent boot lives.
const ResetFlagAddr = 0x8000 - 0x100

// ResetFlagSize is the size of the record in bytes.
const ResetFlagSize = 4

// SaveResetFlag erases the record's row and writes cause as a
// little-endian 32-bit word.
func SaveResetFlag(c *Controller, cause uint32) error {
	if err := c.EraseRow(ResetFlagAddr); err != nil {
		return errors.Wrap(err, "save reset flag")
	}

	var buf [ResetFlagSize]byte
	binary.LittleEndian.PutUint32(buf[:], cause)
	if err := c.Write(ResetFlagAddr, buf[:]); err != nil {
		return errors.Wrap(err, "save reset flag")
	}
	return nil
}

// LoadResetFlag reads back the persisted reset cause.
func LoadResetFlag(c *Controller) (uint32, error) {
	var buf [ResetFlagSize]byte
	if err := c.Read(ResetFlagAddr, buf[:]); err != nil {
		return 0, errors.Wrap(err, "load reset flag")
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
