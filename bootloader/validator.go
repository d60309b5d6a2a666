package bootloader

import (
	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/flash"
	"github.com/moffa90/go-flxboot/image"
	"github.com/moffa90/go-flxboot/nvm"
	"github.com/moffa90/go-flxboot/protocol"
)

// Validate unprotects the external flash, reads the staged image header
// and classifies it against the chip capacity and application space.
// dev must be Known.
func Validate(t *flash.Transport, dev flash.Device, region nvm.Region) (image.Outcome, error) {
	if !dev.Known() {
		return image.Outcome{}, errors.Errorf("validate: %s", dev)
	}

	if err := t.Unprotect(); err != nil {
		return image.Outcome{}, err
	}

	h, err := image.ReadHeader(t)
	if err != nil {
		return image.Outcome{}, err
	}

	return image.Classify(h, dev.Capacity, region.AppSpace()), nil
}

// EraseImage discards [0, length) of external flash in 32 KiB blocks and
// returns the number of block erases issued.
func EraseImage(t *flash.Transport, length uint32) (int, error) {
	n := 0
	for _, addr := range protocol.BlockEraseAddresses(length) {
		if err := t.BlockErase32K(addr); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
