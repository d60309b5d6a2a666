package protocol

import "fmt"

// JEDECID is the identification returned by the JEDEC ID query.
type JEDECID struct {
	// Manufacturer is the JEDEC manufacturer code (1 byte)
	Manufacturer byte

	// Device is the manufacturer-specific device code (2 bytes, big-endian on the wire)
	Device uint16
}

func (id JEDECID) String() string {
	return fmt.Sprintf("%02X:%04X", id.Manufacturer, id.Device)
}

// Status is the flash status register value.
type Status byte

// Busy reports whether a program or erase cycle is in progress.
func (s Status) Busy() bool {
	return s&StatusBusy != 0
}

// WriteEnabled reports whether the write enable latch is set.
func (s Status) WriteEnabled() bool {
	return s&StatusWriteEnabled != 0
}
