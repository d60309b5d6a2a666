package flash

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/protocol"
)

// Device describes an identified external flash chip.
type Device struct {
	// ID is the raw JEDEC identification
	ID protocol.JEDECID

	// Name is the part number, empty for unknown chips
	Name string

	// Capacity is the array size in bytes, zero for unknown chips
	Capacity uint32
}

// Known reports whether the chip is in the supported parts table.
func (d Device) Known() bool {
	return d.Capacity != 0
}

func (d Device) String() string {
	if !d.Known() {
		return fmt.Sprintf("unknown device %s", d.ID)
	}
	return fmt.Sprintf("%s (%s, %d KiB)", d.Name, d.ID, d.Capacity/1024)
}

type part struct {
	name     string
	capacity uint32
}

// Device IDs are compared as the full 16-bit value returned by the chip.
var knownParts = map[protocol.JEDECID]part{
	{Manufacturer: protocol.ManufacturerAdesto, Device: protocol.DeviceAT25XE011}:    {"AT25XE011", 0x20000},
	{Manufacturer: protocol.ManufacturerAdesto, Device: protocol.DeviceAT25DF041B}:   {"AT25DF041B", 0x80000},
	{Manufacturer: protocol.ManufacturerMacronix, Device: protocol.DeviceMX25R8035F}: {"MX25R8035F", 0x100000},
}

// Lookup maps a JEDEC ID to a Device. Unknown IDs yield a Device with
// zero capacity.
func Lookup(id protocol.JEDECID) Device {
	p, ok := knownParts[id]
	if !ok {
		return Device{ID: id}
	}
	return Device{ID: id, Name: p.name, Capacity: p.capacity}
}

// Identify issues a single JEDEC ID query and looks the chip up.
// Callers must not touch the chip further when the result is not Known.
func Identify(t *Transport) (Device, error) {
	id, err := t.ReadJEDECID()
	if err != nil {
		return Device{}, errors.Wrap(err, "identify")
	}

	dev := Lookup(id)
	if dev.Known() {
		t.logDebug("flash identified", "part", dev.Name, "capacity", dev.Capacity)
	} else {
		t.logDebug("unknown flash", "id", id.String())
	}
	return dev, nil
}
