package flash

// Bus is a chip-select-gated serial bus to a single flash device.
//
// Select asserts chip select and Deselect releases it. Transfer clocks
// one byte out and returns the byte clocked in during the same cycle.
// Chip select stays asserted between Transfer calls until Deselect.
type Bus interface {
	Select() error
	Deselect() error
	Transfer(b byte) (byte, error)
}
