// Package protocol defines the serial NOR flash command set used by the
// external-flash update path.
//
// The external flash is driven over a chip-select-gated SPI bus. Every
// transaction starts by asserting chip select, clocking out an opcode and
// an optional 24-bit big-endian address, then clocking data in or out
// before chip select is released:
//
//	Status read:   [0x05] -> [STATUS]
//	Status write:  [0x01][STATUS]
//	Write enable:  [0x06]
//	Array read:    [0x03][A23..16][A15..8][A7..0] -> [DATA]
//	JEDEC ID:      [0x9F] -> [MFR][DEV_H][DEV_L]
//	Block erase:   [0x52][A23..16][A15..8][A7..0]
//
// The opcode values are a compatibility contract with the physical chip
// and must not change.
//
// # Command Builders
//
// Use the Build* functions to create the byte sequence clocked out for
// a command:
//
//	seq := protocol.BuildReadCmd(0x000007)
//	seq := protocol.BuildBlockErase32KCmd(0x008000)
//
// # Response Parsers
//
// Use the Parse* functions to decode bytes clocked back from the chip:
//
//	id, err := protocol.ParseJEDECID(resp)
//	busy := protocol.ParseStatus(status).Busy()
//
// # Error Handling
//
// Busy polling is always bounded. When the chip does not report ready
// within the configured number of polls a *TimeoutError is returned:
//
//	var te *protocol.TimeoutError
//	if errors.As(err, &te) {
//	    // te.Operation, te.Attempts
//	}
package protocol
