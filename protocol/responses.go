package protocol

import "fmt"

// ParseJEDECID parses the bytes clocked out after CmdJEDECID.
//
// Data format (JEDECIDResponseSize bytes):
//
//	[MFR][DEV_H][DEV_L]
func ParseJEDECID(data []byte) (JEDECID, error) {
	if len(data) != JEDECIDResponseSize {
		return JEDECID{}, fmt.Errorf("invalid JEDEC ID response length: got %d, expected %d",
			len(data), JEDECIDResponseSize)
	}

	return JEDECID{
		Manufacturer: data[0],
		Device:       uint16(data[1])<<8 | uint16(data[2]),
	}, nil
}

// ParseStatus wraps a raw status register byte.
func ParseStatus(b byte) Status {
	return Status(b)
}
