package image

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Container is a decoded image file.
type Container struct {
	Header   Header
	Reserved [3]byte
	Payload  []byte
}

// Build wraps payload in a container ready to be written at external flash address 0.
func Build(payload []byte, reserved [3]byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	copy(out[MagicOffset:], Magic[:])
	copy(out[ReservedOffset:], reserved[:])
	out[Sep1Offset] = Separator
	binary.BigEndian.PutUint32(out[LengthOffset:], uint32(len(payload)))
	out[Sep2Offset] = Separator
	copy(out[PayloadOffset:], payload)
	return out
}

// sliceReader serves ByteReader from memory; bytes past the end read as erased flash.
type sliceReader []byte

func (s sliceReader) ReadByteAt(addr uint32) (byte, error) {
	if int(addr) >= len(s) {
		return 0xFF, nil
	}
	return s[addr], nil
}

// NewSliceReader returns a ByteReader over b. Addresses past the end read 0xFF.
func NewSliceReader(b []byte) ByteReader {
	return sliceReader(b)
}

// Parse decodes a container, requiring a well-formed header and a payload
// at least as long as the declared length. Trailing bytes are ignored.
func Parse(b []byte) (*Container, error) {
	return ReadContainer(sliceReader(b), uint32(len(b)))
}

// ReadContainer decodes a container of size bytes served by r.
func ReadContainer(r ByteReader, size uint32) (*Container, error) {
	if size < HeaderSize {
		return nil, errors.Errorf("image too short: got %d bytes, header is %d", size, HeaderSize)
	}

	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	if !h.WellFormed() {
		return nil, errors.Errorf("malformed header: magic %q separators 0x%02X/0x%02X",
			h.Magic[:], h.Sep1, h.Sep2)
	}

	end := uint64(PayloadOffset) + uint64(h.Length)
	if end > uint64(size) {
		return nil, errors.Errorf("truncated payload: header declares %d bytes, file has %d",
			h.Length, size-HeaderSize)
	}

	c := &Container{Header: h, Payload: make([]byte, h.Length)}
	for i := range c.Reserved {
		if c.Reserved[i], err = r.ReadByteAt(uint32(ReservedOffset + i)); err != nil {
			return nil, errors.Wrap(err, "read reserved bytes")
		}
	}
	for i := range c.Payload {
		if c.Payload[i], err = r.ReadByteAt(PayloadOffset + uint32(i)); err != nil {
			return nil, errors.Wrapf(err, "read payload byte %d", i)
		}
	}
	return c, nil
}

// ParseFile reads and decodes a container file.
func ParseFile(path string) (*Container, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}
	return Parse(b)
}
