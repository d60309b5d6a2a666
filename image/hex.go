package image

import (
	"io"
	"math"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
)

// LoadHex converts an Intel HEX file into a flat payload starting at base,
// the application start address. Gaps are filled with 0xFF.
func LoadHex(r io.Reader, base uint32) ([]byte, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, errors.Wrap(err, "parse intel hex")
	}

	segs := mem.GetDataSegments()
	if len(segs) == 0 {
		return nil, errors.New("intel hex contains no data")
	}

	var end uint64
	for _, s := range segs {
		if s.Address < base {
			return nil, errors.Errorf("segment at 0x%08X lies below base 0x%08X", s.Address, base)
		}
		e := uint64(s.Address) + uint64(len(s.Data))
		if e > math.MaxUint32 {
			return nil, errors.Errorf("segment at 0x%08X+%d ends past the 32-bit address space", s.Address, len(s.Data))
		}
		if e > end {
			end = e
		}
	}

	return mem.ToBinary(base, uint32(end)-base, 0xFF), nil
}

// DumpHex writes payload as Intel HEX located at base.
func DumpHex(w io.Writer, base uint32, payload []byte) error {
	mem := gohex.NewMemory()
	if err := mem.AddBinary(base, payload); err != nil {
		return errors.Wrap(err, "add binary")
	}
	return mem.DumpIntelHex(w, 16)
}
