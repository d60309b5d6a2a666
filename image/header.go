package image

import (
	"fmt"

	"github.com/pkg/errors"
)

// Container layout offsets.
const (
	MagicOffset    = 0
	ReservedOffset = 3
	Sep1Offset     = 6
	LengthOffset   = 7
	Sep2Offset     = 11
	PayloadOffset  = 12

	// HeaderSize is the number of bytes preceding the payload
	HeaderSize = PayloadOffset

	Separator = ':'
)

// Magic identifies a staged image.
var Magic = [3]byte{'F', 'L', 'X'}

// DefaultReserved fills offsets 3-5 when building images.
var DefaultReserved = [3]byte{'I', 'M', 'G'}

// ByteReader reads single bytes from external flash.
type ByteReader interface {
	ReadByteAt(addr uint32) (byte, error)
}

// Header is the raw header as read from flash.
type Header struct {
	// Present is false when offset 0 does not hold the first magic byte;
	// no other field is read in that case
	Present bool

	Magic  [3]byte
	Sep1   byte
	Sep2   byte
	Length uint32
}

// WellFormed reports whether every checked byte position matches.
func (h Header) WellFormed() bool {
	return h.Present && h.Magic == Magic && h.Sep1 == Separator && h.Sep2 == Separator
}

// ReadHeader reads the header. A mismatch at offset 0 stops immediately;
// otherwise every checked offset and the length are read so that a length
// is available even for a corrupt header.
func ReadHeader(r ByteReader) (Header, error) {
	var h Header

	b, err := r.ReadByteAt(MagicOffset)
	if err != nil {
		return h, errors.Wrap(err, "read header")
	}
	h.Magic[0] = b
	if b != Magic[0] {
		return h, nil
	}
	h.Present = true

	for i := 1; i < len(Magic); i++ {
		if h.Magic[i], err = r.ReadByteAt(uint32(MagicOffset + i)); err != nil {
			return h, errors.Wrap(err, "read header")
		}
	}
	if h.Sep1, err = r.ReadByteAt(Sep1Offset); err != nil {
		return h, errors.Wrap(err, "read header")
	}
	if h.Sep2, err = r.ReadByteAt(Sep2Offset); err != nil {
		return h, errors.Wrap(err, "read header")
	}

	for i := 0; i < 4; i++ {
		b, err := r.ReadByteAt(uint32(LengthOffset + i))
		if err != nil {
			return h, errors.Wrap(err, "read header")
		}
		h.Length = h.Length<<8 | uint32(b)
	}

	return h, nil
}

// Kind is the classification of external flash contents.
type Kind int

const (
	// NoImage means nothing was staged; flash is left untouched
	NoImage Kind = iota

	// CorruptImage means a stale or invalid image that must be discarded
	CorruptImage

	// ValidImage means an image that fits both the chip and the application space
	ValidImage
)

func (k Kind) String() string {
	switch k {
	case NoImage:
		return "no image"
	case CorruptImage:
		return "corrupt image"
	case ValidImage:
		return "valid image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the tagged classification result.
type Outcome struct {
	Kind Kind

	// Length is the declared payload length (undefined for NoImage)
	Length uint32

	// Reason explains a CorruptImage outcome
	Reason string
}

func (o Outcome) String() string {
	switch o.Kind {
	case NoImage:
		return o.Kind.String()
	case CorruptImage:
		return fmt.Sprintf("%s (length %d: %s)", o.Kind, o.Length, o.Reason)
	default:
		return fmt.Sprintf("%s (length %d)", o.Kind, o.Length)
	}
}

// Classify decides what to do with a header given the chip capacity and
// the application space of internal flash.
func Classify(h Header, capacity, appSpace uint32) Outcome {
	if !h.Present {
		return Outcome{Kind: NoImage}
	}

	corrupt := func(reason string) Outcome {
		return Outcome{Kind: CorruptImage, Length: h.Length, Reason: reason}
	}

	switch {
	case h.Magic != Magic:
		return corrupt(fmt.Sprintf("bad magic %q", h.Magic[:]))
	case h.Sep1 != Separator || h.Sep2 != Separator:
		return corrupt(fmt.Sprintf("bad separators 0x%02X/0x%02X", h.Sep1, h.Sep2))
	case h.Length == 0:
		return corrupt("zero length")
	case h.Length > capacity:
		return corrupt(fmt.Sprintf("exceeds flash capacity %d", capacity))
	case h.Length > appSpace:
		return corrupt(fmt.Sprintf("exceeds application space %d", appSpace))
	}

	return Outcome{Kind: ValidImage, Length: h.Length}
}
