package image

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// recordingReader serves bytes from memory and records every address read.
type recordingReader struct {
	data  []byte
	addrs []uint32
	err   error
}

func (r *recordingReader) ReadByteAt(addr uint32) (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.addrs = append(r.addrs, addr)
	if int(addr) >= len(r.data) {
		return 0xFF, nil
	}
	return r.data[addr], nil
}

func header(magic string, sep1 byte, length uint32, sep2 byte) []byte {
	b := make([]byte, HeaderSize)
	copy(b, magic)
	copy(b[ReservedOffset:], "IMG")
	b[Sep1Offset] = sep1
	b[LengthOffset] = byte(length >> 24)
	b[LengthOffset+1] = byte(length >> 16)
	b[LengthOffset+2] = byte(length >> 8)
	b[LengthOffset+3] = byte(length)
	b[Sep2Offset] = sep2
	return b
}

func TestReadHeader(t *testing.T) {
	r := &recordingReader{data: header("FLX", ':', 0x1000, ':')}

	h, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.WellFormed() {
		t.Errorf("header not well formed: %+v", h)
	}
	if h.Length != 0x1000 {
		t.Errorf("Length = 0x%X, want 0x1000", h.Length)
	}

	want := []uint32{0, 1, 2, 6, 11, 7, 8, 9, 10}
	if len(r.addrs) != len(want) {
		t.Fatalf("read addresses = %v, want %v", r.addrs, want)
	}
	for i := range want {
		if r.addrs[i] != want[i] {
			t.Errorf("read[%d] = %d, want %d", i, r.addrs[i], want[i])
		}
	}
}

func TestReadHeaderStopsAtFirstByte(t *testing.T) {
	for _, first := range []byte{0xFF, 0x00, 'f', 'X'} {
		data := header("FLX", ':', 0x10, ':')
		data[0] = first
		r := &recordingReader{data: data}

		h, err := ReadHeader(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Present {
			t.Errorf("first byte 0x%02X: header reported present", first)
		}
		if len(r.addrs) != 1 || r.addrs[0] != 0 {
			t.Errorf("first byte 0x%02X: reads = %v, want [0]", first, r.addrs)
		}
	}
}

func TestReadHeaderScansPastCorruption(t *testing.T) {
	r := &recordingReader{data: header("FQX", ';', 0x9000, ':')}

	h, err := ReadHeader(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.WellFormed() {
		t.Error("corrupt header reported well formed")
	}
	if h.Length != 0x9000 {
		t.Errorf("Length = 0x%X, want 0x9000", h.Length)
	}
	if len(r.addrs) != 9 {
		t.Errorf("reads = %d, want full scan of 9", len(r.addrs))
	}
}

func TestReadHeaderError(t *testing.T) {
	r := &recordingReader{err: errors.New("bus fault")}
	if _, err := ReadHeader(r); err == nil || !strings.Contains(err.Error(), "read header") {
		t.Errorf("error = %v, want wrapped read header error", err)
	}
}

func TestClassify(t *testing.T) {
	const (
		capacity = 0x20000
		appSpace = 0x18000
	)

	tests := []struct {
		name   string
		data   []byte
		want   Kind
		length uint32
	}{
		{"erased flash", bytes.Repeat([]byte{0xFF}, HeaderSize), NoImage, 0},
		{"valid", header("FLX", ':', 0x1000, ':'), ValidImage, 0x1000},
		{"one byte", header("FLX", ':', 1, ':'), ValidImage, 1},
		{"fills app space", header("FLX", ':', appSpace, ':'), ValidImage, appSpace},
		{"bad second magic", header("FQX", ':', 0x1000, ':'), CorruptImage, 0x1000},
		{"bad third magic", header("FLY", ':', 0x1000, ':'), CorruptImage, 0x1000},
		{"bad first separator", header("FLX", '-', 0x1000, ':'), CorruptImage, 0x1000},
		{"bad second separator", header("FLX", ':', 0x1000, 0xFF), CorruptImage, 0x1000},
		{"zero length", header("FLX", ':', 0, ':'), CorruptImage, 0},
		{"exceeds app space", header("FLX", ':', appSpace+1, ':'), CorruptImage, appSpace + 1},
		{"exceeds capacity", header("FLX", ':', capacity+1, ':'), CorruptImage, capacity + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(NewSliceReader(tt.data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := Classify(h, capacity, appSpace)
			if got.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v (%s)", got.Kind, tt.want, got)
			}
			if tt.want != NoImage && got.Length != tt.length {
				t.Errorf("Length = 0x%X, want 0x%X", got.Length, tt.length)
			}
			if tt.want == CorruptImage && got.Reason == "" {
				t.Error("corrupt outcome should carry a reason")
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Outcome{Kind: NoImage}, "no image"},
		{Outcome{Kind: ValidImage, Length: 4096}, "valid image (length 4096)"},
		{Outcome{Kind: CorruptImage, Length: 0, Reason: "zero length"}, "corrupt image (length 0: zero length)"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
