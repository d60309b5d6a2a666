package image

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAA}, 0x1000)
	b := Build(payload, DefaultReserved)

	wantHeader := []byte{'F', 'L', 'X', 'I', 'M', 'G', ':', 0x00, 0x00, 0x10, 0x00, ':'}
	if !bytes.Equal(b[:HeaderSize], wantHeader) {
		t.Errorf("header = % X, want % X", b[:HeaderSize], wantHeader)
	}
	if !bytes.Equal(b[PayloadOffset:], payload) {
		t.Error("payload not copied verbatim")
	}
}

func TestParse(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	good := Build(payload, [3]byte{'A', 'B', 'C'})

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{name: "valid", data: good},
		{name: "trailing bytes", data: append(append([]byte{}, good...), 0xFF, 0xFF)},
		{name: "short", data: good[:5], wantErr: "too short"},
		{name: "truncated", data: good[:len(good)-1], wantErr: "truncated payload"},
		{name: "bad magic", data: append([]byte("FLY"), good[3:]...), wantErr: "malformed header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.data)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(c.Payload, payload) {
				t.Errorf("Payload = % X", c.Payload)
			}
			if c.Reserved != [3]byte{'A', 'B', 'C'} {
				t.Errorf("Reserved = %q", c.Reserved[:])
			}
		})
	}
}

func TestReadContainerReaderError(t *testing.T) {
	r := &recordingReader{data: Build([]byte{1, 2, 3}, DefaultReserved), err: errors.New("bus fault")}

	_, err := ReadContainer(r, uint32(len(r.data)))
	if err == nil || !strings.Contains(err.Error(), "bus fault") {
		t.Fatalf("error = %v, want the reader failure", err)
	}
}

func TestReadContainerFromReader(t *testing.T) {
	b := Build([]byte{0x10, 0x20}, DefaultReserved)
	r := &recordingReader{data: b}

	c, err := ReadContainer(r, uint32(len(b)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(c.Payload, []byte{0x10, 0x20}) || c.Reserved != DefaultReserved {
		t.Errorf("container = %+v", c)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.flx")
	if err := os.WriteFile(path, Build([]byte{0x42}, DefaultReserved), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Header.Length != 1 {
		t.Errorf("Length = %d, want 1", c.Header.Length)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.flx")); err == nil {
		t.Error("expected error for missing file")
	}
}
