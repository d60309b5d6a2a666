package nvm

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestRegionAppSpace(t *testing.T) {
	r := Region{TotalSize: 0x40000, BootSize: 0x8000, EEPROMSize: 0x4000, PageSize: 64}

	if got := r.AppSpace(); got != 0x34000 {
		t.Errorf("AppSpace() = 0x%X, want 0x34000", got)
	}
	if r.AppStart() != 0x8000 || r.AppEnd() != 0x3C000 {
		t.Errorf("app range = [0x%X, 0x%X)", r.AppStart(), r.AppEnd())
	}
	if !r.Contains(0x8000, 0x34000) {
		t.Error("whole application space should be contained")
	}
	if r.Contains(0x7FC0, 64) {
		t.Error("bootloader page must not be contained")
	}
	if r.Contains(0x3BFC0, 128) {
		t.Error("eeprom must not be contained")
	}
}

func TestRegionValidate(t *testing.T) {
	tests := []struct {
		name    string
		region  Region
		wantErr string
	}{
		{
			name:   "valid",
			region: Region{TotalSize: 0x40000, BootSize: 0x8000, EEPROMSize: 0x4000, PageSize: 64},
		},
		{
			name:    "zero page size",
			region:  Region{TotalSize: 0x40000, BootSize: 0x8000},
			wantErr: "page size",
		},
		{
			name:    "negative app space",
			region:  Region{TotalSize: 0x8000, BootSize: 0x8000, EEPROMSize: 0x100, PageSize: 64},
			wantErr: "exceeds total size",
		},
		{
			name:    "unaligned boot",
			region:  Region{TotalSize: 0x40000, BootSize: 0x8010, PageSize: 64},
			wantErr: "boot size",
		},
		{
			name:    "unaligned app space",
			region:  Region{TotalSize: 0x40000, BootSize: 0x8000, EEPROMSize: 0x10, PageSize: 64},
			wantErr: "application space",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
			if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
				t.Errorf("error %T carries no stack trace", err)
			}
		})
	}

	bad := Region{TotalSize: 0x100, BootSize: 0x200, PageSize: 64}
	if bad.AppSpace() != 0 {
		t.Errorf("inconsistent region AppSpace() = 0x%X, want 0", bad.AppSpace())
	}
}

func TestTargets(t *testing.T) {
	for _, name := range Names() {
		tg := ByName(name)
		if tg == nil {
			t.Fatalf("ByName(%q) = nil", name)
		}
		if err := tg.Region.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	if ByName("SAMD21G18") == nil {
		t.Error("lookup should be case-insensitive")
	}
	if ByName("nope") != nil {
		t.Error("unknown target should be nil")
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate registration should panic")
		}
	}()
	Register(&Target{Name: "samd21g18", Region: Region{TotalSize: 0x100, PageSize: 64}})
}
