package bootloader

import (
	"bytes"
	"context"
	"testing"

	"github.com/moffa90/go-flxboot/flash"
	"github.com/moffa90/go-flxboot/image"
	"github.com/moffa90/go-flxboot/nvm"
	"github.com/moffa90/go-flxboot/protocol"
	"github.com/moffa90/go-flxboot/sim"
)

var (
	idAT25XE011  = protocol.JEDECID{Manufacturer: protocol.ManufacturerAdesto, Device: protocol.DeviceAT25XE011}
	idAT25DF041B = protocol.JEDECID{Manufacturer: protocol.ManufacturerAdesto, Device: protocol.DeviceAT25DF041B}
)

// testRegion leaves 0x34000 bytes of application space with 64 byte pages.
var testRegion = nvm.Region{
	TotalSize:  0x40000,
	BootSize:   0x8000,
	EEPROMSize: 0x4000,
	PageSize:   64,
}

// fixture is a simulated board: external chip plus internal flash.
type fixture struct {
	chip *sim.Chip
	mem  *nvm.Memory
	t    *flash.Transport
	ctrl *nvm.Controller
}

func newFixture(id protocol.JEDECID, capacity int, ext []byte) *fixture {
	chip := sim.NewChip(id, capacity)
	chip.Program(0, ext)
	chip.BusyPolls = 2

	mem := nvm.NewMemory(testRegion)
	mem.BusyCycles = 1

	return &fixture{
		chip: chip,
		mem:  mem,
		t:    flash.New(chip, flash.WithMaxBusyPolls(50)),
		ctrl: nvm.NewController(mem, testRegion, nvm.WithMaxReadyPolls(50)),
	}
}

// appWrites returns the logged writes that landed in the application space.
func (f *fixture) appWrites() []nvm.MemOp {
	var out []nvm.MemOp
	for _, op := range f.mem.Writes() {
		if op.Addr >= testRegion.AppStart() {
			out = append(out, op)
		}
	}
	return out
}

// checkEraseBeforeWrite asserts every write is immediately preceded by an erase of the same page.
func (f *fixture) checkEraseBeforeWrite(t *testing.T) {
	t.Helper()
	for i, op := range f.mem.Log {
		if op.Kind != nvm.OpWrite {
			continue
		}
		page := op.Addr - op.Addr%testRegion.PageSize
		if i == 0 || f.mem.Log[i-1].Kind != nvm.OpErase || f.mem.Log[i-1].Addr != page {
			t.Errorf("write at 0x%08X (log %d) not immediately preceded by erase of its page", op.Addr, i)
		}
	}
}

func staged(payload []byte) []byte {
	return image.Build(payload, image.DefaultReserved)
}

// rawHeader builds a 12 byte header with arbitrary magic and length.
func rawHeader(magic string, length uint32) []byte {
	b := staged(nil)
	copy(b, magic)
	b[7] = byte(length >> 24)
	b[8] = byte(length >> 16)
	b[9] = byte(length >> 8)
	b[10] = byte(length)
	return b
}

// MockPlatform records the calls made by the Sequencer.
type MockPlatform struct {
	cause      ResetCause
	initErr    error
	consoleErr error

	calls    []string
	launched []Entry
}

func (m *MockPlatform) ResetCause() ResetCause {
	return m.cause
}

func (m *MockPlatform) InitHardware() error {
	m.calls = append(m.calls, "init")
	return m.initErr
}

func (m *MockPlatform) EnterConsole(ctx context.Context) error {
	m.calls = append(m.calls, "console")
	return m.consoleErr
}

func (m *MockPlatform) Release() {
	m.calls = append(m.calls, "release")
}

func (m *MockPlatform) TransferControl(entry Entry) {
	m.calls = append(m.calls, "transfer")
	m.launched = append(m.launched, entry)
}

func (m *MockPlatform) called(name string) bool {
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

// MockLogger records messages for testing.
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

func internal(f *fixture, addr uint32, n int) []byte {
	return f.mem.Data[addr : addr+uint32(n)]
}

func repeat(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}
