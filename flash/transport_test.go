package flash

import (
	"errors"
	"strings"
	"testing"

	"github.com/moffa90/go-flxboot/protocol"
	"github.com/moffa90/go-flxboot/sim"
)

var _ Bus = (*sim.Chip)(nil)
var _ Bus = (*PeriphBus)(nil)

// MockBus fails Transfer after a number of successful bytes.
type MockBus struct {
	failAfter int
	transfers int
	selects   int
	deselects int
}

func (m *MockBus) Select() error {
	m.selects++
	return nil
}

func (m *MockBus) Deselect() error {
	m.deselects++
	return nil
}

func (m *MockBus) Transfer(b byte) (byte, error) {
	if m.transfers >= m.failAfter {
		return 0, errors.New("bus fault")
	}
	m.transfers++
	return 0, nil
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

func newChip() *sim.Chip {
	return sim.NewChip(protocol.JEDECID{Manufacturer: 0x1F, Device: 0x4200}, 0x20000)
}

func TestNewPanicsOnNilBus(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil bus")
		}
	}()
	New(nil)
}

func TestWithMaxBusyPolls(t *testing.T) {
	tr := New(newChip(), WithMaxBusyPolls(0))
	if tr.config.MaxBusyPolls != protocol.DefaultMaxBusyPolls {
		t.Errorf("MaxBusyPolls = %d, want default", tr.config.MaxBusyPolls)
	}

	tr = New(newChip(), WithMaxBusyPolls(7))
	if tr.config.MaxBusyPolls != 7 {
		t.Errorf("MaxBusyPolls = %d, want 7", tr.config.MaxBusyPolls)
	}
}

func TestIsBusy(t *testing.T) {
	chip := newChip()
	tr := New(chip)

	busy, err := tr.IsBusy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if busy {
		t.Error("idle chip reported busy")
	}

	chip.StuckBusy = true
	busy, err = tr.IsBusy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !busy {
		t.Error("stuck chip reported ready")
	}
}

func TestReadByteAt(t *testing.T) {
	chip := newChip()
	chip.Program(0, []byte("FLX"))
	tr := New(chip)

	for i, want := range []byte("FLX") {
		got, err := tr.ReadByteAt(uint32(i))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("ReadByteAt(%d) = 0x%02X, want 0x%02X", i, got, want)
		}
	}

	if n := chip.Count(protocol.CmdArrayReadLowFreq); n != 3 {
		t.Errorf("array reads = %d, want 3", n)
	}
	for _, op := range chip.Ops(protocol.CmdArrayReadLowFreq) {
		if op.Bytes != 5 {
			t.Errorf("read transaction clocked %d bytes, want 5", op.Bytes)
		}
	}
}

func TestReadAt(t *testing.T) {
	chip := newChip()
	chip.Program(7, []byte{0x00, 0x00, 0x10, 0x00})
	tr := New(chip)

	buf := make([]byte, 4)
	if err := tr.ReadAt(7, buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf[2] != 0x10 {
		t.Errorf("ReadAt() = % X", buf)
	}
}

func TestCommandWriteIssuesWriteEnable(t *testing.T) {
	chip := newChip()
	tr := New(chip)

	if err := tr.Unprotect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var seq []byte
	for _, op := range chip.Log {
		if op.Opcode != protocol.CmdStatusRead {
			seq = append(seq, op.Opcode)
		}
	}
	want := []byte{protocol.CmdWriteEnable, protocol.CmdStatusWrite}
	if string(seq) != string(want) {
		t.Errorf("command sequence = % X, want % X", seq, want)
	}
	if chip.Protected {
		t.Error("chip still protected after Unprotect")
	}
}

func TestBlockErase32K(t *testing.T) {
	chip := newChip()
	chip.Program(0x8000, []byte{0x12, 0x34})
	chip.BusyPolls = 3
	tr := New(chip)

	if err := tr.Unprotect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.BlockErase32K(0x8000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	erases := chip.Ops(protocol.CmdBlockErase32K)
	if len(erases) != 1 {
		t.Fatalf("erase commands = %d, want 1", len(erases))
	}
	if erases[0].Addr != 0x8000 || erases[0].Ignored {
		t.Errorf("erase op = %+v", erases[0])
	}
	if chip.Mem[0x8000] != 0xFF || chip.Mem[0x8001] != 0xFF {
		t.Error("block not erased")
	}
}

func TestBusyTimeout(t *testing.T) {
	chip := newChip()
	chip.StuckBusy = true
	logger := &MockLogger{}
	tr := New(chip, WithMaxBusyPolls(10), WithLogger(logger))

	_, err := tr.ReadByteAt(0)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}

	var te *protocol.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("error type = %T, want *protocol.TimeoutError", err)
	}
	if te.Attempts != 10 {
		t.Errorf("Attempts = %d, want 10", te.Attempts)
	}
	if n := chip.Count(protocol.CmdStatusRead); n != 10 {
		t.Errorf("status reads = %d, want 10", n)
	}
	if n := chip.Count(protocol.CmdArrayReadLowFreq); n != 0 {
		t.Errorf("array reads = %d, want 0", n)
	}
	if len(logger.errorMsgs) == 0 {
		t.Error("expected timeout to be logged")
	}
}

func TestEraseTimeoutIsWrapped(t *testing.T) {
	chip := newChip()
	chip.StuckBusy = true
	tr := New(chip, WithMaxBusyPolls(3))

	err := tr.BlockErase32K(0)
	if !errors.Is(err, protocol.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if !strings.Contains(err.Error(), "erase block") {
		t.Errorf("error should carry context, got: %v", err)
	}
}

func TestReadJEDECID(t *testing.T) {
	chip := newChip()
	chip.StuckBusy = true
	tr := New(chip, WithMaxBusyPolls(1))

	id, err := tr.ReadJEDECID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Manufacturer != 0x1F || id.Device != 0x4200 {
		t.Errorf("ReadJEDECID() = %v", id)
	}
	if len(chip.Log) != 1 {
		t.Errorf("transactions = %d, want 1 (no status polling)", len(chip.Log))
	}
}

func TestBusErrorsDeselect(t *testing.T) {
	bus := &MockBus{failAfter: 0}
	tr := New(bus)

	if _, err := tr.ReadJEDECID(); err == nil {
		t.Fatal("expected bus error, got nil")
	}
	if bus.selects != bus.deselects {
		t.Errorf("selects = %d, deselects = %d", bus.selects, bus.deselects)
	}

	bus = &MockBus{failAfter: 3}
	tr = New(bus)
	if _, err := tr.ReadByteAt(0); err == nil {
		t.Fatal("expected bus error, got nil")
	}
	if bus.selects != bus.deselects {
		t.Errorf("selects = %d, deselects = %d", bus.selects, bus.deselects)
	}
}
