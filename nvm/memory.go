package nvm

import "fmt"

// OpKind distinguishes logged Memory operations.
type OpKind int

const (
	OpErase OpKind = iota
	OpWrite
)

func (k OpKind) String() string {
	switch k {
	case OpErase:
		return "erase"
	case OpWrite:
		return "write"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// MemOp is one logged erase or write.
type MemOp struct {
	Kind OpKind
	Addr uint32
	Len  int
}

// Memory is an in-memory Device. Rows are one page long; erased bytes read 0xFF.
type Memory struct {
	Data     []byte
	PageSize uint32

	// BusyCycles is how many Ready calls report false after each operation
	BusyCycles int

	// Stuck makes Ready always report false
	Stuck bool

	// Log records every erase and write in order
	Log []MemOp

	busy int
}

// NewMemory creates an erased Memory sized for region.
func NewMemory(region Region) *Memory {
	data := make([]byte, region.TotalSize)
	for i := range data {
		data[i] = 0xFF
	}
	return &Memory{Data: data, PageSize: region.PageSize}
}

// Ready reports whether the last operation has completed.
func (m *Memory) Ready() bool {
	if m.Stuck {
		return false
	}
	if m.busy > 0 {
		m.busy--
		return false
	}
	return true
}

// EraseRow sets the page containing addr to 0xFF.
func (m *Memory) EraseRow(addr uint32) error {
	start := addr - addr%m.PageSize
	if uint64(start)+uint64(m.PageSize) > uint64(len(m.Data)) {
		return fmt.Errorf("erase address 0x%08X out of range", addr)
	}
	for i := start; i < start+m.PageSize; i++ {
		m.Data[i] = 0xFF
	}
	m.Log = append(m.Log, MemOp{Kind: OpErase, Addr: start, Len: int(m.PageSize)})
	m.busy = m.BusyCycles
	return nil
}

// Write programs data at addr. Like NOR flash, programming can only clear bits.
func (m *Memory) Write(addr uint32, data []byte) error {
	if uint64(addr)+uint64(len(data)) > uint64(len(m.Data)) {
		return fmt.Errorf("write 0x%08X+%d out of range", addr, len(data))
	}
	for i, b := range data {
		m.Data[int(addr)+i] &= b
	}
	m.Log = append(m.Log, MemOp{Kind: OpWrite, Addr: addr, Len: len(data)})
	m.busy = m.BusyCycles
	return nil
}

// Read copies contents at addr into p.
func (m *Memory) Read(addr uint32, p []byte) error {
	if uint64(addr)+uint64(len(p)) > uint64(len(m.Data)) {
		return fmt.Errorf("read 0x%08X+%d out of range", addr, len(p))
	}
	copy(p, m.Data[addr:])
	return nil
}

// Writes returns the logged writes.
func (m *Memory) Writes() []MemOp {
	var out []MemOp
	for _, op := range m.Log {
		if op.Kind == OpWrite {
			out = append(out, op)
		}
	}
	return out
}
