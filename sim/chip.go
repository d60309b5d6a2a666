// Package sim provides an in-memory serial NOR flash chip for tests and
// host-side simulation of the update path.
package sim

import (
	"github.com/moffa90/go-flxboot/protocol"
)

// Op is one completed chip-select transaction.
type Op struct {
	Opcode byte

	// Addr is the decoded 24-bit address for addressed commands
	Addr uint32

	// Bytes is the number of bytes clocked while selected, opcode included
	Bytes int

	// Ignored is set when the chip dropped the command (busy, latch clear or protected)
	Ignored bool
}

// Chip simulates a JEDEC-compatible serial NOR flash.
//
// The zero value is not usable; create chips with NewChip.
type Chip struct {
	// ID is returned by the JEDEC ID query
	ID protocol.JEDECID

	// Mem is the array contents; erased bytes read 0xFF
	Mem []byte

	// BusyPolls is how many status reads report busy after an erase or status write
	BusyPolls int

	// StuckBusy makes every status read report busy
	StuckBusy bool

	// Protected mirrors the block protect bits; erase is ignored while set
	Protected bool

	// Log records every completed transaction in order
	Log []Op

	selected bool
	frame    []byte
	wel      bool
	busyLeft int
}

// NewChip creates an erased chip of the given capacity, block protected
// as most parts ship.
func NewChip(id protocol.JEDECID, capacity int) *Chip {
	mem := make([]byte, capacity)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Chip{
		ID:        id,
		Mem:       mem,
		Protected: true,
	}
}

// Program copies data into the array at addr, bypassing the command set.
func (c *Chip) Program(addr uint32, data []byte) {
	copy(c.Mem[addr:], data)
}

// Select asserts chip select.
func (c *Chip) Select() error {
	c.selected = true
	c.frame = c.frame[:0]
	return nil
}

// Deselect releases chip select and completes the pending command.
func (c *Chip) Deselect() error {
	if c.selected && len(c.frame) > 0 {
		c.complete()
	}
	c.selected = false
	c.frame = c.frame[:0]
	return nil
}

// Transfer clocks one byte in and returns the byte driven out.
func (c *Chip) Transfer(b byte) (byte, error) {
	if !c.selected {
		return 0xFF, nil
	}

	c.frame = append(c.frame, b)
	idx := len(c.frame) - 1
	if idx == 0 {
		return 0xFF, nil
	}

	switch c.frame[0] {
	case protocol.CmdStatusRead:
		return c.status(), nil
	case protocol.CmdJEDECID:
		switch idx {
		case 1:
			return c.ID.Manufacturer, nil
		case 2:
			return byte(c.ID.Device >> 8), nil
		case 3:
			return byte(c.ID.Device), nil
		}
	case protocol.CmdArrayReadLowFreq:
		if idx > protocol.AddressBytes && !c.isBusy() {
			addr, _ := protocol.DecodeAddress(c.frame[1 : 1+protocol.AddressBytes])
			return c.Mem[c.wrap(addr+uint32(idx-protocol.AddressBytes-1))], nil
		}
	}
	return 0xFF, nil
}

func (c *Chip) isBusy() bool {
	return c.StuckBusy || c.busyLeft > 0
}

// status returns the status register and advances the busy countdown.
func (c *Chip) status() byte {
	var s byte
	if c.isBusy() {
		s |= protocol.StatusBusy
	}
	if c.wel {
		s |= protocol.StatusWriteEnabled
	}
	if c.Protected {
		s |= 0x0C
	}
	if c.busyLeft > 0 {
		c.busyLeft--
	}
	return s
}

func (c *Chip) wrap(addr uint32) int {
	return int(addr&protocol.AddressMask) % len(c.Mem)
}

func (c *Chip) complete() {
	op := Op{Opcode: c.frame[0], Bytes: len(c.frame)}
	if len(c.frame) > protocol.AddressBytes {
		op.Addr, _ = protocol.DecodeAddress(c.frame[1 : 1+protocol.AddressBytes])
	}

	busy := c.isBusy()
	switch op.Opcode {
	case protocol.CmdStatusRead, protocol.CmdJEDECID:
	case protocol.CmdWriteEnable:
		if busy {
			op.Ignored = true
			break
		}
		c.wel = true
	case protocol.CmdStatusWrite:
		if busy || !c.wel || len(c.frame) < 2 {
			op.Ignored = true
			break
		}
		c.Protected = c.frame[1]&0x0C != 0
		c.wel = false
		c.busyLeft = c.BusyPolls
	case protocol.CmdBlockErase32K:
		if busy || !c.wel || c.Protected || len(c.frame) < 1+protocol.AddressBytes {
			op.Ignored = true
			c.wel = false
			break
		}
		start := c.wrap(op.Addr) &^ (protocol.BlockSize32K - 1)
		end := start + protocol.BlockSize32K
		if end > len(c.Mem) {
			end = len(c.Mem)
		}
		for i := start; i < end; i++ {
			c.Mem[i] = 0xFF
		}
		c.wel = false
		c.busyLeft = c.BusyPolls
	case protocol.CmdArrayReadLowFreq:
		op.Ignored = busy
	default:
		op.Ignored = true
	}

	c.Log = append(c.Log, op)
}

// Ops returns the logged transactions with the given opcode.
func (c *Chip) Ops(opcode byte) []Op {
	var out []Op
	for _, op := range c.Log {
		if op.Opcode == opcode {
			out = append(out, op)
		}
	}
	return out
}

// Count returns how many transactions used the given opcode.
func (c *Chip) Count(opcode byte) int {
	return len(c.Ops(opcode))
}

// ReadAddrs returns the address of every array read, in order.
func (c *Chip) ReadAddrs() []uint32 {
	var out []uint32
	for _, op := range c.Ops(protocol.CmdArrayReadLowFreq) {
		out = append(out, op.Addr)
	}
	return out
}

// ResetLog clears the transaction log.
func (c *Chip) ResetLog() {
	c.Log = nil
}
