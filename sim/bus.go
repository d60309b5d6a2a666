package sim

import (
	"fmt"
	"io"
	"time"
)

// Bus is the chip-select gated byte transport a Chip implements.
// It mirrors flash.Bus; sim cannot import flash because flash's own tests import sim.
type Bus interface {
	Select() error
	Deselect() error
	Transfer(b byte) (byte, error)
}

// SlowBus delays every transferred byte, approximating a real SPI clock.
type SlowBus struct {
	Bus
	PerByte time.Duration
}

// NewSlowBus wraps b so each Transfer takes at least perByte.
func NewSlowBus(b Bus, perByte time.Duration) *SlowBus {
	return &SlowBus{Bus: b, PerByte: perByte}
}

func (s *SlowBus) Transfer(b byte) (byte, error) {
	time.Sleep(s.PerByte)
	return s.Bus.Transfer(b)
}

// TraceBus writes one line per chip-select transaction: the bytes sent
// and the bytes received.
type TraceBus struct {
	Bus
	W io.Writer

	out, in []byte
}

func (t *TraceBus) Select() error {
	t.out, t.in = t.out[:0], t.in[:0]
	return t.Bus.Select()
}

func (t *TraceBus) Transfer(b byte) (byte, error) {
	r, err := t.Bus.Transfer(b)
	t.out = append(t.out, b)
	t.in = append(t.in, r)
	return r, err
}

func (t *TraceBus) Deselect() error {
	if len(t.out) > 0 {
		fmt.Fprintf(t.W, "> % X\n< % X\n", t.out, t.in)
	}
	t.out, t.in = t.out[:0], t.in[:0]
	return t.Bus.Deselect()
}
