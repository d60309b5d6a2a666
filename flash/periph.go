package flash

import (
	"io"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// PeriphBus is a Bus over a periph.io SPI connection with a GPIO chip
// select driven in software (active low).
type PeriphBus struct {
	conn spi.Conn
	cs   gpio.PinOut
	w    [1]byte
	r    [1]byte
}

// NewPeriphBus wraps an already connected SPI conn and chip-select pin.
// The pin is driven high (deselected).
func NewPeriphBus(conn spi.Conn, cs gpio.PinOut) (*PeriphBus, error) {
	if err := cs.Out(gpio.High); err != nil {
		return nil, errors.Wrapf(err, "init chip select %s", cs)
	}
	return &PeriphBus{conn: conn, cs: cs}, nil
}

// Select drives chip select low.
func (b *PeriphBus) Select() error {
	return b.cs.Out(gpio.Low)
}

// Deselect drives chip select high.
func (b *PeriphBus) Deselect() error {
	return b.cs.Out(gpio.High)
}

// Transfer clocks one byte full duplex.
func (b *PeriphBus) Transfer(v byte) (byte, error) {
	b.w[0] = v
	if err := b.conn.Tx(b.w[:], b.r[:]); err != nil {
		return 0, err
	}
	return b.r[0], nil
}

// Connect opens an SPI connection in mode 0, 8 bits per word, and wraps it
// with cs as a PeriphBus.
func Connect(port spi.Port, cs gpio.PinOut, freq physic.Frequency) (*PeriphBus, error) {
	conn, err := port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		return nil, errors.Wrap(err, "spi connect")
	}
	return NewPeriphBus(conn, cs)
}

// OpenPeriph opens a registered SPI port (spidev on Linux; "" selects the
// first one) and a registered GPIO used as chip select. host.Init must have
// been called. The returned closer releases the SPI port.
func OpenPeriph(portName, csName string, freq physic.Frequency) (*PeriphBus, io.Closer, error) {
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open spi port %q", portName)
	}

	cs := gpioreg.ByName(csName)
	if cs == nil {
		_ = port.Close()
		return nil, nil, errors.Errorf("chip select pin %q not found", csName)
	}

	bus, err := Connect(port, cs, freq)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}

	return bus, port, nil
}
