package flash

import (
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/protocol"
)

// Transport implements the flash command protocol on top of a Bus.
//
// Transport is not safe for concurrent use; it assumes exclusive
// ownership of the bus for its lifetime.
type Transport struct {
	bus    Bus
	config Config
}

// New creates a Transport for the given bus.
//
// Example:
//
//	t := flash.New(bus, flash.WithMaxBusyPolls(1000))
func New(bus Bus, opts ...Option) *Transport {
	if bus == nil {
		panic("bus cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Transport{
		bus:    bus,
		config: cfg,
	}
}

// IsBusy selects the device, reads the status register and deselects.
func (t *Transport) IsBusy() (bool, error) {
	if err := t.bus.Select(); err != nil {
		return false, errors.Wrap(err, "select")
	}

	if _, err := t.bus.Transfer(protocol.CmdStatusRead); err != nil {
		_ = t.bus.Deselect()
		return false, errors.Wrap(err, "status read")
	}

	status, err := t.bus.Transfer(protocol.DummyByte)
	if err != nil {
		_ = t.bus.Deselect()
		return false, errors.Wrap(err, "status read")
	}

	if err := t.bus.Deselect(); err != nil {
		return false, errors.Wrap(err, "deselect")
	}

	return protocol.ParseStatus(status).Busy(), nil
}

// waitReady polls the status register until the busy bit clears.
func (t *Transport) waitReady(opcode byte) error {
	for i := 0; i < t.config.MaxBusyPolls; i++ {
		busy, err := t.IsBusy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		if t.config.PollInterval > 0 {
			time.Sleep(t.config.PollInterval)
		}
	}

	t.logError("flash busy timeout",
		"opcode", protocol.OpcodeName(opcode),
		"polls", t.config.MaxBusyPolls,
	)

	return &protocol.TimeoutError{
		Operation: protocol.OpcodeName(opcode),
		Attempts:  t.config.MaxBusyPolls,
	}
}

// Command issues opcode and leaves the device selected so the caller can
// clock the rest of the transaction. When write is true a write enable
// is issued first. The caller must Deselect once done.
func (t *Transport) Command(opcode byte, write bool) error {
	if write {
		if err := t.Command(protocol.CmdWriteEnable, false); err != nil {
			return err
		}
		if err := t.bus.Deselect(); err != nil {
			return errors.Wrap(err, "deselect")
		}
	}

	if err := t.waitReady(opcode); err != nil {
		return err
	}

	if err := t.bus.Select(); err != nil {
		return errors.Wrap(err, "select")
	}

	if _, err := t.bus.Transfer(opcode); err != nil {
		_ = t.bus.Deselect()
		return errors.Wrapf(err, "send %s", protocol.OpcodeName(opcode))
	}

	return nil
}

// Deselect releases chip select after Command.
func (t *Transport) Deselect() error {
	return t.bus.Deselect()
}

// sendAddress clocks out a 24-bit big-endian address.
func (t *Transport) sendAddress(addr uint32) error {
	for _, b := range protocol.EncodeAddress(addr) {
		if _, err := t.bus.Transfer(b); err != nil {
			return errors.Wrap(err, "send address")
		}
	}
	return nil
}

// ReadByteAt reads a single byte from the array with the low-frequency read opcode.
func (t *Transport) ReadByteAt(addr uint32) (byte, error) {
	if err := t.Command(protocol.CmdArrayReadLowFreq, false); err != nil {
		return 0, err
	}

	if err := t.sendAddress(addr); err != nil {
		_ = t.bus.Deselect()
		return 0, err
	}

	b, err := t.bus.Transfer(protocol.DummyByte)
	if err != nil {
		_ = t.bus.Deselect()
		return 0, errors.Wrapf(err, "read 0x%06X", addr)
	}

	if err := t.bus.Deselect(); err != nil {
		return 0, errors.Wrap(err, "deselect")
	}

	return b, nil
}

// ReadAt fills p from consecutive addresses starting at addr, one byte per transaction.
func (t *Transport) ReadAt(addr uint32, p []byte) error {
	for i := range p {
		b, err := t.ReadByteAt(addr + uint32(i))
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}

// Unprotect writes zero to the status register, clearing all block
// protection bits. Required before any erase or program.
func (t *Transport) Unprotect() error {
	if err := t.Command(protocol.CmdStatusWrite, true); err != nil {
		return errors.Wrap(err, "global unprotect")
	}

	if _, err := t.bus.Transfer(0); err != nil {
		_ = t.bus.Deselect()
		return errors.Wrap(err, "global unprotect")
	}

	return t.bus.Deselect()
}

// BlockErase32K erases the 32 KiB block containing addr.
func (t *Transport) BlockErase32K(addr uint32) error {
	if err := t.Command(protocol.CmdBlockErase32K, true); err != nil {
		return errors.Wrapf(err, "erase block 0x%06X", addr)
	}

	if err := t.sendAddress(addr); err != nil {
		_ = t.bus.Deselect()
		return err
	}

	t.logDebug("block erase issued", "addr", addr)

	return t.bus.Deselect()
}

// ReadJEDECID queries the manufacturer and device IDs.
// No status polling is performed before the query.
func (t *Transport) ReadJEDECID() (protocol.JEDECID, error) {
	if err := t.bus.Select(); err != nil {
		return protocol.JEDECID{}, errors.Wrap(err, "select")
	}

	if _, err := t.bus.Transfer(protocol.CmdJEDECID); err != nil {
		_ = t.bus.Deselect()
		return protocol.JEDECID{}, errors.Wrap(err, "jedec id")
	}

	resp := make([]byte, protocol.JEDECIDResponseSize)
	for i := range resp {
		b, err := t.bus.Transfer(protocol.DummyByte)
		if err != nil {
			_ = t.bus.Deselect()
			return protocol.JEDECID{}, errors.Wrap(err, "jedec id")
		}
		resp[i] = b
	}

	if err := t.bus.Deselect(); err != nil {
		return protocol.JEDECID{}, errors.Wrap(err, "deselect")
	}

	return protocol.ParseJEDECID(resp)
}

// logDebug logs a debug message if a logger is configured.
func (t *Transport) logDebug(msg string, keysAndValues ...interface{}) {
	if t.config.Logger != nil {
		t.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (t *Transport) logError(msg string, keysAndValues ...interface{}) {
	if t.config.Logger != nil {
		t.config.Logger.Error(msg, keysAndValues...)
	}
}
