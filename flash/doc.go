// Package flash drives a serial NOR flash chip over a chip-select-gated bus.
//
// # Overview
//
// The package is split into two layers:
//   - Bus: the hardware capability (assert/release chip select, clock one byte)
//   - Transport: the command protocol on top of a Bus (status polling,
//     write enable, array read, block erase, JEDEC identification)
//
// Every Transport operation is synchronous. Status polling is bounded by
// MaxBusyPolls; a chip that never reports ready yields *protocol.TimeoutError
// instead of blocking forever.
//
// # Basic Usage
//
//	bus, closer, err := flash.OpenPeriph("", "GPIO8", 8*physic.MegaHertz)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer closer.Close()
//
//	t := flash.New(bus, flash.WithMaxBusyPolls(50000))
//	dev, err := flash.Identify(t)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !dev.Known() {
//	    return // leave the chip alone
//	}
//
// # Hardware Independence
//
// Any type implementing Bus can be used. PeriphBus covers Linux spidev and
// FTDI MPSSE adapters through periph.io; package sim provides an in-memory
// chip for tests.
package flash
