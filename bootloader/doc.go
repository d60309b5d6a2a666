// Package bootloader implements the field-update path of the bootloader:
// it finds a firmware image staged in external serial flash, validates it,
// copies it into internal program memory and launches the application.
//
// # Overview
//
// Sequencer.Boot runs once per reset:
//   - Persist the reset cause at nvm.ResetFlagAddr
//   - Bring up the hardware
//   - Identify the external flash; unknown chips end the update
//   - Validate the staged image header (no image, corrupt, valid)
//   - Program a valid image page by page into the application space
//   - Erase the consumed or corrupt region of external flash
//   - Enter the serial console unless the reset came from the watchdog
//   - Transfer control to the application
//
// # Basic Usage
//
//	t := flash.New(bus, flash.WithMaxBusyPolls(100000))
//	ctrl := nvm.NewController(dev, nvm.ByName("samd21g18").Region)
//
//	seq := bootloader.NewSequencer(platform, t, ctrl,
//	    bootloader.WithLogger(logger),
//	    bootloader.WithDiagnostics(console),
//	)
//	report, err := seq.Boot(context.Background())
//
// On hardware Boot does not return: Platform.TransferControl jumps into the
// application. Under simulation it returns a Report describing the boot.
//
// # Error Handling
//
// Classification outcomes never surface as errors; they only decide
// whether programming and erasing run. Errors that abort the update:
//   - protocol.TimeoutError: a flash busy poll exceeded its bound
//   - AllocationError: the page buffer could not be obtained
//   - OutOfRangeError: a write would leave the application space
//   - VerificationError: read-back mismatch (WithVerifyAfterProgram only)
//
// After an aborted update the application is still launched. A failure in
// the middle of programming leaves internal flash partially written and
// the staged image in place, so the next boot retries the copy.
//
// # Trailing Pages
//
// When the payload length is not a multiple of the page size the final
// partial page is padded with PadByte (0xFF) and written. WithPadTrailingPage(false)
// drops it instead and records the dropped byte count in Result.
package bootloader
