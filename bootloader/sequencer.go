package bootloader

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/moffa90/go-flxboot/flash"
	"github.com/moffa90/go-flxboot/image"
	"github.com/moffa90/go-flxboot/nvm"
)

// Report describes what one boot did.
type Report struct {
	ResetCause ResetCause

	// Device is the identified external flash (zero if identification failed)
	Device flash.Device

	// Outcome is the image classification; meaningless when Device is unknown
	Outcome image.Outcome

	// Program is the programming result, nil when nothing was programmed
	Program *Result

	// BlocksErased is the number of 32 KiB external erases issued
	BlocksErased int

	// ConsoleEntered reports whether the console ran
	ConsoleEntered bool

	// Entry is the launch point handed to the platform
	Entry Entry

	// Err is the fatal error that aborted the update, if any
	Err error
}

// Sequencer runs the boot sequence:
//
//	PersistResetFlag -> InitHardware -> IdentifyDevice -> ValidateImage
//	  -> Program (valid) -> EraseExternal (valid or corrupt)
//	  -> EnterConsole (unless watchdog reset) -> LaunchApplication
//
// It runs once per boot and is not safe for concurrent use.
type Sequencer struct {
	platform Platform
	flash    *flash.Transport
	nvm      *nvm.Controller
	config   Config
	opts     []Option
}

// NewSequencer creates a Sequencer. The options are also passed to the Programmer.
func NewSequencer(platform Platform, t *flash.Transport, ctrl *nvm.Controller, opts ...Option) *Sequencer {
	if platform == nil {
		panic("platform cannot be nil")
	}
	if t == nil {
		panic("flash transport cannot be nil")
	}
	if ctrl == nil {
		panic("nvm controller cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Sequencer{
		platform: platform,
		flash:    t,
		nvm:      ctrl,
		config:   cfg,
		opts:     opts,
	}
}

// Boot runs the full sequence and finally transfers control to the
// application. On hardware Boot never returns. Under simulation it returns
// the report once the platform's TransferControl returns.
//
// Unknown devices, absent images and corrupt images are normal outcomes.
// Flash timeouts and allocation failures abort the update, are reported on
// the diagnostics writer and returned, and the application is launched anyway.
func (s *Sequencer) Boot(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	report := &Report{ResetCause: s.platform.ResetCause()}

	report.Err = s.prepare(report)
	if report.Err == nil {
		report.Err = s.update(report)
	}
	if report.Err != nil {
		s.diagnose(report.Err)
	}

	if report.ResetCause != ResetWatchdog {
		report.ConsoleEntered = true
		if err := s.platform.EnterConsole(ctx); err != nil {
			s.config.logError("console exited with error", "error", err)
		}
	}

	s.config.reportProgress(Progress{
		Phase:       PhaseLaunching,
		Percentage:  100,
		ElapsedTime: time.Since(startTime),
	})

	entry, err := ReadEntry(s.nvm)
	if err != nil {
		s.diagnose(err)
		if report.Err == nil {
			report.Err = err
		}
		return report, report.Err
	}
	report.Entry = entry

	if entry.StackPointer == 0xFFFFFFFF {
		s.config.logError("application vector table is erased", "entry", entry.String())
	}
	s.config.logInfo("launching application", "entry", entry.String())

	s.platform.Release()
	s.platform.TransferControl(entry)

	s.config.reportProgress(Progress{
		Phase:       PhaseComplete,
		Percentage:  100,
		ElapsedTime: time.Since(startTime),
	})

	return report, report.Err
}

// prepare persists the reset cause and brings up the hardware.
func (s *Sequencer) prepare(report *Report) error {
	if err := nvm.SaveResetFlag(s.nvm, uint32(report.ResetCause)); err != nil {
		return err
	}
	s.config.logDebug("reset flag saved", "cause", report.ResetCause.String())

	if err := s.platform.InitHardware(); err != nil {
		return errors.Wrap(err, "init hardware")
	}
	return nil
}

// update runs identify, validate, program and erase.
func (s *Sequencer) update(report *Report) error {
	s.config.reportProgress(Progress{Phase: PhaseIdentifying})

	dev, err := flash.Identify(s.flash)
	if err != nil {
		return err
	}
	report.Device = dev
	if !dev.Known() {
		s.config.logInfo("no supported external flash", "id", dev.ID.String())
		return nil
	}

	s.config.reportProgress(Progress{Phase: PhaseValidating})

	region := s.nvm.Region()
	outcome, err := Validate(s.flash, dev, region)
	if err != nil {
		return err
	}
	report.Outcome = outcome
	s.config.logInfo("external image classified", "device", dev.Name, "outcome", outcome.String())

	switch outcome.Kind {
	case image.NoImage:
		return nil
	case image.ValidImage:
		prog := NewProgrammer(s.flash, s.nvm, s.opts...)
		res, err := prog.Program(outcome.Length)
		report.Program = res
		if err != nil {
			return err
		}
	}

	s.config.reportProgress(Progress{Phase: PhaseErasing})

	n, err := EraseImage(s.flash, outcome.Length)
	report.BlocksErased = n
	if err != nil {
		return err
	}
	s.config.logInfo("external image discarded", "blocks", n)

	return nil
}

// diagnose reports a fatal error on the logger and diagnostics writer.
func (s *Sequencer) diagnose(err error) {
	s.config.logError("update aborted", "error", err)
	if s.config.Diagnostics != nil {
		fmt.Fprintf(s.config.Diagnostics, "flxboot: update aborted: %v\n", err)
	}
}
