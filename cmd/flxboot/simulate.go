package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-flxboot/bootloader"
	"github.com/moffa90/go-flxboot/flash"
	"github.com/moffa90/go-flxboot/image"
	"github.com/moffa90/go-flxboot/nvm"
	"github.com/moffa90/go-flxboot/sim"
)

var (
	simJEDEC      string
	simCause      string
	simDump       string
	simConsole    string
	simBaud       int
	simPad        bool
	simVerify     bool
	simStuckBusy  bool
	simBusyPolls  int
	simMaxPolls   int
	simShowPhases bool
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate [image.flx]",
	Short: "Run the boot sequence on simulated hardware",
	Long: `Load a container into a simulated external flash chip and run the
complete boot sequence against a simulated internal flash: reset flag,
identification, validation, programming, external erase, console and
launch. Without an image the external flash is blank.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tgt, err := lookupTarget()
		if err != nil {
			return err
		}
		id, err := parseJEDEC(simJEDEC)
		if err != nil {
			return err
		}
		cause, err := bootloader.ParseResetCause(simCause)
		if err != nil {
			return err
		}

		capacity := int(flash.Lookup(id).Capacity)
		if capacity == 0 {
			capacity = 0x100000
		}
		chip := sim.NewChip(id, capacity)
		chip.BusyPolls = simBusyPolls
		chip.StuckBusy = simStuckBusy

		if len(args) == 1 {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if len(b) > capacity {
				return errors.Errorf("%s: %d bytes does not fit a %d byte chip", args[0], len(b), capacity)
			}
			chip.Program(0, b)
		}

		diag, closer, err := openDiagnostics(simConsole, simBaud)
		if err != nil {
			return err
		}
		defer closer.Close()

		mem := nvm.NewMemory(tgt.Region)
		ctrl := nvm.NewController(mem, tgt.Region)
		t := flash.New(chip,
			flash.WithMaxBusyPolls(simMaxPolls),
			flash.WithLogger(glogLogger{}),
		)
		platform := &hostPlatform{cause: cause, console: diag}

		opts := []bootloader.Option{
			bootloader.WithLogger(glogLogger{}),
			bootloader.WithDiagnostics(diag),
			bootloader.WithPadTrailingPage(simPad),
			bootloader.WithVerifyAfterProgram(simVerify),
		}
		if simShowPhases {
			opts = append(opts, bootloader.WithProgressCallback(printPhase))
		}

		report, bootErr := bootloader.NewSequencer(platform, t, ctrl, opts...).Boot(context.Background())
		printReport(report, chip)

		if simDump != "" && report.Program != nil {
			if err := dumpApplication(simDump, mem, tgt.Region, report.Program); err != nil {
				return err
			}
		}
		return bootErr
	},
}

// hostPlatform stands in for the board when simulating.
type hostPlatform struct {
	cause   bootloader.ResetCause
	console io.Writer
}

func (p *hostPlatform) ResetCause() bootloader.ResetCause {
	return p.cause
}

func (p *hostPlatform) InitHardware() error {
	glog.V(1).Infof("hardware initialized")
	return nil
}

func (p *hostPlatform) EnterConsole(ctx context.Context) error {
	fmt.Fprintf(p.console, "flxboot: console (reset cause %s)\n", p.cause)
	return ctx.Err()
}

func (p *hostPlatform) Release() {
	glog.V(1).Infof("peripherals released")
}

func (p *hostPlatform) TransferControl(entry bootloader.Entry) {
	color.Green("jump: %s", entry)
}

var lastPhase string

func printPhase(p bootloader.Progress) {
	if p.Phase == bootloader.PhaseProgramming {
		fmt.Printf("\rprogramming: page %d/%d (%.0f%%)", p.CurrentPage, p.TotalPages, p.Percentage)
		if p.CurrentPage == p.TotalPages {
			fmt.Println()
		}
		lastPhase = p.Phase
		return
	}
	if p.Phase != lastPhase {
		fmt.Printf("%s (%s)\n", p.Phase, p.ElapsedTime.Round(time.Microsecond))
		lastPhase = p.Phase
	}
}

func printReport(r *bootloader.Report, chip *sim.Chip) {
	fmt.Printf("reset cause:  %s\n", r.ResetCause)
	fmt.Printf("device:       %s\n", r.Device)
	if r.Device.Known() {
		printOutcome(r.Outcome)
	}
	if r.Program != nil {
		fmt.Printf("programmed:   %d bytes in %d pages", r.Program.BytesCopied, r.Program.PagesWritten)
		if r.Program.BytesDropped > 0 {
			color.Yellow(" (%d trailing bytes dropped)", r.Program.BytesDropped)
		} else {
			fmt.Println()
		}
	}
	fmt.Printf("blocks erased: %d\n", r.BlocksErased)
	fmt.Printf("console:      %v\n", r.ConsoleEntered)
	fmt.Printf("spi commands: %d\n", len(chip.Log))
	if r.Err != nil {
		color.Red("error:        %v", r.Err)
	}
}

// dumpApplication writes the programmed part of the application space as Intel HEX.
func dumpApplication(path string, mem *nvm.Memory, region nvm.Region, res *bootloader.Result) error {
	n := uint32(res.PagesWritten) * region.PageSize
	data := mem.Data[region.AppStart() : region.AppStart()+n]

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := image.DumpHex(f, region.AppStart(), data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simJEDEC, "jedec", "1F:4200", "JEDEC id reported by the simulated chip (MM:DDDD)")
	simulateCmd.Flags().StringVar(&simCause, "reset-cause", "external", "reset cause name or register value")
	simulateCmd.Flags().StringVar(&simDump, "dump", "", "write the programmed application space to this Intel HEX file")
	simulateCmd.Flags().StringVar(&simConsole, "console", "", "serial port mirroring diagnostics")
	simulateCmd.Flags().IntVar(&simBaud, "baud", 115200, "console baud rate")
	simulateCmd.Flags().BoolVar(&simPad, "pad", true, "pad a trailing partial page with 0xFF instead of dropping it")
	simulateCmd.Flags().BoolVar(&simVerify, "verify", false, "read back every page after programming")
	simulateCmd.Flags().BoolVar(&simStuckBusy, "stuck-busy", false, "simulated chip never leaves busy")
	simulateCmd.Flags().IntVar(&simBusyPolls, "busy-polls", 3, "status reads the chip reports busy after each erase")
	simulateCmd.Flags().IntVar(&simMaxPolls, "max-polls", 100000, "busy polls before a flash timeout")
	simulateCmd.Flags().BoolVar(&simShowPhases, "progress", false, "print progress")
}
