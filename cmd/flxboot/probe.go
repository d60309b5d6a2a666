package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/ftdi"

	"github.com/moffa90/go-flxboot/flash"
	"github.com/moffa90/go-flxboot/image"
)

var (
	probeSPI  string
	probeCS   string
	probeFTDI bool
	probeHz   int64
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Identify an external flash chip and classify its contents",
	Long: `Identify a serial NOR flash over a host SPI port (spidev) or an FTDI
FT232H/FT2232H adapter and classify the staged image header. The chip is
only read: no unprotect, erase or program command is issued.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tgt, err := lookupTarget()
		if err != nil {
			return err
		}

		if _, err := host.Init(); err != nil {
			return errors.Wrap(err, "host initialization failed")
		}

		freq := physic.Frequency(probeHz) * physic.Hertz
		var bus *flash.PeriphBus
		var closer io.Closer = nopCloser{}
		if probeFTDI {
			bus, closer, err = openFTDI(freq)
		} else {
			bus, closer, err = flash.OpenPeriph(probeSPI, probeCS, freq)
		}
		if err != nil {
			return err
		}
		defer closer.Close()

		t := flash.New(bus, flash.WithLogger(glogLogger{}))
		dev, err := flash.Identify(t)
		if err != nil {
			return err
		}
		if !dev.Known() {
			color.Yellow("device:   %s", dev)
			return nil
		}
		color.Green("device:   %s", dev)

		h, err := image.ReadHeader(t)
		if err != nil {
			return err
		}
		if h.Present {
			fmt.Printf("magic:    %q\n", h.Magic[:])
			fmt.Printf("length:   %d\n", h.Length)
		}
		printOutcome(image.Classify(h, dev.Capacity, tgt.Region.AppSpace()))
		return nil
	},
}

// openFTDI connects to the first FT232H-class MPSSE adapter with chip
// select on ADBUS4.
func openFTDI(freq physic.Frequency) (*flash.PeriphBus, io.Closer, error) {
	for _, dev := range ftdi.All() {
		ft, ok := dev.(*ftdi.FT232H)
		if !ok {
			continue
		}
		port, err := ft.SPI()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to get SPI port")
		}
		bus, err := flash.Connect(port, ft.D4, freq)
		if err != nil {
			_ = port.Close()
			return nil, nil, err
		}
		return bus, port, nil
	}
	return nil, nil, errors.New("no FT232H compatible adapter found")
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVar(&probeSPI, "spi", "", "SPI port name (default first registered port)")
	probeCmd.Flags().StringVar(&probeCS, "cs", "GPIO8", "GPIO used as chip select")
	probeCmd.Flags().BoolVar(&probeFTDI, "ftdi", false, "use an FTDI MPSSE adapter instead of a host SPI port")
	probeCmd.Flags().Int64Var(&probeHz, "hz", 1000000, "SPI clock in Hz")
}
