package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-flxboot/flash"
	"github.com/moffa90/go-flxboot/image"
)

var (
	inspectJEDEC string
	inspectHex   bool
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [image.flx]",
	Short: "Decode and classify an FLX container",
	Long: `Decode the header of an FLX container and classify it exactly as the
bootloader would for the given external flash part and target.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tgt, err := lookupTarget()
		if err != nil {
			return err
		}
		id, err := parseJEDEC(inspectJEDEC)
		if err != nil {
			return err
		}
		dev := flash.Lookup(id)
		if !dev.Known() {
			return errors.Errorf("%s: the bootloader would not read this chip", dev)
		}

		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		h, err := image.ReadHeader(image.NewSliceReader(b))
		if err != nil {
			return err
		}
		outcome := image.Classify(h, dev.Capacity, tgt.Region.AppSpace())

		fmt.Printf("file:     %s (%d bytes)\n", args[0], len(b))
		fmt.Printf("device:   %s\n", dev)
		fmt.Printf("target:   %s %s\n", tgt.Name, tgt.Region)
		if h.Present {
			fmt.Printf("magic:    %q\n", h.Magic[:])
			fmt.Printf("length:   %d\n", h.Length)
		}
		printOutcome(outcome)

		if outcome.Kind == image.ValidImage && uint64(len(b)) < uint64(image.PayloadOffset)+uint64(outcome.Length) {
			color.Yellow("file is %d bytes short of the declared length; missing bytes program as 0xFF",
				uint64(image.PayloadOffset)+uint64(outcome.Length)-uint64(len(b)))
		}

		if inspectHex && outcome.Kind == image.ValidImage {
			c, err := image.Parse(b)
			if err != nil {
				return err
			}
			return image.DumpHex(os.Stdout, tgt.Region.AppStart(), c.Payload)
		}
		return nil
	},
}

// printOutcome prints an outcome colored by severity.
func printOutcome(o image.Outcome) {
	switch o.Kind {
	case image.ValidImage:
		color.Green("outcome:  %s", o)
	case image.CorruptImage:
		color.Yellow("outcome:  %s", o)
	default:
		fmt.Printf("outcome:  %s\n", o)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectJEDEC, "jedec", "1F:4200", "external flash JEDEC id (MM:DDDD)")
	inspectCmd.Flags().BoolVar(&inspectHex, "hex", false, "dump a valid payload as Intel HEX at the application start")
}
