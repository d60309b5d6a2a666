package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-flxboot/image"
)

var (
	stageOutput string
	stageBase   uint32
)

// stageCmd represents the stage command
var stageCmd = &cobra.Command{
	Use:   "stage [firmware.bin|firmware.hex]",
	Short: "Wrap an application image in an FLX container",
	Long: `Wrap a raw binary or Intel HEX application image in an FLX
container ready to be written at offset 0 of the external flash.
Intel HEX data is rebased to --base and gaps are filled with 0xFF.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tgt, err := lookupTarget()
		if err != nil {
			return err
		}

		payload, err := loadPayload(args[0], stageBase)
		if err != nil {
			return err
		}
		if len(payload) == 0 {
			return errors.Errorf("%s: empty image", args[0])
		}

		if uint64(len(payload)) > uint64(tgt.Region.AppSpace()) {
			color.Yellow("warning: %d byte image exceeds %s application space (%d bytes); the bootloader will discard it",
				len(payload), tgt.Name, tgt.Region.AppSpace())
		}

		out := stageOutput
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".flx"
		}

		if err := os.WriteFile(out, image.Build(payload, image.DefaultReserved), 0644); err != nil {
			return errors.Wrap(err, "write container")
		}
		glog.Infof("staged %s: %d byte payload", out, len(payload))

		fmt.Printf("%s: %d bytes\n", out, len(payload)+image.HeaderSize)
		return nil
	},
}

// loadPayload reads a raw binary, or an Intel HEX file when the name ends in .hex or .ihx.
func loadPayload(path string, base uint32) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihx":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return image.LoadHex(f, base)
	default:
		return os.ReadFile(path)
	}
}

func init() {
	rootCmd.AddCommand(stageCmd)

	stageCmd.Flags().StringVarP(&stageOutput, "output", "o", "", "container file (default <input>.flx)")
	stageCmd.Flags().Uint32Var(&stageBase, "base", 0x8000, "load address of the first payload byte (Intel HEX input)")
}
