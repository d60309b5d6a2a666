package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-flxboot/nvm"
)

// targetsCmd represents the targets command
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List internal flash layout presets",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range nvm.Names() {
			fmt.Printf("%-12s %s\n", name, nvm.ByName(name).Region)
		}
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
