package main

import (
	"flag"
	"os"

	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var targetName string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flxboot",
	Short: "External flash bootloader tooling",
	Long: `Stage FLX update containers, inspect them against a target,
run the boot-time update sequence on simulated hardware and probe
real serial NOR flash over SPI.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		glog.Flush()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red(err.Error())
		glog.Flush()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVarP(&targetName, "target", "t", "samd21g18", "internal flash layout preset")
}
