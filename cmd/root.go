// Package cmd implements the djbridge command line.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "djbridge",
	Short: "Bridge a two-deck DJ control surface to a mixing engine",
	Long: `djbridge translates a DJ control surface's input events into commands
for a mixing engine reachable over OSC, and reflects the engine's state back
onto the surface's indicator LEDs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "djbridge.json", "path to the JSON config file")
}

func Execute() error {
	return rootCmd.Execute()
}
