package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	midi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer midi.CloseDriver()
		fmt.Println("in ports:")
		for _, p := range midi.GetInPorts() {
			fmt.Printf("  %d: %s\n", p.Number(), p.String())
		}
		fmt.Println("out ports:")
		for _, p := range midi.GetOutPorts() {
			fmt.Printf("  %d: %s\n", p.Number(), p.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
