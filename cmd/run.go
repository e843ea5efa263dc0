package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	midi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/gThomas99/controllers/config"
	"github.com/gThomas99/controllers/devices"
	"github.com/gThomas99/controllers/engine/oscmix"
	"github.com/gThomas99/controllers/logging"
	"github.com/gThomas99/controllers/surface"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run() error {
	defer midi.CloseDriver()
	log := logging.Get(logging.APP)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.LogControlAddr != "" {
		go func() {
			if err := logging.EnableRemoteControl(cfg.LogControlAddr); err != nil {
				log.Error("log-control server stopped", "err", err)
			}
		}()
	}

	in, err := midi.FindInPort(cfg.MIDIIn)
	if err != nil {
		return fmt.Errorf("finding MIDI in port %q: %w", cfg.MIDIIn, err)
	}
	out, err := midi.FindOutPort(cfg.MIDIOut)
	if err != nil {
		return fmt.Errorf("finding MIDI out port %q: %w", cfg.MIDIOut, err)
	}

	dev := devices.NewMidiDevice(in, out)
	eng := oscmix.New(cfg.OSCSendHost, cfg.OSCSendPort, cfg.OSCListenAddr)

	ctrl, err := surface.New(eng, dev, surface.WithJogConfig(cfg.JogConfig()))
	if err != nil {
		return err
	}
	ctrl.BindTo(dev)

	go func() {
		if err := eng.Run(); err != nil {
			log.Error("engine OSC server stopped", "err", err)
		}
	}()
	if err := dev.Run(); err != nil {
		return err
	}
	defer dev.Close()

	ctrl.Start(cfg.MIDIIn)
	defer ctrl.Shutdown()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("interrupted, shutting down")
	return nil
}
