// Package config loads the bridge's runtime configuration from a JSON file,
// falling back to defaults when the file is absent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gThomas99/controllers/surface"
)

// JogTuning mirrors surface.JogConfig with JSON-friendly durations.
type JogTuning struct {
	IdleReleaseMs   int     `json:"idle_release_ms"`
	RampGapMs       int     `json:"ramp_gap_ms"`
	RampStep        float64 `json:"ramp_step"`
	MaxScale        float64 `json:"max_scale"`
	ScrubScale      float64 `json:"scrub_scale"`
	ScrubBoostTicks int     `json:"scrub_boost_ticks"`
	NudgeScale      float64 `json:"nudge_scale"`
}

type Config struct {
	MIDIIn  string `json:"midi_in"`
	MIDIOut string `json:"midi_out"`

	OSCSendHost   string `json:"osc_send_host"`
	OSCSendPort   int    `json:"osc_send_port"`
	OSCListenAddr string `json:"osc_listen_addr"`

	// LogControlAddr, when set, enables the OSC log-level server.
	LogControlAddr string `json:"log_control_addr,omitempty"`

	Jog JogTuning `json:"jog"`
}

func Default() Config {
	jog := surface.DefaultJogConfig()
	return Config{
		MIDIIn:        "DJ Control",
		MIDIOut:       "DJ Control",
		OSCSendHost:   "127.0.0.1",
		OSCSendPort:   9000,
		OSCListenAddr: "0.0.0.0:9001",
		Jog: JogTuning{
			IdleReleaseMs:   int(jog.IdleRelease / time.Millisecond),
			RampGapMs:       int(jog.RampGap / time.Millisecond),
			RampStep:        jog.RampStep,
			MaxScale:        jog.MaxScale,
			ScrubScale:      jog.ScrubScale,
			ScrubBoostTicks: jog.ScrubBoostTicks,
			NudgeScale:      jog.NudgeScale,
		},
	}
}

// Load reads the config at path. A missing file yields the defaults; a
// malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// JogConfig converts the tuning section into the surface's form, keeping
// the scratch kinematics at their defaults.
func (c Config) JogConfig() surface.JogConfig {
	jog := surface.DefaultJogConfig()
	jog.IdleRelease = time.Duration(c.Jog.IdleReleaseMs) * time.Millisecond
	jog.RampGap = time.Duration(c.Jog.RampGapMs) * time.Millisecond
	jog.RampStep = c.Jog.RampStep
	jog.MaxScale = c.Jog.MaxScale
	jog.ScrubScale = c.Jog.ScrubScale
	jog.ScrubBoostTicks = c.Jog.ScrubBoostTicks
	jog.NudgeScale = c.Jog.NudgeScale
	return jog
}
