package surface

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/gThomas99/controllers/engine"
)

// jogCenter is the fixed center of the wheel's relative encoding.
const jogCenter = 0x40

// WrapDelta decodes a raw wheel value into a signed tick delta, correcting
// for wrap-around: delta = ((v - center + 64) mod 128) - 64.
func WrapDelta(v uint8) int {
	return (int(v)-jogCenter+64)%128 - 64
}

// JogConfig carries the wheel's kinematic and timing parameters.
type JogConfig struct {
	// Scratch kinematics handed to the engine on scratch entry.
	TicksPerRev int
	RPM         float64
	Alpha       float64
	Beta        float64

	// IdleRelease is how long after the last tick scratch mode lets go.
	IdleRelease time.Duration
	// RampGap resets the consecutive-tick counter when exceeded.
	RampGap time.Duration
	// RampStep raises the velocity scale per consecutive rapid tick.
	RampStep float64
	// MaxScale caps the velocity scale.
	MaxScale float64

	// ScrubScale converts a tick into a play-position step while stopped.
	ScrubScale float64
	// ScrubBoostTicks is how many rapid ticks before scrubbing picks up the
	// velocity scale as well.
	ScrubBoostTicks int
	// NudgeScale converts a tick into a transient pitch nudge while playing.
	NudgeScale float64
}

// DefaultJogConfig mirrors a 12cm platter on a vinyl-speed virtual deck.
func DefaultJogConfig() JogConfig {
	return JogConfig{
		TicksPerRev:     128,
		RPM:             100.0 / 3, // 33 1/3
		Alpha:           1.0 / 8,
		Beta:            1.0 / 8 / 32,
		IdleRelease:     50 * time.Millisecond,
		RampGap:         150 * time.Millisecond,
		RampStep:        0.25,
		MaxScale:        3.0,
		ScrubScale:      0.0005,
		ScrubBoostTicks: 8,
		NudgeScale:      1.0 / 16,
	}
}

type jogState uint8

const (
	jogIdle jogState = iota
	jogScratching
)

// JogWheel interprets one deck's wheel motion. Touch is the authoritative
// gate into scratch mode; rotation without touch is a pitch nudge while
// playing, or a position scrub while stopped.
type JogWheel struct {
	deck engine.Deck
	eng  engine.Engine
	cfg  JogConfig
	leds *LEDManager
	log  *slog.Logger

	mu       sync.Mutex
	alive    bool
	state    jogState
	touching bool
	slipSet  bool
	lastTick time.Time
	rapid    int
	release  engine.TimerID
	// releaseGen invalidates stale release timers: a fire only acts if its
	// generation is still the current one.
	releaseGen uint64
}

func NewJogWheel(deck engine.Deck, eng engine.Engine, cfg JogConfig, leds *LEDManager, log *slog.Logger) *JogWheel {
	return &JogWheel{
		deck:  deck,
		eng:   eng,
		cfg:   cfg,
		leds:  leds,
		log:   log,
		alive: true,
	}
}

// Touch records the touch sensor's state. Touch-down enters scratch mode;
// touch-up arms the idle-release timer so a wheel left alone lets go.
func (j *JogWheel) Touch(pressed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.alive {
		return
	}
	j.touching = pressed
	if pressed {
		// A pending release from an earlier touch-up must not fire under
		// the new touch.
		j.cancelReleaseLocked()
		j.beginScratchLocked()
		return
	}
	if j.state == jogScratching {
		j.armReleaseLocked()
	}
}

// Turn handles one rotation event. A zero delta after wrap correction is a
// complete no-op.
func (j *JogWheel) Turn(raw uint8) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.alive {
		return
	}
	delta := WrapDelta(raw)
	if delta == 0 {
		return
	}

	now := j.eng.Now()
	if !j.lastTick.IsZero() && now.Sub(j.lastTick) <= j.cfg.RampGap {
		j.rapid++
	} else {
		j.rapid = 0
	}
	j.lastTick = now
	scale := clamp(1.0+float64(j.rapid)*j.cfg.RampStep, 1.0, j.cfg.MaxScale)

	switch {
	case j.state == jogScratching || j.touching:
		// Rotation may arrive before the touch event; enter scratch late
		// rather than dropping the motion.
		j.beginScratchLocked()
		j.eng.ScratchTick(j.deck, float64(delta)*scale)
		j.armReleaseLocked()
	case j.playing():
		j.eng.SetValue(j.deck, engine.KeyJog, float64(delta)*j.cfg.NudgeScale)
	default:
		step := float64(delta) * j.cfg.ScrubScale
		if j.rapid >= j.cfg.ScrubBoostTicks {
			step *= scale
		}
		pos := clamp(j.eng.Value(j.deck, engine.KeyPlayPosition)+step, 0.0, 1.0)
		j.eng.SetParameter(j.deck, engine.KeyPlayPosition, pos)
	}
}

// Close tears the wheel down: no further events or timers act, and any
// active scratch is released.
func (j *JogWheel) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.alive {
		return
	}
	j.alive = false
	j.cancelReleaseLocked()
	if j.state == jogScratching {
		j.endScratchLocked()
	}
}

func (j *JogWheel) playing() bool {
	return j.eng.Value(j.deck, engine.KeyPlay) != 0
}

func (j *JogWheel) beginScratchLocked() {
	if j.state == jogScratching {
		return
	}
	j.eng.ScratchEnable(j.deck, j.cfg.TicksPerRev, j.cfg.RPM, j.cfg.Alpha, j.cfg.Beta)
	if j.eng.Value(j.deck, engine.KeySlipEnabled) == 0 {
		j.eng.SetValue(j.deck, engine.KeySlipEnabled, 1)
		j.slipSet = true
	}
	j.state = jogScratching
	j.leds.Reflect(LEDScratch, 1, j.deck)
	j.log.Debug("scratch engaged", "deck", j.deck)
}

func (j *JogWheel) endScratchLocked() {
	j.eng.ScratchDisable(j.deck)
	if j.slipSet {
		j.eng.SetValue(j.deck, engine.KeySlipEnabled, 0)
		j.slipSet = false
	}
	j.state = jogIdle
	j.rapid = 0
	j.leds.Reflect(LEDScratch, 0, j.deck)
	j.log.Debug("scratch released", "deck", j.deck)
}

// armReleaseLocked replaces any outstanding idle-release timer with a fresh
// one. Each reschedule cancels the previous handle and bumps the generation,
// so a stale timer that fires anyway identifies itself and does nothing.
func (j *JogWheel) armReleaseLocked() {
	j.cancelReleaseLocked()
	j.releaseGen++
	gen := j.releaseGen
	j.release = j.eng.ScheduleTimer(j.cfg.IdleRelease, func() {
		j.releaseFired(gen)
	}, true)
}

func (j *JogWheel) cancelReleaseLocked() {
	if j.release != engine.NoTimer {
		j.eng.CancelTimer(j.release)
		j.release = engine.NoTimer
	}
}

func (j *JogWheel) releaseFired(gen uint64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.alive || gen != j.releaseGen {
		// Stale fire: a later tick rearmed the timer, or the deck is gone.
		return
	}
	j.release = engine.NoTimer
	if j.touching {
		// Holding a record still is part of the gesture: the finger, not
		// the tick stream, decides when scratching ends. Check again later.
		j.armReleaseLocked()
		return
	}
	if j.state == jogScratching {
		j.endScratchLocked()
	}
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
