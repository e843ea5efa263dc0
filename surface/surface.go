// Package surface implements the stateful control-interpretation core of a
// two-deck DJ controller: the shift layer, the jog motion interpreter, the
// LED manager, and the per-deck control wiring between the decoded input
// stream and the mixing engine.
package surface

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gThomas99/controllers/engine"
	"github.com/gThomas99/controllers/logging"
)

// OutputPort accepts indicator writes for the surface.
type OutputPort interface {
	WriteIndicator(channel, code, status uint8) error
}

// settleDelay is how long the startup self-test stays lit before the LEDs
// reset to defaults.
const settleDelay = 1600 * time.Millisecond

// EQBand selects one of the three per-deck EQ knobs.
type EQBand uint8

const (
	EQHigh EQBand = iota
	EQMid
	EQLow
)

// Controller owns both decks and the global controls. All entry points
// tolerate unmapped input by ignoring it; none panic.
//
// The controller mutex serializes input handlers against Start, Shutdown,
// and the settle timer callback. Input arrives on the transport's listener
// goroutine; timer callbacks on the scheduler's.
type Controller struct {
	eng  engine.Engine
	out  OutputPort
	leds *LEDManager
	log  *slog.Logger

	shift *ShiftState
	decks [engine.NumDecks]*deck

	crossfader *Control
	browse     *Control

	mu       sync.Mutex
	deviceID string
	alive    bool
	settle   engine.TimerID
}

// Option configures a Controller.
type Option func(*controllerConfig)

type controllerConfig struct {
	jog JogConfig
}

// WithJogConfig overrides the default jog wheel tuning.
func WithJogConfig(cfg JogConfig) Option {
	return func(c *controllerConfig) { c.jog = cfg }
}

// New builds the controller. Both collaborators are required; a missing one
// aborts construction after a visible failure indication on whatever output
// is available.
func New(eng engine.Engine, out OutputPort, opts ...Option) (*Controller, error) {
	log := logging.Get(logging.APP)
	if out == nil {
		return nil, fmt.Errorf("missing collaborator: output port")
	}
	if eng == nil {
		failurePattern(out)
		return nil, fmt.Errorf("missing collaborator: engine")
	}

	cfg := controllerConfig{jog: DefaultJogConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Controller{
		eng: eng,
		out: out,
		log: log,
	}
	c.leds = NewLEDManager(out, eng, log)
	c.shift = NewShiftState(c.leds)
	for _, d := range engine.Decks {
		c.decks[d] = newDeck(d, eng, c.leds, c.shift, cfg.jog, log)
	}
	c.crossfader = NewControl("crossfader", func(value uint8) error {
		eng.SetParameter(engine.DeckA, engine.KeyCrossfader, float64(value)/127)
		return nil
	})
	c.browse = NewShiftedControl("browse",
		c.browseBy(1),
		c.browseBy(browseShiftFactor),
	)
	c.shift.Register(c.browse)
	c.alive = true
	return c, nil
}

// browseShiftFactor speeds library scrolling under shift.
const browseShiftFactor = 5

func (c *Controller) browseBy(factor int) Handler {
	return func(value uint8) error {
		delta := WrapDelta(value)
		if delta == 0 {
			return nil
		}
		// The library is global; the engine keys it off the first deck.
		c.eng.SetValue(engine.DeckA, engine.KeySelectTrack, float64(delta*factor))
		return nil
	}
}

// failurePattern lights alternate indicators so a half-initialized start is
// visible on the hardware even without a working timer primitive.
func failurePattern(out OutputPort) {
	codes := []uint8{0x42, 0x44, 0x46, 0x49, 0x4B}
	for ch := uint8(0); ch < engine.NumDecks; ch++ {
		for _, code := range codes {
			out.WriteIndicator(ch, code, statusOn)
		}
	}
}

// Start runs the startup LED self-test and schedules the reset to defaults
// after the settle delay.
func (c *Controller) Start(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deviceID = deviceID
	c.log.Info("surface starting", "device", deviceID)
	c.leds.AllOn()
	c.settle = c.eng.ScheduleTimer(settleDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.alive {
			return
		}
		c.settle = engine.NoTimer
		c.leds.ResetAll()
		c.log.Info("surface ready", "device", c.deviceID)
	}, true)
}

// Shutdown resets all LEDs and cancels outstanding timers. The controller
// accepts no further events afterwards.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return
	}
	c.alive = false
	if c.settle != engine.NoTimer {
		c.eng.CancelTimer(c.settle)
		c.settle = engine.NoTimer
	}
	for _, d := range c.decks {
		d.jog.Close()
	}
	c.leds.ResetAll()
	c.log.Info("surface shut down", "device", c.deviceID)
}

// Shift reports the shift state machine, for tests and the dispatch layer.
func (c *Controller) Shift() *ShiftState { return c.shift }

// LEDs reports the LED manager.
func (c *Controller) LEDs() *LEDManager { return c.leds }

func (c *Controller) deck(d engine.Deck) *deck {
	if int(d) >= engine.NumDecks {
		return nil
	}
	return c.decks[d]
}

// HandleShift records the modifier button's physical state.
func (c *Controller) HandleShift(value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	pressed, ok := PressedValue(value)
	if !ok {
		return nil
	}
	c.shift.SetHeld(pressed)
	return nil
}

// HandleShiftLock toggles the sticky lock, but only as the shift chord:
// pressing it without the modifier held does nothing.
func (c *Controller) HandleShiftLock(value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	pressed, ok := PressedValue(value)
	if !ok || !pressed {
		return nil
	}
	if c.shift.Held() {
		c.shift.ToggleLocked()
	}
	return nil
}

func (c *Controller) button(d engine.Deck, pick func(*deck) *Button, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	dk := c.deck(d)
	if dk == nil {
		c.log.Debug("unmapped deck", "deck", d)
		return nil
	}
	return pick(dk).HandleInput(value)
}

func (c *Controller) HandlePlay(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.play }, value)
}

func (c *Controller) HandleCue(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.cue }, value)
}

func (c *Controller) HandleSync(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.sync }, value)
}

func (c *Controller) HandleKeylock(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.keylock }, value)
}

func (c *Controller) HandlePfl(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.pfl }, value)
}

func (c *Controller) HandleLoop(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.loop }, value)
}

func (c *Controller) HandleLoopHalve(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.loopHalve }, value)
}

func (c *Controller) HandleLoopDouble(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.loopDbl }, value)
}

func (c *Controller) HandleBendUp(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.bendUp }, value)
}

func (c *Controller) HandleBendDown(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.bendDown }, value)
}

func (c *Controller) HandleLoad(d engine.Deck, value uint8) error {
	return c.button(d, func(k *deck) *Button { return k.load }, value)
}

// HandleHotcue dispatches to hotcue slot n (1-based). Unknown slots are
// ignored.
func (c *Controller) HandleHotcue(d engine.Deck, slot int, value uint8) error {
	if slot < 1 || slot > NumHotcues {
		c.log.Debug("unmapped hotcue slot", "deck", d, "slot", slot)
		return nil
	}
	return c.button(d, func(k *deck) *Button { return k.hotcues[slot-1] }, value)
}

// HandleJogTouch records the wheel's touch sensor state.
func (c *Controller) HandleJogTouch(d engine.Deck, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	dk := c.deck(d)
	if dk == nil {
		return nil
	}
	pressed, ok := PressedValue(value)
	if !ok {
		return nil
	}
	dk.jog.Touch(pressed)
	return nil
}

// HandleJogTurn feeds a raw rotation value to the wheel interpreter.
func (c *Controller) HandleJogTurn(d engine.Deck, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	dk := c.deck(d)
	if dk == nil {
		return nil
	}
	dk.jog.Turn(value)
	return nil
}

func (c *Controller) control(d engine.Deck, pick func(*deck) *Control, value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	dk := c.deck(d)
	if dk == nil {
		c.log.Debug("unmapped deck", "deck", d)
		return nil
	}
	return pick(dk).HandleInput(value)
}

func (c *Controller) HandleVolume(d engine.Deck, value uint8) error {
	return c.control(d, func(k *deck) *Control { return k.volume }, value)
}

func (c *Controller) HandleGain(d engine.Deck, value uint8) error {
	return c.control(d, func(k *deck) *Control { return k.gain }, value)
}

func (c *Controller) HandleEQ(d engine.Deck, band EQBand, value uint8) error {
	return c.control(d, func(k *deck) *Control {
		switch band {
		case EQHigh:
			return k.eqHigh
		case EQMid:
			return k.eqMid
		default:
			return k.eqLow
		}
	}, value)
}

func (c *Controller) HandleCrossfader(value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	return c.crossfader.HandleInput(value)
}

func (c *Controller) HandleBrowse(value uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	return c.browse.HandleInput(value)
}
