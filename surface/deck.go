package surface

import (
	"fmt"
	"log/slog"

	"github.com/gThomas99/controllers/engine"
)

// NumHotcues is how many hotcue pads each deck carries.
const NumHotcues = 4

// rateRanges are the pitch fader ranges the shifted keylock button cycles.
var rateRanges = []float64{0.08, 0.16, 0.5}

func hotcueLED(n int) string {
	return fmt.Sprintf("hotcue_%d", n)
}

// deck bundles one physical deck's controls. Buttons with a shifted meaning
// are registered with the shift state machine; their LEDs are subscribed to
// engine truth once, here, and never touched by the shift layer.
type deck struct {
	id engine.Deck

	play, cue, sync, keylock *Button
	pfl, load                *Button
	loop, loopHalve, loopDbl *Button
	bendUp, bendDown         *Button
	hotcues                  [NumHotcues]*Button

	volume, eqHigh, eqMid, eqLow, gain *Control

	jog *JogWheel
}

// press adapts an action to a PushHandler that fires on press only.
func press(fn func()) PushHandler {
	return func(pressed bool) error {
		if pressed {
			fn()
		}
		return nil
	}
}

// hold adapts a momentary engine control: the control tracks the button.
func hold(eng engine.Engine, d engine.Deck, k engine.Key) PushHandler {
	return func(pressed bool) error {
		eng.SetValue(d, k, boolToFloat(pressed))
		return nil
	}
}

// fader adapts a 0-127 input to a normalized engine parameter.
func fader(eng engine.Engine, d engine.Deck, k engine.Key) Handler {
	return func(value uint8) error {
		eng.SetParameter(d, k, float64(value)/127)
		return nil
	}
}

func newDeck(d engine.Deck, eng engine.Engine, leds *LEDManager, shift *ShiftState, jogCfg JogConfig, log *slog.Logger) *deck {
	k := &deck{id: d}
	k.jog = NewJogWheel(d, eng, jogCfg, leds, log)

	k.play = NewButton(LEDPlay, press(func() { eng.Toggle(d, engine.KeyPlay) }))
	k.cue = NewShiftedButton(LEDCue,
		hold(eng, d, engine.KeyCueDefault),
		press(func() { eng.SetValue(d, engine.KeyCueGotoAndPlay, 1) }),
	)
	k.sync = NewShiftedButton(LEDSync,
		press(func() { eng.Toggle(d, engine.KeySyncEnabled) }),
		press(func() { eng.Toggle(d, engine.KeySyncMaster) }),
	)
	k.keylock = NewShiftedButton(LEDKeylock,
		press(func() { eng.Toggle(d, engine.KeyKeylock) }),
		press(func() { eng.SetValue(d, engine.KeyRateRange, nextRateRange(eng.Value(d, engine.KeyRateRange))) }),
	)
	k.pfl = NewButton(LEDPfl, press(func() { eng.Toggle(d, engine.KeyPfl) }))
	k.loop = NewShiftedButton(LEDLoop,
		press(func() { eng.SetValue(d, engine.KeyLoopToggle, 1) }),
		press(func() { eng.SetValue(d, engine.KeyLoopEnabled, 0) }),
	)
	k.loopHalve = NewButton("loop_halve", press(func() { eng.SetValue(d, engine.KeyLoopHalve, 1) }))
	k.loopDbl = NewButton("loop_double", press(func() { eng.SetValue(d, engine.KeyLoopDouble, 1) }))
	k.bendUp = NewShiftedButton("bend_up",
		hold(eng, d, engine.KeyRateTempUp),
		press(func() { eng.SetValue(d, engine.KeyRatePermUp, 1) }),
	)
	k.bendDown = NewShiftedButton("bend_down",
		hold(eng, d, engine.KeyRateTempDown),
		press(func() { eng.SetValue(d, engine.KeyRatePermDown, 1) }),
	)
	k.load = NewShiftedButton(LEDLoad,
		press(func() { eng.SetValue(d, engine.KeyLoadTrack, 1) }),
		press(func() { eng.SetValue(d, engine.KeyEject, 1) }),
	)
	for i := range k.hotcues {
		n := i + 1
		k.hotcues[i] = NewShiftedButton(hotcueLED(n),
			hold(eng, d, engine.HotcueActivate(n)),
			press(func() { eng.SetValue(d, engine.HotcueClear(n), 1) }),
		)
	}

	k.volume = NewControl("volume", fader(eng, d, engine.KeyVolume))
	k.eqHigh = NewControl("eq_high", fader(eng, d, engine.KeyFilterHigh))
	k.eqMid = NewControl("eq_mid", fader(eng, d, engine.KeyFilterMid))
	k.eqLow = NewControl("eq_low", fader(eng, d, engine.KeyFilterLow))
	k.gain = NewControl("gain", fader(eng, d, engine.KeyPregain))

	for _, c := range []ShiftAware{
		k.cue, k.sync, k.keylock, k.loop, k.bendUp, k.bendDown, k.load,
	} {
		shift.Register(c)
	}
	for _, h := range k.hotcues {
		shift.Register(h)
	}

	// LED wiring: engine truth only, independent of the shift layer.
	reflect := func(key engine.Key, led string) {
		eng.Subscribe(d, key, func(v float64) { leds.Reflect(led, v, d) })
	}
	reflect(engine.KeyPlayIndicator, LEDPlay)
	reflect(engine.KeyCueIndicator, LEDCue)
	reflect(engine.KeySyncEnabled, LEDSync)
	reflect(engine.KeyKeylock, LEDKeylock)
	reflect(engine.KeyPfl, LEDPfl)
	reflect(engine.KeyLoopEnabled, LEDLoop)
	for i := range k.hotcues {
		n := i + 1
		eng.Subscribe(d, engine.HotcueEnabled(n), func(v float64) {
			leds.ReflectAlt(hotcueLED(n), v, d)
		})
	}

	return k
}

func nextRateRange(current float64) float64 {
	for i, r := range rateRanges {
		if current == r {
			return rateRanges[(i+1)%len(rateRanges)]
		}
	}
	return rateRanges[0]
}
