package surface

// ShiftAware is implemented by controls whose meaning changes with the shift
// layer. ApplyShift must be cheap: it runs synchronously inside every shift
// transition, before the transition returns.
type ShiftAware interface {
	ApplyShift(effective bool)
}

// ShiftState tracks the modifier's momentary and sticky state. Effective
// shift is held OR locked; any change to it fans out to every registered
// control before the mutating call returns.
type ShiftState struct {
	held   bool
	locked bool

	controls []ShiftAware
	leds     *LEDManager
}

func NewShiftState(leds *LEDManager) *ShiftState {
	return &ShiftState{leds: leds}
}

// Register adds a control to the fan-out list.
func (s *ShiftState) Register(c ShiftAware) {
	s.controls = append(s.controls, c)
}

// Active reports the effective shift state.
func (s *ShiftState) Active() bool {
	return s.held || s.locked
}

// Held reports whether the modifier button is physically down.
func (s *ShiftState) Held() bool {
	return s.held
}

// Locked reports the sticky lock state.
func (s *ShiftState) Locked() bool {
	return s.locked
}

// SetHeld records the modifier button's physical state. Only the modifier's
// own press and release events may call this.
func (s *ShiftState) SetHeld(held bool) {
	before := s.Active()
	s.held = held
	s.applyIfChanged(before)
}

// ToggleLocked flips the sticky lock. Only the designated chord action calls
// this. The lock indicator is rewritten on every call.
func (s *ShiftState) ToggleLocked() {
	before := s.Active()
	s.locked = !s.locked
	s.leds.Reflect(LEDShiftLock, boolToFloat(s.locked))
	s.applyIfChanged(before)
}

func (s *ShiftState) applyIfChanged(before bool) {
	after := s.Active()
	if after == before {
		return
	}
	for _, c := range s.controls {
		c.ApplyShift(after)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
