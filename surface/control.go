package surface

// Raw button values the transport layer may deliver. The surface's two
// on-encodings are both honored; zero is a release.
const (
	valueOnFull uint8 = 0x7F
	valueOnAlt  uint8 = 0x01
	valueOff    uint8 = 0x00
)

// PressedValue classifies a raw button value. ok is false for values that
// are neither a recognized press nor a release; those are dropped.
func PressedValue(v uint8) (pressed, ok bool) {
	switch v {
	case valueOnFull, valueOnAlt:
		return true, true
	case valueOff:
		return false, true
	default:
		return false, false
	}
}

// PushHandler handles a button gesture edge: true on press, false on release.
type PushHandler func(pressed bool) error

// Handler handles a continuous control value.
type Handler func(value uint8) error

// Button is a mode-switching push control. It stores a normal and an
// optional shifted handler with an active-selector flag; ApplyShift only
// flips the flag, so no input event can observe a half-switched state. The
// handler chosen at press time is latched and handles the matching release
// even if shift changes in between.
type Button struct {
	name    string
	normal  PushHandler
	shifted PushHandler

	useShifted bool
	inGesture  bool
	gesture    PushHandler
}

// NewButton creates a button with only a normal behavior.
func NewButton(name string, normal PushHandler) *Button {
	return &Button{name: name, normal: normal}
}

// NewShiftedButton creates a button whose meaning changes under shift.
func NewShiftedButton(name string, normal, shifted PushHandler) *Button {
	return &Button{name: name, normal: normal, shifted: shifted}
}

// ApplyShift selects the active handler. Buttons without a shifted handler
// keep the normal one regardless.
func (b *Button) ApplyShift(effective bool) {
	b.useShifted = effective && b.shifted != nil
}

func (b *Button) active() PushHandler {
	if b.useShifted {
		return b.shifted
	}
	return b.normal
}

// HandleInput dispatches a raw button value to the active handler. A press
// latches the handler for its release.
func (b *Button) HandleInput(value uint8) error {
	pressed, ok := PressedValue(value)
	if !ok {
		return nil
	}
	if pressed {
		h := b.active()
		b.gesture = h
		b.inGesture = true
		return h(true)
	}
	h := b.gesture
	b.gesture = nil
	b.inGesture = false
	if h == nil {
		// Release with no recorded press, e.g. the press predates startup.
		h = b.active()
	}
	return h(false)
}

// Control is a mode-switching continuous control (encoder or fader). No
// gesture latching: every event dispatches to whichever handler the current
// shift state selects.
type Control struct {
	name    string
	normal  Handler
	shifted Handler

	useShifted bool
}

func NewControl(name string, normal Handler) *Control {
	return &Control{name: name, normal: normal}
}

func NewShiftedControl(name string, normal, shifted Handler) *Control {
	return &Control{name: name, normal: normal, shifted: shifted}
}

func (c *Control) ApplyShift(effective bool) {
	c.useShifted = effective && c.shifted != nil
}

func (c *Control) HandleInput(value uint8) error {
	if c.useShifted {
		return c.shifted(value)
	}
	return c.normal(value)
}
