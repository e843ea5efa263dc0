package devices

// PathCC identifies a control-change bind site on a MIDI device.
type PathCC struct {
	Channel    uint8
	Controller uint8
}

// PathNote identifies a note bind site. Note callbacks receive true on
// note-on and false on note-off.
type PathNote struct {
	Channel uint8
	Key     uint8
}

// PathPitchBend identifies a pitch-bend bind site.
type PathPitchBend struct {
	Channel uint8
}

// ArgsCC carries the decoded payload of a control-change message.
type ArgsCC struct {
	Value uint8
}

// ArgsPitchBend carries the decoded payload of a pitch-bend message.
type ArgsPitchBend struct {
	Relative int16
	Absolute uint16
}
