package devices

import (
	"fmt"
	"log/slog"
	"sync"

	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/gThomas99/controllers/logging"
)

var midiInLog, midiOutLog *slog.Logger

func init() {
	midiInLog = logging.Get(logging.MIDI_IN)
	midiOutLog = logging.Get(logging.MIDI_OUT)
}

// MidiDevice represents a generic MIDI device and allows registering callbacks
// for the messages the device may send.
//
// Callbacks registered for the same path all run, in registration order.
// Messages with no registered callback are dropped after a debug log.
type MidiDevice struct {
	inPort  drivers.In
	outPort drivers.Out

	mu        sync.Mutex
	cc        map[PathCC][]func(ArgsCC) error
	note      map[PathNote][]func(bool) error
	pitchBend map[PathPitchBend][]func(ArgsPitchBend) error

	stop func()
}

func NewMidiDevice(inPort drivers.In, outPort drivers.Out) *MidiDevice {
	return &MidiDevice{
		inPort:    inPort,
		outPort:   outPort,
		cc:        map[PathCC][]func(ArgsCC) error{},
		note:      map[PathNote][]func(bool) error{},
		pitchBend: map[PathPitchBend][]func(ArgsPitchBend) error{},
	}
}

// BindCC registers a callback to run for each control-change message matching path.
func (d *MidiDevice) BindCC(path PathCC, callback func(ArgsCC) error) {
	d.mu.Lock()
	d.cc[path] = append(d.cc[path], callback)
	d.mu.Unlock()
}

// BindNote registers a callback to run for each note-on/note-off matching path.
func (d *MidiDevice) BindNote(path PathNote, callback func(bool) error) {
	d.mu.Lock()
	d.note[path] = append(d.note[path], callback)
	d.mu.Unlock()
}

// BindPitchBend registers a callback to run for each pitch-bend message matching path.
func (d *MidiDevice) BindPitchBend(path PathPitchBend, callback func(ArgsPitchBend) error) {
	d.mu.Lock()
	d.pitchBend[path] = append(d.pitchBend[path], callback)
	d.mu.Unlock()
}

// SendCC sends a control-change message to the device.
func (d *MidiDevice) SendCC(channel, controller, value uint8) error {
	midiOutLog.Debug("Sending Control Change", "channel", channel, "controller", controller, "value", value)
	return d.outPort.Send(midi.ControlChange(channel, controller, value))
}

// SendNote sends a note-on message to the device. Indicator writes use this:
// the status byte travels as the velocity.
func (d *MidiDevice) SendNote(channel, key, velocity uint8) error {
	midiOutLog.Debug("Sending Note On", "channel", channel, "key", key, "velocity", velocity)
	return d.outPort.Send(midi.NoteOn(channel, key, velocity))
}

// WriteIndicator lights an indicator on the surface. Channel selects the
// deck, code the indicator, status the device byte to display.
func (d *MidiDevice) WriteIndicator(channel, code, status uint8) error {
	return d.SendNote(channel, code, status)
}

func (d *MidiDevice) ccCallbacks(path PathCC) []func(ArgsCC) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cc[path]
}

func (d *MidiDevice) noteCallbacks(path PathNote) []func(bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.note[path]
}

func (d *MidiDevice) pitchBendCallbacks(path PathPitchBend) []func(ArgsPitchBend) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pitchBend[path]
}

// Run opens both ports and starts listening for incoming MIDI messages.
// For any message with a callback registered, that callback runs each time
// such a message is received. Run returns once the listener is installed.
func (d *MidiDevice) Run() error {
	midiInLog.Info("Starting MIDI device", "inPort", d.inPort.String(), "outPort", d.outPort.String())
	if err := d.inPort.Open(); err != nil {
		return fmt.Errorf("opening MIDI in port: %w", err)
	}
	if err := d.outPort.Open(); err != nil {
		return fmt.Errorf("opening MIDI out port: %w", err)
	}
	stop, err := midi.ListenTo(d.inPort, d.handleMessage)
	if err != nil {
		return fmt.Errorf("listening to MIDI in port: %w", err)
	}
	d.stop = stop
	return nil
}

// Close stops the listener and closes both ports.
func (d *MidiDevice) Close() {
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
	d.inPort.Close()
	d.outPort.Close()
}

func (d *MidiDevice) handleMessage(msg midi.Message, timestampms int32) {
	switch msg.Type() {
	case midi.ControlChangeMsg:
		var channel, control, value uint8
		if ok := msg.GetControlChange(&channel, &control, &value); !ok {
			midiInLog.Error("failed to parse Control Change message")
			return
		}
		midiInLog.Debug("received Control Change message", "channel", channel, "control", control, "value", value, "timestamp", timestampms)
		callbacks := d.ccCallbacks(PathCC{channel, control})
		if len(callbacks) == 0 {
			midiInLog.Debug("unmapped Control Change", "channel", channel, "control", control)
			return
		}
		for _, cb := range callbacks {
			if err := cb(ArgsCC{Value: value}); err != nil {
				midiInLog.Error("failed to process Control Change", "err", err)
			}
		}
	case midi.NoteOnMsg:
		var channel, key, velocity uint8
		if ok := msg.GetNoteOn(&channel, &key, &velocity); !ok {
			midiInLog.Error("failed to parse Note On message")
			return
		}
		midiInLog.Debug("received Note On message", "channel", channel, "key", key, "velocity", velocity, "timestamp", timestampms)
		d.dispatchNote(PathNote{channel, key}, velocity > 0)
	case midi.NoteOffMsg:
		var channel, key, velocity uint8
		if ok := msg.GetNoteOff(&channel, &key, &velocity); !ok {
			midiInLog.Error("failed to parse Note Off message")
			return
		}
		midiInLog.Debug("received Note Off message", "channel", channel, "key", key, "timestamp", timestampms)
		d.dispatchNote(PathNote{channel, key}, false)
	case midi.PitchBendMsg:
		var channel uint8
		var relative int16
		var absolute uint16
		if ok := msg.GetPitchBend(&channel, &relative, &absolute); !ok {
			midiInLog.Error("failed to parse Pitch Bend message")
			return
		}
		midiInLog.Debug("received Pitch Bend message", "channel", channel, "absolute", absolute, "timestamp", timestampms)
		callbacks := d.pitchBendCallbacks(PathPitchBend{channel})
		if len(callbacks) == 0 {
			midiInLog.Debug("unmapped Pitch Bend", "channel", channel)
			return
		}
		for _, cb := range callbacks {
			if err := cb(ArgsPitchBend{Relative: relative, Absolute: absolute}); err != nil {
				midiInLog.Error("failed to process Pitch Bend", "err", err)
			}
		}
	}
}

func (d *MidiDevice) dispatchNote(path PathNote, on bool) {
	callbacks := d.noteCallbacks(path)
	if len(callbacks) == 0 {
		midiInLog.Debug("unmapped Note", "channel", path.Channel, "key", path.Key, "on", on)
		return
	}
	for _, cb := range callbacks {
		if err := cb(on); err != nil {
			midiInLog.Error("failed to process Note", "err", err)
		}
	}
}
