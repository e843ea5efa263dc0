package devices_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	midi "gitlab.com/gomidi/midi/v2"

	"github.com/gThomas99/controllers/devices"
	devtest "github.com/gThomas99/controllers/devices/devicestesting"
)

func TestMidiDeviceDispatch(t *testing.T) {
	tests := []struct {
		name          string
		setupBindings func(*devices.MidiDevice, *[]any)
		inputMessages []midi.Message
		expectCalls   []any
	}{
		{
			name: "control change message triggers callback",
			setupBindings: func(dev *devices.MidiDevice, calls *[]any) {
				dev.BindCC(devices.PathCC{Channel: 1, Controller: 7}, func(args devices.ArgsCC) error {
					*calls = append(*calls, args.Value)
					return nil
				})
			},
			inputMessages: []midi.Message{midi.ControlChange(1, 7, 64)},
			expectCalls:   []any{uint8(64)},
		},
		{
			name: "control change on another controller is not dispatched",
			setupBindings: func(dev *devices.MidiDevice, calls *[]any) {
				dev.BindCC(devices.PathCC{Channel: 1, Controller: 7}, func(args devices.ArgsCC) error {
					*calls = append(*calls, args.Value)
					return nil
				})
			},
			inputMessages: []midi.Message{midi.ControlChange(1, 8, 64)},
			expectCalls:   nil,
		},
		{
			name: "note on and off map to pressed booleans",
			setupBindings: func(dev *devices.MidiDevice, calls *[]any) {
				dev.BindNote(devices.PathNote{Channel: 0, Key: 0x0B}, func(on bool) error {
					*calls = append(*calls, on)
					return nil
				})
			},
			inputMessages: []midi.Message{
				midi.NoteOn(0, 0x0B, 0x7F),
				midi.NoteOff(0, 0x0B),
			},
			expectCalls: []any{true, false},
		},
		{
			name: "note on with zero velocity is a release",
			setupBindings: func(dev *devices.MidiDevice, calls *[]any) {
				dev.BindNote(devices.PathNote{Channel: 0, Key: 0x0B}, func(on bool) error {
					*calls = append(*calls, on)
					return nil
				})
			},
			inputMessages: []midi.Message{midi.NoteOn(0, 0x0B, 0)},
			expectCalls:   []any{false},
		},
		{
			name: "pitch bend message triggers callback",
			setupBindings: func(dev *devices.MidiDevice, calls *[]any) {
				dev.BindPitchBend(devices.PathPitchBend{Channel: 1}, func(args devices.ArgsPitchBend) error {
					*calls = append(*calls, args.Absolute)
					return nil
				})
			},
			inputMessages: []midi.Message{midi.Pitchbend(1, 100)},
			expectCalls:   []any{uint16(8292)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := devtest.NewMockMIDIPort()
			dev := devices.NewMidiDevice(port, port)

			var calls []any
			tt.setupBindings(dev, &calls)

			require.NoError(t, dev.Run())
			defer dev.Close()

			for _, msg := range tt.inputMessages {
				port.SimulateReceive(msg)
			}
			assert.Equal(t, tt.expectCalls, calls)
		})
	}
}

func TestWriteIndicator(t *testing.T) {
	assert := assert.New(t)

	port := devtest.NewMockMIDIPort()
	dev := devices.NewMidiDevice(port, port)

	assert.NoError(dev.WriteIndicator(1, 0x42, 0x7F))
	sent := port.GetSentMessages()
	assert.Len(sent, 1)
	assert.Equal(midi.NoteOn(1, 0x42, 0x7F).Bytes(), sent[0].Bytes())
}

func TestRelistenAfterClose(t *testing.T) {
	port := devtest.NewMockMIDIPort()
	dev := devices.NewMidiDevice(port, port)

	calls := 0
	dev.BindCC(devices.PathCC{Channel: 0, Controller: 7}, func(devices.ArgsCC) error {
		calls++
		return nil
	})

	require.NoError(t, dev.Run())
	dev.Close()
	port.SimulateReceive(midi.ControlChange(0, 7, 1))
	assert.Equal(t, 0, calls, "stopped listener must not dispatch")

	// A second listen on the same port dispatches exactly once.
	require.NoError(t, dev.Run())
	defer dev.Close()
	port.SimulateReceive(midi.ControlChange(0, 7, 2))
	assert.Equal(t, 1, calls)
}

func TestMultipleCallbacksPerPath(t *testing.T) {
	port := devtest.NewMockMIDIPort()
	dev := devices.NewMidiDevice(port, port)

	calls := 0
	path := devices.PathCC{Channel: 0, Controller: 0x30}
	dev.BindCC(path, func(devices.ArgsCC) error { calls++; return nil })
	dev.BindCC(path, func(devices.ArgsCC) error { calls++; return nil })

	require.NoError(t, dev.Run())
	defer dev.Close()

	port.SimulateReceive(midi.ControlChange(0, 0x30, 10))
	assert.Equal(t, 2, calls)
}
