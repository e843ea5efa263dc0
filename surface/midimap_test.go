package surface_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	midi "gitlab.com/gomidi/midi/v2"

	"github.com/gThomas99/controllers/devices"
	devtest "github.com/gThomas99/controllers/devices/devicestesting"
	"github.com/gThomas99/controllers/engine"
	"github.com/gThomas99/controllers/engine/enginetest"
	"github.com/gThomas99/controllers/surface"
)

func setup(t *testing.T) (*enginetest.Fake, *devtest.MockMIDIPort) {
	t.Helper()
	port := devtest.NewMockMIDIPort()
	dev := devices.NewMidiDevice(port, port)
	fake := enginetest.NewFake()

	ctrl, err := surface.New(fake, dev)
	require.NoError(t, err)
	ctrl.BindTo(dev)
	require.NoError(t, dev.Run())
	t.Cleanup(func() {
		ctrl.Shutdown()
		dev.Close()
	})
	return fake, port
}

func TestPlayButtonOverMidi(t *testing.T) {
	fake, port := setup(t)

	port.SimulateReceive(midi.NoteOn(0, 0x0B, 0x7F))
	port.SimulateReceive(midi.NoteOff(0, 0x0B))
	assert.Equal(t, 1.0, fake.Value(engine.DeckA, engine.KeyPlay))
}

func TestSecondDeckRoutesByChannel(t *testing.T) {
	fake, port := setup(t)

	port.SimulateReceive(midi.ControlChange(1, 0x30, 127))
	assert.Equal(t, 1.0, fake.Value(engine.DeckB, engine.KeyVolume))
	assert.Equal(t, 0.0, fake.Value(engine.DeckA, engine.KeyVolume))
}

func TestShiftedCueOverMidi(t *testing.T) {
	fake, port := setup(t)

	port.SimulateReceive(midi.NoteOn(1, 0x20, 0x7F)) // shift on deck B's side
	port.SimulateReceive(midi.NoteOn(0, 0x0C, 0x7F)) // cue on deck A
	port.SimulateReceive(midi.NoteOff(0, 0x0C))
	port.SimulateReceive(midi.NoteOff(1, 0x20))

	assert.Equal(t, 1.0, fake.Value(engine.DeckA, engine.KeyCueGotoAndPlay))
	assert.Equal(t, 0.0, fake.Value(engine.DeckA, engine.KeyCueDefault))
}

func TestJogOverMidi(t *testing.T) {
	fake, port := setup(t)

	port.SimulateReceive(midi.NoteOn(0, 0x1A, 0x7F)) // touch down
	port.SimulateReceive(midi.ControlChange(0, 0x22, 0x43))
	assert.True(t, fake.ScratchEnabled(engine.DeckA))
	assert.Equal(t, []float64{3}, fake.ScratchTicks(engine.DeckA))
}

func TestEngineChangeLightsLED(t *testing.T) {
	fake, port := setup(t)

	fake.SetValue(engine.DeckB, engine.KeyPlayIndicator, 1)
	found := false
	for _, msg := range port.GetSentMessages() {
		var ch, key, vel uint8
		if msg.GetNoteOn(&ch, &key, &vel) && ch == 1 && key == 0x42 && vel == 0x7F {
			found = true
		}
	}
	assert.True(t, found, "engine state must reach the deck B play LED")
}

func TestUnmappedInputIsIgnored(t *testing.T) {
	fake, port := setup(t)

	port.SimulateReceive(midi.NoteOn(5, 0x0B, 0x7F)) // no such channel
	port.SimulateReceive(midi.ControlChange(0, 0x70, 64))
	assert.Equal(t, 0.0, fake.Value(engine.DeckA, engine.KeyPlay))
}
