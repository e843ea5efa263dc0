package surface

import (
	"github.com/gThomas99/controllers/devices"
	"github.com/gThomas99/controllers/engine"
)

// Note keys and CC numbers for the surface's controls. Per-deck controls
// live on the deck's own channel (deck index); global controls on channel 0.
const (
	notePlay       uint8 = 0x0B
	noteCue        uint8 = 0x0C
	noteSync       uint8 = 0x0D
	noteKeylock    uint8 = 0x0E
	notePfl        uint8 = 0x0F
	noteLoop       uint8 = 0x10
	noteLoopHalve  uint8 = 0x11
	noteLoopDouble uint8 = 0x12
	noteBendUp     uint8 = 0x13
	noteBendDown   uint8 = 0x14
	noteLoad       uint8 = 0x15
	noteHotcue1    uint8 = 0x16 // .. noteHotcue1+3
	noteJogTouch   uint8 = 0x1A
	noteShift      uint8 = 0x20
	noteShiftLock  uint8 = 0x21

	ccJogTurn    uint8 = 0x22
	ccVolume     uint8 = 0x30
	ccEQHigh     uint8 = 0x31
	ccEQMid      uint8 = 0x32
	ccEQLow      uint8 = 0x33
	ccGain       uint8 = 0x34
	ccCrossfader uint8 = 0x35
	ccBrowse     uint8 = 0x36
)

func onToValue(on bool) uint8 {
	if on {
		return valueOnFull
	}
	return valueOff
}

// BindTo wires the controller's entry points onto a MIDI device. This is the
// dispatch layer: it turns (channel, code, value) triples into control calls
// and leaves everything else to the device's unmapped-input logging.
func (c *Controller) BindTo(dev *devices.MidiDevice) {
	noteDeck := func(key uint8, handle func(engine.Deck, uint8) error) {
		for _, d := range engine.Decks {
			d := d
			dev.BindNote(devices.PathNote{Channel: uint8(d), Key: key}, func(on bool) error {
				return handle(d, onToValue(on))
			})
		}
	}
	ccDeck := func(controller uint8, handle func(engine.Deck, uint8) error) {
		for _, d := range engine.Decks {
			d := d
			dev.BindCC(devices.PathCC{Channel: uint8(d), Controller: controller}, func(args devices.ArgsCC) error {
				return handle(d, args.Value)
			})
		}
	}

	noteDeck(notePlay, c.HandlePlay)
	noteDeck(noteCue, c.HandleCue)
	noteDeck(noteSync, c.HandleSync)
	noteDeck(noteKeylock, c.HandleKeylock)
	noteDeck(notePfl, c.HandlePfl)
	noteDeck(noteLoop, c.HandleLoop)
	noteDeck(noteLoopHalve, c.HandleLoopHalve)
	noteDeck(noteLoopDouble, c.HandleLoopDouble)
	noteDeck(noteBendUp, c.HandleBendUp)
	noteDeck(noteBendDown, c.HandleBendDown)
	noteDeck(noteLoad, c.HandleLoad)
	noteDeck(noteJogTouch, c.HandleJogTouch)
	for slot := 1; slot <= NumHotcues; slot++ {
		slot := slot
		noteDeck(noteHotcue1+uint8(slot-1), func(d engine.Deck, v uint8) error {
			return c.HandleHotcue(d, slot, v)
		})
	}
	// The modifier exists on both sides of the surface; either drives the
	// single shift layer.
	noteDeck(noteShift, func(_ engine.Deck, v uint8) error {
		return c.HandleShift(v)
	})
	noteDeck(noteShiftLock, func(_ engine.Deck, v uint8) error {
		return c.HandleShiftLock(v)
	})

	ccDeck(ccJogTurn, c.HandleJogTurn)
	ccDeck(ccVolume, c.HandleVolume)
	ccDeck(ccGain, c.HandleGain)
	ccDeck(ccEQHigh, func(d engine.Deck, v uint8) error { return c.HandleEQ(d, EQHigh, v) })
	ccDeck(ccEQMid, func(d engine.Deck, v uint8) error { return c.HandleEQ(d, EQMid, v) })
	ccDeck(ccEQLow, func(d engine.Deck, v uint8) error { return c.HandleEQ(d, EQLow, v) })

	dev.BindCC(devices.PathCC{Channel: 0, Controller: ccCrossfader}, func(args devices.ArgsCC) error {
		return c.HandleCrossfader(args.Value)
	})
	dev.BindCC(devices.PathCC{Channel: 0, Controller: ccBrowse}, func(args devices.ArgsCC) error {
		return c.HandleBrowse(args.Value)
	})
}
