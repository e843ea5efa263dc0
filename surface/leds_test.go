package surface

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gThomas99/controllers/engine"
	"github.com/gThomas99/controllers/engine/enginetest"
	"github.com/gThomas99/controllers/logging"
)

type indicatorWrite struct {
	channel uint8
	code    uint8
	status  uint8
}

// fakeOutput records indicator writes for assertions.
type fakeOutput struct {
	mu     sync.Mutex
	writes []indicatorWrite
}

func (f *fakeOutput) WriteIndicator(channel, code, status uint8) error {
	f.mu.Lock()
	f.writes = append(f.writes, indicatorWrite{channel, code, status})
	f.mu.Unlock()
	return nil
}

func (f *fakeOutput) all() []indicatorWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]indicatorWrite{}, f.writes...)
}

func (f *fakeOutput) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeOutput) reset() {
	f.mu.Lock()
	f.writes = nil
	f.mu.Unlock()
}

func newTestLEDs(t *testing.T) (*LEDManager, *fakeOutput, *enginetest.Fake) {
	t.Helper()
	out := &fakeOutput{}
	fake := enginetest.NewFake()
	return NewLEDManager(out, fake, logging.Get(logging.APP)), out, fake
}

func TestSetIsDeduplicated(t *testing.T) {
	assert := assert.New(t)
	leds, out, _ := newTestLEDs(t)

	leds.Set(LEDPlay, "on", engine.DeckB)
	leds.Set(LEDPlay, "on", engine.DeckB)
	assert.Equal(1, out.count(), "identical consecutive writes must be suppressed")

	leds.Set(LEDPlay, "off", engine.DeckB)
	assert.Equal(2, out.count())
	writes := out.all()
	assert.Equal(indicatorWrite{1, 0x42, 0x7F}, writes[0])
	assert.Equal(indicatorWrite{1, 0x42, 0x00}, writes[1])
}

func TestSetOffTwiceWritesOnce(t *testing.T) {
	assert := assert.New(t)
	leds, out, _ := newTestLEDs(t)

	leds.Set(LEDCue, "off", engine.DeckA)
	leds.Set(LEDCue, "off", engine.DeckA)
	assert.Equal(1, out.count())
}

func TestStatusNormalization(t *testing.T) {
	assert := assert.New(t)
	leds, out, _ := newTestLEDs(t)

	leds.Set(LEDSync, true, engine.DeckA)
	leds.Set(LEDSync, 0, engine.DeckA)
	leds.Set(LEDSync, 2, engine.DeckA)
	leds.Set(LEDSync, "on", engine.DeckA)

	statuses := []uint8{}
	for _, w := range out.all() {
		statuses = append(statuses, w.status)
	}
	assert.Equal([]uint8{0x7F, 0x00, 0x02, 0x7F}, statuses)

	// Garbage statuses are dropped.
	leds.Set(LEDSync, "sideways", engine.DeckA)
	leds.Set(LEDSync, 7, engine.DeckA)
	assert.Equal(4, out.count())
}

func TestUnknownNameIsNoOp(t *testing.T) {
	leds, out, _ := newTestLEDs(t)
	leds.Set("no_such_led", "on")
	leds.Reflect("no_such_led", 1)
	leds.Blink("no_such_led", time.Second, 2)
	assert.Equal(t, 0, out.count())
}

func TestSetWithoutTargetHitsAllApplicableDecks(t *testing.T) {
	assert := assert.New(t)
	leds, out, _ := newTestLEDs(t)

	leds.Set(LEDPlay, "on")
	assert.Equal(2, out.count(), "per-deck LED with no target writes both decks")

	out.reset()
	leds.Set(LEDShiftLock, "on")
	assert.Equal(1, out.count(), "shared LED has a single physical instance")
}

func TestReflectAltUsesDistinctBytePair(t *testing.T) {
	assert := assert.New(t)
	leds, out, _ := newTestLEDs(t)

	leds.ReflectAlt(LEDHotcue1, 1, engine.DeckA)
	leds.ReflectAlt(LEDHotcue1, 0, engine.DeckA)
	writes := out.all()
	assert.Equal(uint8(0x64), writes[0].status)
	assert.Equal(uint8(0x4D), writes[1].status)
}

func TestBulkSet(t *testing.T) {
	leds, out, _ := newTestLEDs(t)
	leds.BulkSet(map[string]any{
		LEDPlay: "on",
		LEDCue:  "off",
	})
	assert.Equal(t, 4, out.count()) // two names, two decks each
}

func TestBlinkFlipsAndSelfCancels(t *testing.T) {
	assert := assert.New(t)
	leds, out, fake := newTestLEDs(t)

	leds.Blink(LEDLoad, 100*time.Millisecond, 3, engine.DeckA)
	assert.Equal(1, out.count(), "initial on write")

	fake.Advance(100 * time.Millisecond)
	fake.Advance(100 * time.Millisecond)
	fake.Advance(100 * time.Millisecond)
	assert.Equal(4, out.count(), "three flips after the initial write")
	assert.Equal(0, fake.PendingTimers(), "blink must self-cancel")

	writes := out.all()
	statuses := []uint8{}
	for _, w := range writes {
		statuses = append(statuses, w.status)
	}
	assert.Equal([]uint8{0x7F, 0x00, 0x7F, 0x00}, statuses)
}

func TestResetAllCancelsBlinkInFlight(t *testing.T) {
	assert := assert.New(t)
	leds, out, fake := newTestLEDs(t)

	leds.Blink(LEDLoad, 100*time.Millisecond, 4, engine.DeckA)
	leds.ResetAll()
	assert.Equal(0, fake.PendingTimers(), "reset must cancel blink timers")

	before := out.count()
	fake.Advance(time.Second)
	assert.Equal(before, out.count(), "no writes after the blink is cancelled")
}

func TestResetAllClearsCache(t *testing.T) {
	assert := assert.New(t)
	leds, out, _ := newTestLEDs(t)

	leds.Set(LEDPlay, "on", engine.DeckA)
	leds.Set(LEDPlay, "off", engine.DeckA)
	out.reset()

	leds.ResetAll()
	// The cache was cleared: the off write goes through even though off was
	// the last value sent for the key.
	found := false
	for _, w := range out.all() {
		if w.channel == 0 && w.code == 0x42 && w.status == 0x00 {
			found = true
		}
	}
	assert.True(found, "reset must rewrite every LED off")
}
