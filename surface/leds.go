package surface

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gThomas99/controllers/engine"
)

// Symbolic LED names.
const (
	LEDPlay      = "play"
	LEDCue       = "cue"
	LEDSync      = "sync"
	LEDKeylock   = "keylock"
	LEDPfl       = "pfl"
	LEDLoop      = "loop"
	LEDLoad      = "load"
	LEDScratch   = "scratch"
	LEDShiftLock = "shift_lock"
	LEDHotcue1   = "hotcue_1"
	LEDHotcue2   = "hotcue_2"
	LEDHotcue3   = "hotcue_3"
	LEDHotcue4   = "hotcue_4"
)

// Device status bytes. Most indicators share a tri-state encoding; a few use
// a distinct on/off byte pair instead (ReflectAlt).
const (
	statusOff   uint8 = 0x00
	statusOn    uint8 = 0x7F
	statusBlink uint8 = 0x02

	altStatusOn  uint8 = 0x64
	altStatusOff uint8 = 0x4D
)

type ledDescriptor struct {
	code  uint8
	decks []engine.Deck
}

type ledKey struct {
	deck engine.Deck
	code uint8
}

// LEDManager owns all indicator writes. Every write passes a dedup cache
// keyed by (deck, code); identical consecutive writes never reach the
// device. The cache persists until ResetAll.
type LEDManager struct {
	out   OutputPort
	sched engine.Scheduler
	log   *slog.Logger

	table map[string]ledDescriptor

	mu     sync.Mutex
	last   map[ledKey]uint8
	blinks map[engine.TimerID]struct{}
	// gen invalidates in-flight blink chains: a step only acts if the
	// manager has not been reset since the blink started.
	gen uint64
}

func NewLEDManager(out OutputPort, sched engine.Scheduler, log *slog.Logger) *LEDManager {
	m := &LEDManager{
		out:   out,
		sched: sched,
		log:   log,
		table:  map[string]ledDescriptor{},
		last:   map[ledKey]uint8{},
		blinks: map[engine.TimerID]struct{}{},
	}
	m.buildTable()
	return m
}

func (m *LEDManager) buildTable() {
	both := []engine.Deck{engine.DeckA, engine.DeckB}
	perDeck := func(name string, code uint8) {
		m.table[name] = ledDescriptor{code: code, decks: both}
	}
	perDeck(LEDPlay, 0x42)
	perDeck(LEDCue, 0x43)
	perDeck(LEDSync, 0x44)
	perDeck(LEDKeylock, 0x45)
	perDeck(LEDPfl, 0x46)
	perDeck(LEDLoop, 0x47)
	perDeck(LEDLoad, 0x48)
	perDeck(LEDHotcue1, 0x49)
	perDeck(LEDHotcue2, 0x4A)
	perDeck(LEDHotcue3, 0x4B)
	perDeck(LEDHotcue4, 0x4C)
	perDeck(LEDScratch, 0x4E)
	// The lock indicator is one physical LED; it is addressed through
	// DeckA's channel only.
	m.table[LEDShiftLock] = ledDescriptor{code: 0x40, decks: []engine.Deck{engine.DeckA}}
}

// normalizeStatus maps the accepted status forms to a device byte.
func normalizeStatus(status any) (uint8, bool) {
	switch s := status.(type) {
	case bool:
		if s {
			return statusOn, true
		}
		return statusOff, true
	case int:
		switch s {
		case 0:
			return statusOff, true
		case 1:
			return statusOn, true
		case 2:
			return statusBlink, true
		}
	case float64:
		return normalizeStatus(int(s))
	case string:
		switch s {
		case "off":
			return statusOff, true
		case "on":
			return statusOn, true
		case "blink":
			return statusBlink, true
		}
	case uint8:
		return s, true
	}
	return 0, false
}

// Set writes the given status to the named LED. With no decks given the
// write goes to every deck the LED applies to. Unknown names and
// unrecognized statuses are no-ops.
func (m *LEDManager) Set(name string, status any, decks ...engine.Deck) {
	desc, ok := m.table[name]
	if !ok {
		m.log.Debug("unknown LED name", "name", name)
		return
	}
	b, ok := normalizeStatus(status)
	if !ok {
		m.log.Debug("unrecognized LED status", "name", name, "status", status)
		return
	}
	m.write(desc, b, decks)
}

// BulkSet applies several writes in one call.
func (m *LEDManager) BulkSet(statuses map[string]any) {
	for name, status := range statuses {
		m.Set(name, status)
	}
}

// Reflect maps an engine value onto the LED: nonzero is on, zero is off.
func (m *LEDManager) Reflect(name string, engineValue float64, decks ...engine.Deck) {
	m.Set(name, engineValue != 0, decks...)
}

// ReflectAlt is Reflect for indicators using the distinct on/off byte pair
// instead of the shared tri-state encoding.
func (m *LEDManager) ReflectAlt(name string, engineValue float64, decks ...engine.Deck) {
	desc, ok := m.table[name]
	if !ok {
		m.log.Debug("unknown LED name", "name", name)
		return
	}
	b := altStatusOff
	if engineValue != 0 {
		b = altStatusOn
	}
	m.write(desc, b, decks)
}

// Blink flips the LED every period for cycles total flips, then stops on
// whatever state the last flip produced. ResetAll cancels a blink in flight.
// Overlapping blinks on the same (deck, code) key share the dedup cache and
// will flicker; callers that care should let one blink finish first.
func (m *LEDManager) Blink(name string, period time.Duration, cycles int, decks ...engine.Deck) {
	if _, ok := m.table[name]; !ok {
		m.log.Debug("unknown LED name", "name", name)
		return
	}
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()
	state := true
	m.Set(name, state, decks...)
	remaining := cycles
	var step func()
	step = func() {
		if !m.blinkLive(gen) {
			return
		}
		state = !state
		m.Set(name, state, decks...)
		remaining--
		if remaining > 0 {
			m.armBlink(gen, period, step)
		}
	}
	if remaining > 0 {
		m.armBlink(gen, period, step)
	}
}

func (m *LEDManager) blinkLive(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen
}

// armBlink schedules the next blink step and records its handle so ResetAll
// can cancel it. A reset between the schedule and the record loses the race
// on purpose: the fresh timer is cancelled right here.
func (m *LEDManager) armBlink(gen uint64, period time.Duration, step func()) {
	id := m.sched.ScheduleTimer(period, step, true)
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.sched.CancelTimer(id)
		return
	}
	m.blinks[id] = struct{}{}
	m.mu.Unlock()
}

// ResetAll clears the dedup cache, cancels any blink in flight, and turns
// every LED off. Used at shutdown and at the end of the startup self-test.
func (m *LEDManager) ResetAll() {
	m.mu.Lock()
	m.gen++
	m.last = map[ledKey]uint8{}
	ids := make([]engine.TimerID, 0, len(m.blinks))
	for id := range m.blinks {
		ids = append(ids, id)
	}
	m.blinks = map[engine.TimerID]struct{}{}
	m.mu.Unlock()
	for _, id := range ids {
		m.sched.CancelTimer(id)
	}
	for name := range m.table {
		m.Set(name, false)
	}
}

// AllOn lights every LED, for the startup self-test.
func (m *LEDManager) AllOn() {
	for name := range m.table {
		m.Set(name, true)
	}
}

func (m *LEDManager) write(desc ledDescriptor, status uint8, decks []engine.Deck) {
	targets := decks
	if len(targets) == 0 {
		targets = desc.decks
	}
	for _, d := range targets {
		if !appliesTo(desc, d) {
			continue
		}
		key := ledKey{deck: d, code: desc.code}
		m.mu.Lock()
		prev, seen := m.last[key]
		if seen && prev == status {
			m.mu.Unlock()
			continue
		}
		m.last[key] = status
		m.mu.Unlock()
		if err := m.out.WriteIndicator(uint8(d), desc.code, status); err != nil {
			m.log.Error("indicator write failed", "deck", d, "code", desc.code, "err", err)
		}
	}
}

func appliesTo(desc ledDescriptor, d engine.Deck) bool {
	for _, dd := range desc.decks {
		if dd == d {
			return true
		}
	}
	return false
}
