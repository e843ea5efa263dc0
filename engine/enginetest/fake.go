// Package enginetest provides an in-memory Engine with a manually advanced
// clock, so tests can drive timer-dependent behavior deterministically.
package enginetest

import (
	"sync"
	"time"

	"github.com/gThomas99/controllers/engine"
)

// ScratchParams records the kinematics of the most recent ScratchEnable call.
type ScratchParams struct {
	TicksPerRev int
	RPM         float64
	Alpha       float64
	Beta        float64
}

type fakeTimer struct {
	id      engine.TimerID
	due     time.Time
	period  time.Duration
	oneShot bool
	fn      func()
}

// Fake is an in-memory engine. Values live in per-deck maps, subscriptions
// fire synchronously on every write, and timers fire only when the test
// advances the clock.
type Fake struct {
	mu      sync.Mutex
	clock   time.Time
	values  [engine.NumDecks]map[engine.Key]float64
	subs    [engine.NumDecks]map[engine.Key][]func(float64)
	scratch [engine.NumDecks]bool
	params  [engine.NumDecks]ScratchParams
	ticks   [engine.NumDecks][]float64
	timers  []*fakeTimer
}

var _ engine.Engine = (*Fake)(nil)

func NewFake() *Fake {
	f := &Fake{
		// An arbitrary fixed epoch keeps failures reproducible.
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for d := range f.values {
		f.values[d] = map[engine.Key]float64{}
		f.subs[d] = map[engine.Key][]func(float64){}
	}
	return f
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clock
}

func (f *Fake) Value(d engine.Deck, k engine.Key) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[d][k]
}

func (f *Fake) SetValue(d engine.Deck, k engine.Key, v float64) {
	f.mu.Lock()
	f.values[d][k] = v
	subs := append([]func(float64){}, f.subs[d][k]...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

func (f *Fake) SetParameter(d engine.Deck, k engine.Key, v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	f.SetValue(d, k, v)
}

func (f *Fake) Toggle(d engine.Deck, k engine.Key) {
	if f.Value(d, k) != 0 {
		f.SetValue(d, k, 0)
	} else {
		f.SetValue(d, k, 1)
	}
}

func (f *Fake) Subscribe(d engine.Deck, k engine.Key, fn func(float64)) {
	f.mu.Lock()
	f.subs[d][k] = append(f.subs[d][k], fn)
	f.mu.Unlock()
}

func (f *Fake) ScratchEnable(d engine.Deck, ticksPerRev int, rpm, alpha, beta float64) {
	f.mu.Lock()
	f.scratch[d] = true
	f.params[d] = ScratchParams{ticksPerRev, rpm, alpha, beta}
	f.mu.Unlock()
}

func (f *Fake) ScratchTick(d engine.Deck, delta float64) {
	f.mu.Lock()
	f.ticks[d] = append(f.ticks[d], delta)
	f.mu.Unlock()
}

func (f *Fake) ScratchDisable(d engine.Deck) {
	f.mu.Lock()
	f.scratch[d] = false
	f.mu.Unlock()
}

// ScratchEnabled reports whether the deck is currently in scratch mode.
func (f *Fake) ScratchEnabled(d engine.Deck) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scratch[d]
}

// ScratchParamsFor returns the kinematics of the last ScratchEnable on d.
func (f *Fake) ScratchParamsFor(d engine.Deck) ScratchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params[d]
}

// ScratchTicks returns all deltas forwarded to the deck's scratch control.
func (f *Fake) ScratchTicks(d engine.Deck) []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64{}, f.ticks[d]...)
}

func (f *Fake) ScheduleTimer(delay time.Duration, fn func(), oneShot bool) engine.TimerID {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{
		id:      engine.NewTimerID(),
		due:     f.clock.Add(delay),
		period:  delay,
		oneShot: oneShot,
		fn:      fn,
	}
	f.timers = append(f.timers, t)
	return t.id
}

func (f *Fake) CancelTimer(id engine.TimerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.timers {
		if t.id == id {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}

// PendingTimers reports how many timers are outstanding.
func (f *Fake) PendingTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// Advance moves the clock forward by d, firing due timers in deadline order.
// A timer callback may schedule or cancel further timers; newly scheduled
// timers fire within the same Advance if they come due before the target.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.clock.Add(d)
	for {
		t := f.nextDueLocked(target)
		if t == nil {
			break
		}
		f.clock = t.due
		if t.oneShot {
			f.removeLocked(t.id)
		} else {
			t.due = t.due.Add(t.period)
		}
		f.mu.Unlock()
		t.fn()
		f.mu.Lock()
	}
	f.clock = target
	f.mu.Unlock()
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTimer {
	var next *fakeTimer
	for _, t := range f.timers {
		if t.due.After(target) {
			continue
		}
		if next == nil || t.due.Before(next.due) {
			next = t
		}
	}
	return next
}

func (f *Fake) removeLocked(id engine.TimerID) {
	for i, t := range f.timers {
		if t.id == id {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}
