// Package engine defines the capability set the control surface consumes from
// the mixing engine: named control values per deck, change subscriptions,
// scratch primitives, and the timer primitive used for all deferred work.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Deck identifies one of the two physical deck instances.
type Deck uint8

const (
	DeckA Deck = iota
	DeckB

	NumDecks = 2
)

// Decks lists both decks for range loops over fixed-size per-deck tables.
var Decks = [NumDecks]Deck{DeckA, DeckB}

// Group returns the engine-side group key for the deck.
func (d Deck) Group() string {
	return fmt.Sprintf("Channel%d", d+1)
}

func (d Deck) String() string { return d.Group() }

// Key names an engine control. Keys are typed so that per-deck state lives in
// enum-indexed tables and only the engine boundary deals in names.
type Key string

const (
	KeyPlay           Key = "play"
	KeyPlayIndicator  Key = "play_indicator"
	KeyCueDefault     Key = "cue_default"
	KeyCueGotoAndPlay Key = "cue_gotoandplay"
	KeyCueIndicator   Key = "cue_indicator"
	KeySyncEnabled    Key = "sync_enabled"
	KeySyncMaster     Key = "sync_master"
	KeyKeylock        Key = "keylock"
	KeyRateRange      Key = "rateRange"
	KeyRateTempUp     Key = "rate_temp_up"
	KeyRateTempDown   Key = "rate_temp_down"
	KeyRatePermUp     Key = "rate_perm_up"
	KeyRatePermDown   Key = "rate_perm_down"
	KeyJog            Key = "jog"
	KeyPlayPosition   Key = "playposition"
	KeySlipEnabled    Key = "slip_enabled"
	KeyLoopToggle     Key = "beatloop_activate"
	KeyLoopEnabled    Key = "loop_enabled"
	KeyLoopHalve      Key = "loop_halve"
	KeyLoopDouble     Key = "loop_double"
	KeyVolume         Key = "volume"
	KeyPregain        Key = "pregain"
	KeyFilterHigh     Key = "filterHigh"
	KeyFilterMid      Key = "filterMid"
	KeyFilterLow      Key = "filterLow"
	KeyPfl            Key = "pfl"
	KeyCrossfader     Key = "crossfader"
	KeyLoadTrack      Key = "LoadSelectedTrack"
	KeyEject          Key = "eject"
	KeySelectTrack    Key = "SelectTrackKnob"
)

// HotcueActivate returns the activation key for hotcue slot n (1-based).
func HotcueActivate(n int) Key {
	return Key(fmt.Sprintf("hotcue_%d_activate", n))
}

// HotcueClear returns the clear key for hotcue slot n (1-based).
func HotcueClear(n int) Key {
	return Key(fmt.Sprintf("hotcue_%d_clear", n))
}

// HotcueEnabled returns the set-indicator key for hotcue slot n (1-based).
func HotcueEnabled(n int) Key {
	return Key(fmt.Sprintf("hotcue_%d_enabled", n))
}

// TimerID is a stable handle for a scheduled timer. Handles are unique per
// schedule call; a rescheduled timer gets a fresh handle so stale fires can
// be told apart from live ones.
type TimerID uuid.UUID

// NoTimer is the zero TimerID, held by any slot with no outstanding timer.
var NoTimer TimerID

// NewTimerID returns a fresh, unique timer handle.
func NewTimerID() TimerID { return TimerID(uuid.New()) }

// Scheduler is the timer primitive. Timer callbacks interleave with later
// input events in real time, never with the handler that scheduled them.
type Scheduler interface {
	// ScheduleTimer arranges for fn to run after delay. With oneShot false
	// the timer repeats every delay until cancelled.
	ScheduleTimer(delay time.Duration, fn func(), oneShot bool) TimerID
	// CancelTimer stops the timer. Cancelling an unknown or already-fired
	// handle is a no-op.
	CancelTimer(id TimerID)
	// Now reports the scheduler's current time. Inter-event timing is always
	// measured against this clock so fake schedulers stay deterministic.
	Now() time.Time
}

// Engine is the full capability set the surface requires from the mixing
// engine. All calls are fire-and-forget or synchronous reads.
type Engine interface {
	Scheduler

	// Value reads the current value of a control.
	Value(d Deck, k Key) float64
	// SetValue writes a control value.
	SetValue(d Deck, k Key, v float64)
	// SetParameter writes a normalized 0..1 control value.
	SetParameter(d Deck, k Key, v float64)
	// Toggle flips a boolean-valued control.
	Toggle(d Deck, k Key)
	// Subscribe registers fn to run on every change of the control.
	Subscribe(d Deck, k Key, fn func(float64))

	// ScratchEnable puts the deck's virtual platter under direct wheel
	// control with the given kinematics.
	ScratchEnable(d Deck, ticksPerRev int, rpm, alpha, beta float64)
	// ScratchTick advances the platter by delta wheel ticks.
	ScratchTick(d Deck, delta float64)
	// ScratchDisable returns the deck to normal playback control.
	ScratchDisable(d Deck)
}
