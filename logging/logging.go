package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"
)

type LogCategory string

const (
	META     LogCategory = "meta" // For logs about logging
	MIDI_IN  LogCategory = "midi_in"
	MIDI_OUT LogCategory = "midi_out"
	OSC_IN   LogCategory = "osc_in"
	OSC_OUT  LogCategory = "osc_out"
	APP      LogCategory = "app" // For application-specific logs (i.e. business logic)
)

func strToLogCategory(s string) (LogCategory, bool) {
	switch LogCategory(s) {
	case META, MIDI_IN, MIDI_OUT, OSC_IN, OSC_OUT, APP:
		return LogCategory(s), true
	default:
		return "", false
	}
}

// Internal state for loggers per category
var (
	mu               sync.RWMutex
	loggers          = map[LogCategory]*slog.Logger{}
	categoryLvls     = map[LogCategory]*slog.LevelVar{}
	defaultLogLevels = map[LogCategory]slog.Level{
		META:     slog.LevelInfo,
		MIDI_IN:  slog.LevelWarn,
		MIDI_OUT: slog.LevelWarn,
		OSC_IN:   slog.LevelWarn,
		OSC_OUT:  slog.LevelWarn,
		APP:      slog.LevelInfo,
	}
)

func levelVar(category LogCategory) *slog.LevelVar {
	lvlVar, ok := categoryLvls[category]
	if !ok {
		lvlVar = new(slog.LevelVar)
		lvlVar.Set(defaultLogLevels[category])
		categoryLvls[category] = lvlVar
	}
	return lvlVar
}

// Get returns a slog.Logger that always has the "category" attribute set.
// Each category gets its own logger instance.
func Get(category LogCategory) *slog.Logger {
	mu.RLock()
	l, ok := loggers[category]
	mu.RUnlock()
	if ok {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	// Double-check after locking
	if l, ok := loggers[category]; ok {
		return l
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelVar(category),
	})
	catLogger := slog.New(handler).With("category", category)
	loggers[category] = catLogger
	return catLogger
}

func SetCategoryLevel(category LogCategory, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	levelVar(category).Set(level)
}

func splitOscPath(path string) []string {
	return strings.Split(path, "/")[1:]
}

// remoteDispatcher routes OSC messages that adjust category log levels at runtime.
// Implements the osc.Dispatcher interface.
//
// Routes:
// /meta/logging/{category}/level as int where -4 is Debug, 0 is Info, 4 is Warn, 8 is Error
type remoteDispatcher struct{}

func (remoteDispatcher) Dispatch(packet osc.Packet) {
	msg, ok := packet.(*osc.Message)
	if !ok {
		return
	}
	handleSetCategoryLevel(msg)
}

func handleSetCategoryLevel(msg *osc.Message) {
	pathSegs := splitOscPath(msg.Address)
	if len(pathSegs) != 4 || pathSegs[0] != "meta" || pathSegs[1] != "logging" || pathSegs[3] != "level" {
		return
	}
	cat, ok := strToLogCategory(pathSegs[2])
	if !ok {
		Get(META).Info("Unrecognized log category in OSC message", "category", pathSegs[2])
		return
	}
	if len(msg.Arguments) == 0 {
		return
	}
	level, ok := msg.Arguments[0].(int32)
	if !ok {
		Get(META).Error("Invalid level type in OSC message", "expected", "int32", "got", fmt.Sprintf("%T", msg.Arguments[0]))
		return
	}
	Get(META).Info("Setting category level via OSC", "category", cat, "level", level)
	SetCategoryLevel(cat, slog.Level(level))
}

// EnableRemoteControl starts an OSC server on addr that accepts runtime log
// level changes. It blocks; run it in its own goroutine.
func EnableRemoteControl(addr string) error {
	Get(META).Info("Starting log-control OSC server", "addr", addr)
	server := &osc.Server{
		Addr:       addr,
		Dispatcher: remoteDispatcher{},
	}
	return server.ListenAndServe()
}
