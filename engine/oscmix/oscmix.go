// Package oscmix implements the engine capability set against a mixing
// engine that exposes its control tree over OSC.
//
// Control addresses follow /<group>/<key>, lowercased, e.g.
// /channel1/play or /channel2/hotcue_1_activate. Scratch primitives use the
// /scratch subtree with the deck index as the first argument.
package oscmix

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/hypebeast/go-osc/osc"

	"github.com/gThomas99/controllers/engine"
	"github.com/gThomas99/controllers/logging"
)

var oscInLog, oscOutLog *slog.Logger

func init() {
	oscInLog = logging.Get(logging.OSC_IN)
	oscOutLog = logging.Get(logging.OSC_OUT)
}

// Bridge is an OSC-backed engine. Values mirror the engine's last reported
// state: reads are served from a local cache updated by incoming messages,
// writes are fire-and-forget sends.
type Bridge struct {
	*engine.WallScheduler

	client *osc.Client
	disp   *osc.StandardDispatcher
	server *osc.Server

	mu    sync.Mutex
	cache [engine.NumDecks]map[engine.Key]float64
}

var _ engine.Engine = (*Bridge)(nil)

// New creates a Bridge that sends to sendHost:sendPort and listens for
// engine state on listenAddr.
func New(sendHost string, sendPort int, listenAddr string) *Bridge {
	b := &Bridge{
		WallScheduler: engine.NewWallScheduler(),
		client:        osc.NewClient(sendHost, sendPort),
		disp:          osc.NewStandardDispatcher(),
	}
	for d := range b.cache {
		b.cache[d] = map[engine.Key]float64{}
	}
	b.server = &osc.Server{
		Addr:       listenAddr,
		Dispatcher: b.disp,
	}
	return b
}

// Run starts the listening server. It blocks; run it in its own goroutine.
func (b *Bridge) Run() error {
	oscInLog.Info("Starting engine OSC server", "addr", b.server.Addr)
	return b.server.ListenAndServe()
}

func addrFor(d engine.Deck, k engine.Key) string {
	return "/" + strings.ToLower(d.Group()) + "/" + strings.ToLower(string(k))
}

func (b *Bridge) send(addr string, args ...interface{}) {
	oscOutLog.Debug("Sending OSC message", "addr", addr, "args", args)
	msg := osc.NewMessage(addr)
	for _, a := range args {
		msg.Append(a)
	}
	if err := b.client.Send(msg); err != nil {
		oscOutLog.Error("failed to send OSC message", "addr", addr, "err", err)
	}
}

func (b *Bridge) Value(d engine.Deck, k engine.Key) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache[d][k]
}

func (b *Bridge) SetValue(d engine.Deck, k engine.Key, v float64) {
	b.mu.Lock()
	b.cache[d][k] = v
	b.mu.Unlock()
	b.send(addrFor(d, k), v)
}

func (b *Bridge) SetParameter(d engine.Deck, k engine.Key, v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	b.SetValue(d, k, v)
}

func (b *Bridge) Toggle(d engine.Deck, k engine.Key) {
	if b.Value(d, k) != 0 {
		b.SetValue(d, k, 0)
	} else {
		b.SetValue(d, k, 1)
	}
}

// Subscribe registers fn against the control's OSC address. Incoming values
// also refresh the read cache.
func (b *Bridge) Subscribe(d engine.Deck, k engine.Key, fn func(float64)) {
	addr := addrFor(d, k)
	err := b.disp.AddMsgHandler(addr, func(msg *osc.Message) {
		v, ok := coerceFloat(msg)
		if !ok {
			oscInLog.Error("uninterpretable OSC value", "addr", addr, "args", msg.Arguments)
			return
		}
		oscInLog.Debug("received OSC message", "addr", addr, "value", v)
		b.mu.Lock()
		b.cache[d][k] = v
		b.mu.Unlock()
		fn(v)
	})
	if err != nil {
		// The dispatcher only rejects malformed addresses; ours are static.
		oscInLog.Error("failed to register OSC handler", "addr", addr, "err", err)
	}
}

func (b *Bridge) ScratchEnable(d engine.Deck, ticksPerRev int, rpm, alpha, beta float64) {
	b.send(fmt.Sprintf("/scratch/%d/enable", d), int32(ticksPerRev), rpm, alpha, beta)
}

func (b *Bridge) ScratchTick(d engine.Deck, delta float64) {
	b.send(fmt.Sprintf("/scratch/%d/tick", d), delta)
}

func (b *Bridge) ScratchDisable(d engine.Deck) {
	b.send(fmt.Sprintf("/scratch/%d/disable", d))
}

// coerceFloat interprets the last argument of msg as a float64.
func coerceFloat(msg *osc.Message) (float64, bool) {
	if len(msg.Arguments) == 0 {
		return 0, false
	}
	switch val := msg.Arguments[len(msg.Arguments)-1].(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
