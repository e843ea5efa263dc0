package oscmix

import (
	"testing"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"

	"github.com/gThomas99/controllers/engine"
)

func TestAddrFor(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("/channel1/play", addrFor(engine.DeckA, engine.KeyPlay))
	assert.Equal("/channel2/hotcue_3_activate", addrFor(engine.DeckB, engine.HotcueActivate(3)))
	assert.Equal("/channel1/loadselectedtrack", addrFor(engine.DeckA, engine.KeyLoadTrack))
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name   string
		args   []interface{}
		want   float64
		wantOK bool
	}{
		{"float64", []interface{}{42.5}, 42.5, true},
		{"float32", []interface{}{float32(1.5)}, 1.5, true},
		{"int32", []interface{}{int32(7)}, 7, true},
		{"int64", []interface{}{int64(-3)}, -3, true},
		{"bool true", []interface{}{true}, 1, true},
		{"bool false", []interface{}{false}, 0, true},
		{"numeric string", []interface{}{"0.25"}, 0.25, true},
		{"last argument wins", []interface{}{int32(1), 2.0}, 2, true},
		{"no arguments", nil, 0, false},
		{"garbage string", []interface{}{"sideways"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := osc.NewMessage("/test")
			for _, a := range tt.args {
				msg.Append(a)
			}
			got, ok := coerceFloat(msg)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValueCacheUpdatedBySetValue(t *testing.T) {
	assert := assert.New(t)
	b := New("127.0.0.1", 9000, "127.0.0.1:9001")

	// Sends are fire-and-forget; the local cache reflects the write even
	// with no engine listening.
	b.SetValue(engine.DeckA, engine.KeyVolume, 0.5)
	assert.Equal(0.5, b.Value(engine.DeckA, engine.KeyVolume))

	b.SetParameter(engine.DeckA, engine.KeyVolume, 2.0)
	assert.Equal(1.0, b.Value(engine.DeckA, engine.KeyVolume))

	b.Toggle(engine.DeckA, engine.KeyPfl)
	assert.Equal(1.0, b.Value(engine.DeckA, engine.KeyPfl))
	b.Toggle(engine.DeckA, engine.KeyPfl)
	assert.Equal(0.0, b.Value(engine.DeckA, engine.KeyPfl))
}
