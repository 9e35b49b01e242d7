// Package interlock implements the echo interlock shared between the RX
// and TX pipelines: RX marks itself recently active, TX consults that
// state just before the VOX decision to attenuate or mute outgoing audio.
// State is held in atomics rather than behind a mutex, generalizing the
// counter style used for cross-goroutine state in media_bridge.go.
package interlock

import (
	"sync/atomic"
	"time"
)

// Config tunes the interlock.
type Config struct {
	Enable        bool
	RxTimeoutMs   int64
	MuteGainLinear float64
}

// DefaultConfig returns the §6 defaults (disabled, 500ms window, full
// mute).
func DefaultConfig() Config {
	return Config{Enable: false, RxTimeoutMs: 500, MuteGainLinear: 0}
}

// monoEpoch is taken at process start; durations measured from it use Go's
// monotonic clock reading, so wall-clock jumps do not affect the window.
var monoEpoch = time.Now()

// Interlock is the shared echo-interlock state. Safe for concurrent use
// from both the RX and TX pipeline goroutines.
type Interlock struct {
	cfg      Config
	rxActive atomic.Bool
	rxLastTs atomic.Int64 // nanoseconds since monoEpoch
}

// New builds an Interlock.
func New(cfg Config) *Interlock {
	return &Interlock{cfg: cfg}
}

// NoteRxActive records that an RX frame was just emitted by the jitter
// buffer. Called for every RX frame.
func (i *Interlock) NoteRxActive() {
	i.rxActive.Store(true)
	i.rxLastTs.Store(int64(time.Since(monoEpoch)))
}

// IsTxMuted reports whether TX should be attenuated right now. If the RX
// activity window has elapsed it clears rxActive first. Always false when
// the interlock is disabled.
func (i *Interlock) IsTxMuted() bool {
	if !i.cfg.Enable {
		return false
	}
	lastTs := i.rxLastTs.Load()
	if lastTs != 0 {
		elapsed := (time.Since(monoEpoch) - time.Duration(lastTs)) / time.Millisecond
		if int64(elapsed) > i.cfg.RxTimeoutMs {
			i.rxActive.Store(false)
		}
	}
	return i.rxActive.Load()
}

// TxGain returns g attenuated by the configured mute gain when muted,
// otherwise g unchanged.
func (i *Interlock) TxGain(g float64, muted bool) float64 {
	if muted {
		return g * i.cfg.MuteGainLinear
	}
	return g
}
