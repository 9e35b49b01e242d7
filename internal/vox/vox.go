// Package vox implements the voice-operated transmit controller: a small
// state machine over {idle, transmitting} driven by per-frame RMS
// amplitude, with a hangtime release and a hard-timeout safety governor.
// The amplitude metric and transition-logging style follow the bridge's
// energy-based silence detection in media_bridge.go.
package vox

import (
	"log/slog"
	"sync"
	"time"

	"usrpdmr/internal/dsp"
	"usrpdmr/internal/errkind"
	"usrpdmr/internal/frame"
	"usrpdmr/internal/stats"
)

// Config tunes the VOX controller.
type Config struct {
	Threshold     float64
	HangtimeMs    int64
	HardTimeoutMs int64
}

// DefaultConfig returns the §4.4/§6 defaults.
func DefaultConfig() Config {
	return Config{Threshold: 1000, HangtimeMs: 600, HardTimeoutMs: 60000}
}

// PTTCallback is invoked on every idle<->transmitting transition.
type PTTCallback func(on bool)

// Controller is the VOX state machine. Safe for use by a single pipeline
// goroutine; force_off may be called concurrently from the shutdown path,
// hence the mutex.
type Controller struct {
	cfg      Config
	callback PTTCallback
	counters *stats.Counters
	log      *slog.Logger

	mu                sync.Mutex
	transmitting      bool
	transmissionStart int64
	lastAbove         int64
	totalTxTimeMs     int64
}

// New builds a Controller. callback may be nil.
func New(cfg Config, callback PTTCallback, counters *stats.Counters, log *slog.Logger) *Controller {
	if callback == nil {
		callback = func(bool) {}
	}
	return &Controller{cfg: cfg, callback: callback, counters: counters, log: log}
}

// Process evaluates one frame at wall-clock time t (unix millis),
// annotates f.AmplitudeRMS and f.PTTActive, and returns whether the frame
// should be forwarded (false only for the hard-timeout frame itself).
func (c *Controller) Process(f *frame.AudioFrame, t int64) bool {
	samples := dsp.BytesToSamples(nil, f.PCM)
	amp := dsp.RMS(samples)
	f.AmplitudeRMS = amp

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transmitting && t-c.transmissionStart >= c.cfg.HardTimeoutMs {
		c.transmitting = false
		c.counters.VOXHardTimeouts.Add(1)
		c.log.Warn("vox: hard timeout, forcing PTT off",
			"error", errkind.Wrap(errkind.Safety, "transmission exceeded hard_timeout_ms=%d (ran %dms)", c.cfg.HardTimeoutMs, t-c.transmissionStart))
		c.callback(false)
		f.PTTActive = false
		return false
	}

	if amp > c.cfg.Threshold {
		if !c.transmitting {
			c.transmitting = true
			c.transmissionStart = t
			c.lastAbove = t
			c.counters.VOXActivations.Add(1)
			c.callback(true)
		} else {
			c.lastAbove = t
		}
	} else {
		if c.transmitting && t-c.lastAbove >= c.cfg.HangtimeMs {
			c.transmitting = false
			c.totalTxTimeMs += t - c.transmissionStart
			c.counters.VOXDeactivations.Add(1)
			c.callback(false)
		}
	}

	f.PTTActive = c.transmitting
	return true
}

// ForceOff unconditionally transitions to idle and fires the callback, for
// use at shutdown or on any fatal condition.
func (c *Controller) ForceOff() {
	c.mu.Lock()
	c.transmitting = false
	c.mu.Unlock()
	c.callback(false)
}

// TotalTxTimeMs returns the accumulated transmitting duration, for stats.
func (c *Controller) TotalTxTimeMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalTxTimeMs
}

// NowMs is a convenience for wall-clock milliseconds, used by callers
// driving Process.
func NowMs() int64 { return time.Now().UnixMilli() }
