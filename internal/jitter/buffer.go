// Package jitter implements the receive jitter buffer: a bounded FIFO
// with a phase-locked 20ms emission clock. It trusts arrival order (no
// reordering by sequence, matching the loopback assumption) and follows
// the bridge's playout-buffer FIFO shape, simplified to the spec's
// reset-on-underrun pacing rather than the reference's drift/time-stretch
// correction.
package jitter

import (
	"context"
	"log/slog"
	"time"

	"usrpdmr/internal/frame"
	"usrpdmr/internal/stats"
)

// Config tunes the jitter buffer.
type Config struct {
	TargetDepth int
	FrameTimeMs int
}

// DefaultConfig returns the §4.5/§6 defaults.
func DefaultConfig() Config {
	return Config{TargetDepth: 3, FrameTimeMs: 20}
}

// Buffer is the bounded FIFO plus emission-clock state. Not safe for
// concurrent use; it is driven by a single service-loop goroutine.
type Buffer struct {
	cfg      Config
	delta    time.Duration
	buf      []frame.AudioFrame
	lastEmit time.Time
	counters *stats.Counters
	log      *slog.Logger
}

// New builds a Buffer.
func New(cfg Config, counters *stats.Counters, log *slog.Logger) *Buffer {
	if cfg.TargetDepth <= 0 {
		cfg.TargetDepth = 3
	}
	if cfg.FrameTimeMs <= 0 {
		cfg.FrameTimeMs = 20
	}
	return &Buffer{
		cfg:      cfg,
		delta:    time.Duration(cfg.FrameTimeMs) * time.Millisecond,
		counters: counters,
		log:      log,
	}
}

// drain pulls frames from in (non-blocking) into the buffer until either
// in is empty or the buffer reaches target depth.
func (b *Buffer) drain(in <-chan frame.AudioFrame) {
	for len(b.buf) < b.cfg.TargetDepth {
		select {
		case f, ok := <-in:
			if !ok {
				return
			}
			b.buf = append(b.buf, f)
		default:
			return
		}
	}
}

// trimOverflow pops the oldest frames while the buffer exceeds the hard
// cap of 2*targetDepth, counting each as an overflow drop.
func (b *Buffer) trimOverflow() {
	cap2 := 2 * b.cfg.TargetDepth
	for len(b.buf) > cap2 {
		b.buf = b.buf[1:]
		b.counters.JitterOverflows.Add(1)
	}
}

// tick runs one service-loop iteration: drain, trim, and the emission
// clock. It returns an emitted frame and true if one was due this tick.
func (b *Buffer) tick(in <-chan frame.AudioFrame, now time.Time) (frame.AudioFrame, bool) {
	b.drain(in)
	b.trimOverflow()

	if b.lastEmit.IsZero() {
		if len(b.buf) > 0 {
			f := b.buf[0]
			b.buf = b.buf[1:]
			b.lastEmit = now
			return f, true
		}
		return frame.AudioFrame{}, false
	}

	if now.Sub(b.lastEmit) >= b.delta {
		if len(b.buf) > 0 {
			f := b.buf[0]
			b.buf = b.buf[1:]
			b.lastEmit = b.lastEmit.Add(b.delta)
			return f, true
		}
		b.counters.JitterUnderruns.Add(1)
		b.lastEmit = now
		return frame.AudioFrame{}, false
	}

	return frame.AudioFrame{}, false
}

// Run drives the service loop at a 1ms poll interval until ctx is
// cancelled, pushing emitted frames to out with a 100ms enqueue deadline;
// emissions that cannot be delivered within the deadline are dropped with
// a counted warning.
func (b *Buffer) Run(ctx context.Context, in <-chan frame.AudioFrame, out chan<- frame.AudioFrame) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			f, ok := b.tick(in, now)
			if !ok {
				continue
			}
			b.emit(ctx, out, f)
		}
	}
}

func (b *Buffer) emit(ctx context.Context, out chan<- frame.AudioFrame, f frame.AudioFrame) {
	deadline := time.NewTimer(100 * time.Millisecond)
	defer deadline.Stop()
	select {
	case out <- f:
	case <-deadline.C:
		b.counters.JitterEmitDrops.Add(1)
		b.log.Warn("jitter: emission dropped, downstream did not accept within deadline")
	case <-ctx.Done():
	}
}
