package jitter

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"usrpdmr/internal/frame"
	"usrpdmr/internal/stats"
)

func TestDrainFillsToTargetDepth(t *testing.T) {
	c := &stats.Counters{}
	b := New(Config{TargetDepth: 3, FrameTimeMs: 20}, c, slog.Default())
	in := make(chan frame.AudioFrame, 10)
	for i := 0; i < 5; i++ {
		in <- frame.AudioFrame{Sequence: uint32(i)}
	}
	b.drain(in)
	require.Len(t, b.buf, 3)
	require.Equal(t, uint32(0), b.buf[0].Sequence)
}

func TestTrimOverflowCountsDrops(t *testing.T) {
	c := &stats.Counters{}
	b := New(Config{TargetDepth: 3, FrameTimeMs: 20}, c, slog.Default())
	for i := 0; i < 10; i++ {
		b.buf = append(b.buf, frame.AudioFrame{Sequence: uint32(i)})
	}
	b.trimOverflow()
	require.Len(t, b.buf, 6) // hard cap = 2*3
	require.Equal(t, uint64(4), c.JitterOverflows.Load())
}

func TestTickBootstrapsOnFirstEmit(t *testing.T) {
	c := &stats.Counters{}
	b := New(Config{TargetDepth: 3, FrameTimeMs: 20}, c, slog.Default())
	in := make(chan frame.AudioFrame, 1)
	in <- frame.AudioFrame{Sequence: 1}

	now := time.Now()
	f, ok := b.tick(in, now)
	require.True(t, ok)
	require.Equal(t, uint32(1), f.Sequence)
	require.Equal(t, now, b.lastEmit)
}

func TestTickUnderrunResetsPhase(t *testing.T) {
	c := &stats.Counters{}
	b := New(Config{TargetDepth: 3, FrameTimeMs: 20}, c, slog.Default())
	in := make(chan frame.AudioFrame)

	now := time.Now()
	b.lastEmit = now.Add(-30 * time.Millisecond) // past delta, buffer empty

	f, ok := b.tick(in, now)
	require.False(t, ok)
	require.Equal(t, frame.AudioFrame{}, f)
	require.Equal(t, uint64(1), c.JitterUnderruns.Load())
	require.Equal(t, now, b.lastEmit)
}

func TestTickPhaseLockedAdvance(t *testing.T) {
	c := &stats.Counters{}
	b := New(Config{TargetDepth: 3, FrameTimeMs: 20}, c, slog.Default())
	in := make(chan frame.AudioFrame, 1)
	in <- frame.AudioFrame{Sequence: 5}

	start := time.Now()
	b.lastEmit = start.Add(-25 * time.Millisecond)
	f, ok := b.tick(in, start)
	require.True(t, ok)
	require.Equal(t, uint32(5), f.Sequence)
	require.Equal(t, start.Add(-25*time.Millisecond).Add(20*time.Millisecond), b.lastEmit)
}
