// Package capture provides alternative sources of TX pipeline input.
// Outside the soft-real-time wire codecs, local capture is treated as an
// external collaborator; this package supplies a deterministic test-tone
// source in the same spirit as the reference bridge's linear-ramp test
// pattern, useful for bench-testing the pipeline without a live SIP peer.
package capture

import (
	"context"
	"math"
	"time"

	"usrpdmr/internal/frame"
)

// Source is anything that feeds AudioFrame values into the TX pipeline in
// place of a live USRPServer.
type Source interface {
	Frames() <-chan frame.AudioFrame
	Close() error
}

// ToneSource generates a deterministic sine-wave tone at a fixed
// frequency, sample rate and frame size, for bench testing.
type ToneSource struct {
	frames chan frame.AudioFrame
	cancel context.CancelFunc
	done   chan struct{}
}

// ToneConfig configures a ToneSource.
type ToneConfig struct {
	FrequencyHz  float64
	SampleRate   int
	FrameSamples int
	Amplitude    int16
}

// DefaultToneConfig returns a 440Hz tone at 8kHz, 160-sample (20ms)
// frames, half-scale amplitude.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{FrequencyHz: 440, SampleRate: 8000, FrameSamples: 160, Amplitude: 16000}
}

// NewToneSource starts generating frames at the frame rate implied by
// FrameSamples/SampleRate until ctx is cancelled or Close is called.
func NewToneSource(ctx context.Context, cfg ToneConfig) *ToneSource {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 8000
	}
	if cfg.FrameSamples <= 0 {
		cfg.FrameSamples = 160
	}
	runCtx, cancel := context.WithCancel(ctx)
	s := &ToneSource{
		frames: make(chan frame.AudioFrame, 10),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(runCtx, cfg)
	return s
}

func (s *ToneSource) run(ctx context.Context, cfg ToneConfig) {
	defer close(s.done)
	defer close(s.frames)

	frameDur := time.Duration(cfg.FrameSamples) * time.Second / time.Duration(cfg.SampleRate)
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	var sampleIdx int64
	var seq uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			samples := make([]int16, cfg.FrameSamples)
			for i := range samples {
				phase := 2 * math.Pi * cfg.FrequencyHz * float64(sampleIdx) / float64(cfg.SampleRate)
				samples[i] = int16(float64(cfg.Amplitude) * math.Sin(phase))
				sampleIdx++
			}
			pcm := make([]byte, len(samples)*2)
			for i, v := range samples {
				pcm[i*2] = byte(v)
				pcm[i*2+1] = byte(v >> 8)
			}
			f := frame.AudioFrame{
				PCM:              pcm,
				SampleRate:       cfg.SampleRate,
				Channels:         1,
				SampleWidthBytes: 2,
				Sequence:         seq,
				TimestampUs:      time.Now().UnixMicro(),
				Source:           frame.SourceLocalCapture,
			}
			seq++
			select {
			case s.frames <- f:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Frames returns the channel of generated frames.
func (s *ToneSource) Frames() <-chan frame.AudioFrame { return s.frames }

// Close stops frame generation and waits for the generator goroutine to
// exit.
func (s *ToneSource) Close() error {
	s.cancel()
	<-s.done
	return nil
}
