package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"usrpdmr/internal/frame"
)

func TestProcessorTXResamplesToTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableResample = true
	p := NewProcessor(cfg)

	in := make([]int16, 160) // 20ms @ 8kHz mono would be 160 samples; feed as 16kHz
	for i := range in {
		in[i] = int16(i)
	}
	f := frame.AudioFrame{
		PCM:              SamplesToBytes(nil, in),
		SampleRate:       16000,
		Channels:         1,
		SampleWidthBytes: 2,
	}
	p.Process(&f)
	require.Equal(t, targetSampleRate, f.SampleRate)
	require.Equal(t, 1, f.Channels)
	require.Equal(t, 80*2, len(f.PCM))
}

func TestProcessorAGCStacksOnConfiguredGain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableResample = false
	cfg.Gain = 2.0
	cfg.EnableAGC = true
	cfg.AGCThresholdDb = -20
	p := NewProcessor(cfg)

	in := []int16{1000, -1000, 1000, -1000}
	f := frame.AudioFrame{
		PCM:              SamplesToBytes(nil, in),
		SampleRate:       8000,
		Channels:         1,
		SampleWidthBytes: 2,
	}
	p.Process(&f)

	gained := make([]int16, len(in))
	ApplyGain(gained, in, ClampGain(cfg.Gain, cfg.GainMin, cfg.GainMax))
	wantRMS := RMS(gained)
	agcGain := ClampGain(AGCGain(wantRMS, cfg.AGCThresholdDb), cfg.GainMin, cfg.GainMax)
	want := make([]int16, len(in))
	ApplyGain(want, gained, agcGain)

	got := BytesToSamples(nil, f.PCM)
	require.Equal(t, want, got)
	require.Equal(t, wantRMS, f.AmplitudeRMS)
}

func TestProcessorRXNoResample(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableResample = false
	p := NewProcessor(cfg)

	in := []int16{100, 200, 300}
	f := frame.AudioFrame{
		PCM:              SamplesToBytes(nil, in),
		SampleRate:       8000,
		Channels:         1,
		SampleWidthBytes: 2,
	}
	p.Process(&f)
	require.Equal(t, 8000, f.SampleRate)
	require.Len(t, f.PCM, 6)
}
