package dsp

import "usrpdmr/internal/frame"

const targetSampleRate = 8000

// Config holds the tunables for one AudioProcessor direction.
type Config struct {
	GainMin        float64
	GainMax        float64
	Gain           float64
	EnableAGC      bool
	AGCThresholdDb float64
	EnableResample bool // true for TX (resample+mixdown), false for RX
	Chain          *Chain
}

// DefaultConfig returns the §4.3/§6 defaults.
func DefaultConfig() Config {
	return Config{
		GainMin:        0.0,
		GainMax:        10.0,
		Gain:           1.0,
		EnableAGC:      false,
		AGCThresholdDb: -20,
		EnableResample: true,
	}
}

// Processor runs one direction's pipeline: for TX, mixdown+resample then
// gain, optional AGC, then the plugin chain; for RX, gain, optional AGC,
// then the plugin chain (no resample — RX input is already 8 kHz mono by
// wire contract). Processor keeps per-goroutine scratch buffers that are
// reused across frames; the frame's output PCM is a fresh copy per call.
type Processor struct {
	cfg Config

	scratchSamples   []int16
	scratchMono      []int16
	scratchResampled []int16
	scratchBytes     []byte
}

// NewProcessor builds a Processor with scratch buffers pre-sized for a
// 4096-sample frame.
func NewProcessor(cfg Config) *Processor {
	return &Processor{
		cfg:              cfg,
		scratchSamples:   make([]int16, 0, 4096),
		scratchMono:      make([]int16, 0, 4096),
		scratchResampled: make([]int16, 0, 4096),
		scratchBytes:     make([]byte, 0, 8192),
	}
}

// Process mutates f in place (replacing its PCM, SampleRate and Channels)
// according to the configured direction's stage ordering.
func (p *Processor) Process(f *frame.AudioFrame) {
	samples := BytesToSamples(p.scratchSamples, f.PCM)
	p.scratchSamples = samples

	if p.cfg.EnableResample {
		mono := MixdownToMono(p.scratchMono, samples, f.Channels)
		p.scratchMono = mono
		resampled := Resample(p.scratchResampled, mono, f.SampleRate, targetSampleRate)
		p.scratchResampled = resampled
		samples = resampled
		f.SampleRate = targetSampleRate
		f.Channels = 1
	}

	gain := ClampGain(p.cfg.Gain, p.cfg.GainMin, p.cfg.GainMax)
	gained := ApplyGain(p.scratchSamples, samples, gain)
	p.scratchSamples = gained

	if p.cfg.EnableAGC {
		rms := RMS(gained)
		f.AmplitudeRMS = rms
		if rms != 0 {
			agcGain := ClampGain(AGCGain(rms, p.cfg.AGCThresholdDb), p.cfg.GainMin, p.cfg.GainMax)
			gained = ApplyGain(gained, gained, agcGain)
			p.scratchSamples = gained
		}
	}

	pcmBytes := SamplesToBytes(p.scratchBytes, gained)
	p.scratchBytes = pcmBytes

	if p.cfg.Chain != nil {
		pcmBytes = p.cfg.Chain.Run(pcmBytes)
	}

	f.PCM = append([]byte(nil), pcmBytes...)
	f.SampleWidthBytes = 2
}
