package dsp

import "math"

// ApplyGain multiplies every sample by g, clipped to int16 range. g is
// expected to already be clamped to [gainMin, gainMax] by the caller.
func ApplyGain(dst []int16, src []int16, g float64) []int16 {
	if cap(dst) < len(src) {
		dst = make([]int16, len(src))
	} else {
		dst = dst[:len(src)]
	}
	for i, s := range src {
		dst[i] = clipInt16(int32(math.Round(float64(s) * g)))
	}
	return dst
}

// ClampGain restricts g to [min, max].
func ClampGain(g, min, max float64) float64 {
	if g < min {
		return min
	}
	if g > max {
		return max
	}
	return g
}

// RMS computes the root-mean-square amplitude of pcm samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		v := float64(s)
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

// AGCGain computes the linear gain an RMS-tracked AGC should apply to
// bring rms to targetDb (relative to full scale, 20*log10(rms/32768)),
// clamped to [0.1, 10.0]. If rms is 0 the caller should pass the frame
// through unmodified (gain 1.0 is returned but ignored by convention).
func AGCGain(rms float64, targetDb float64) float64 {
	if rms == 0 {
		return 1.0
	}
	rmsDb := 20 * math.Log10(rms/32768)
	gDb := targetDb - rmsDb
	gLinear := math.Pow(10, gDb/20)
	return ClampGain(gLinear, 0.1, 10.0)
}
