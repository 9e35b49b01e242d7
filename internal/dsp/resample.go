package dsp

import "math"

// Resample performs linear-interpolation rate conversion from inRate to
// outRate. It retains no cross-call state: each call is independent, and
// discontinuities at frame seams are accepted. Output length is exactly
// floor(len(in) * outRate/inRate); every output sample is clipped to the
// int16 range with clip-then-cast semantics (no wraparound).
//
// dst's backing array is reused when it has sufficient capacity.
func Resample(dst []int16, in []int16, inRate, outRate int) []int16 {
	if inRate <= 0 || outRate <= 0 || len(in) == 0 {
		return dst[:0]
	}
	r := float64(outRate) / float64(inRate)
	nOut := len(in) * outRate / inRate
	if nOut <= 0 {
		return dst[:0]
	}
	if cap(dst) < nOut {
		dst = make([]int16, nOut)
	} else {
		dst = dst[:nOut]
	}
	lastIdx := len(in) - 2
	if lastIdx < 0 {
		lastIdx = 0
	}
	for i := 0; i < nOut; i++ {
		x := float64(i) / r
		k := int(math.Floor(x))
		if k < 0 {
			k = 0
		}
		if k > lastIdx {
			k = lastIdx
		}
		f := x - float64(k)
		var k2 int
		if k+1 < len(in) {
			k2 = k + 1
		} else {
			k2 = k
		}
		interp := (1-f)*float64(in[k]) + f*float64(in[k2])
		dst[i] = clipInt16(int32(math.Round(interp)))
	}
	return dst
}
