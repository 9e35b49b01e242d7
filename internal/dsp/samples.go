// Package dsp implements the AudioProcessor: channel mixdown, linear
// interpolation resampling to 8 kHz mono, linear gain, RMS-tracked AGC,
// and an ordered plugin chain. Buffer handling follows the scratch-buffer
// reuse idiom (grow dst only when its capacity is insufficient, never
// shrink) used throughout the reference PCM helpers.
package dsp

import "encoding/binary"

// BytesToSamples decodes 16-bit little-endian PCM bytes into int16
// samples, reusing dst's backing array when it already has enough
// capacity.
func BytesToSamples(dst []int16, src []byte) []int16 {
	n := len(src) / 2
	if cap(dst) < n {
		dst = make([]int16, n)
	} else {
		dst = dst[:n]
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2 : i*2+2]))
	}
	return dst
}

// SamplesToBytes encodes int16 samples into 16-bit little-endian PCM
// bytes, reusing dst's backing array when possible.
func SamplesToBytes(dst []byte, src []int16) []byte {
	need := len(src) * 2
	if cap(dst) < need {
		dst = make([]byte, need)
	} else {
		dst = dst[:need]
	}
	for i, s := range src {
		binary.LittleEndian.PutUint16(dst[i*2:i*2+2], uint16(s))
	}
	return dst
}

// clipInt16 clips a wider integer to the int16 range without wraparound.
func clipInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// MixdownToMono averages N interleaved channels per frame into mono,
// clipped to int16 range (arithmetic mean, no wraparound).
func MixdownToMono(dst []int16, src []int16, channels int) []int16 {
	if channels <= 1 {
		if cap(dst) < len(src) {
			dst = make([]int16, len(src))
		} else {
			dst = dst[:len(src)]
		}
		copy(dst, src)
		return dst
	}
	frames := len(src) / channels
	if cap(dst) < frames {
		dst = make([]int16, frames)
	} else {
		dst = dst[:frames]
	}
	for i := 0; i < frames; i++ {
		var sum int32
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += int32(src[base+c])
		}
		dst[i] = clipInt16(sum / int32(channels))
	}
	return dst
}
