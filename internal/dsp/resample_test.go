package dsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestResampleIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 256).Draw(t, "n")
		rate := rapid.IntRange(1000, 96000).Draw(t, "rate")
		in := make([]int16, n)
		for i := range in {
			in[i] = int16(rapid.IntRange(-32768, 32767).Draw(t, "s"))
		}
		out := Resample(nil, in, rate, rate)
		require.Equal(t, in, out)
	})
}

func TestResampleOutputLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 256).Draw(t, "n")
		inRate := rapid.IntRange(1000, 96000).Draw(t, "inRate")
		outRate := rapid.IntRange(1000, 96000).Draw(t, "outRate")
		in := make([]int16, n)
		out := Resample(nil, in, inRate, outRate)
		expected := int(float64(n) * float64(outRate) / float64(inRate))
		require.Equal(t, expected, len(out))
	})
}

func TestResampleClipBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 256).Draw(t, "n")
		inRate := rapid.IntRange(1000, 96000).Draw(t, "inRate")
		outRate := rapid.IntRange(1000, 96000).Draw(t, "outRate")
		in := make([]int16, n)
		for i := range in {
			in[i] = int16(rapid.IntRange(-32768, 32767).Draw(t, "s"))
		}
		out := Resample(nil, in, inRate, outRate)
		for _, s := range out {
			require.GreaterOrEqual(t, int(s), -32768)
			require.LessOrEqual(t, int(s), 32767)
		}
	})
}

func TestResampleUpsampleDownsample(t *testing.T) {
	in := []int16{0, 1000, 2000, 3000, 4000}
	out := Resample(nil, in, 8000, 16000)
	require.Equal(t, 10, len(out))
	down := Resample(nil, in, 16000, 8000)
	require.Equal(t, 2, len(down))
}
