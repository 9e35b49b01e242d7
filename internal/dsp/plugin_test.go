package dsp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"usrpdmr/internal/stats"
)

func TestChainRunsInOrder(t *testing.T) {
	c := &stats.Counters{}
	chain := NewChain(c,
		func(pcm []byte) ([]byte, error) {
			out := append([]byte(nil), pcm...)
			out[0]++
			return out, nil
		},
		func(pcm []byte) ([]byte, error) {
			out := append([]byte(nil), pcm...)
			out[0] += 10
			return out, nil
		},
	)
	out := chain.Run([]byte{0, 0})
	require.Equal(t, byte(11), out[0])
	require.Equal(t, uint64(0), c.PluginErrors.Load())
}

func TestChainHaltsOnPluginError(t *testing.T) {
	c := &stats.Counters{}
	chain := NewChain(c,
		func(pcm []byte) ([]byte, error) { return nil, errors.New("boom") },
		func(pcm []byte) ([]byte, error) { t.Fatal("should not run"); return pcm, nil },
	)
	in := []byte{1, 2}
	out := chain.Run(in)
	require.Equal(t, in, out)
	require.Equal(t, uint64(1), c.PluginErrors.Load())
}

func TestChainHaltsOnInvalidLength(t *testing.T) {
	c := &stats.Counters{}
	chain := NewChain(c, func(pcm []byte) ([]byte, error) {
		return []byte{1, 2, 3}, nil // odd length, invalid
	})
	in := []byte{9, 9}
	out := chain.Run(in)
	require.Equal(t, in, out)
	require.Equal(t, uint64(1), c.PluginErrors.Load())
}
