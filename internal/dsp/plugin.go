package dsp

import (
	"log/slog"

	"usrpdmr/internal/errkind"
	"usrpdmr/internal/stats"
)

// Plugin is a pure pcm-to-pcm transform: 16-bit LE mono PCM at 8 kHz in,
// same format out. A plugin may return an error (processing halts there,
// unprocessed buffer is forwarded) or a buffer whose length isn't a
// multiple of the sample width (treated as invalid, same recovery).
type Plugin func(pcm []byte) ([]byte, error)

// Chain is an ordered, fixed list of plugins run in sequence. If any
// plugin errors or returns an invalid-length buffer, the chain halts and
// the last good buffer is forwarded with an error counted.
type Chain struct {
	plugins  []Plugin
	counters *stats.Counters
	log      *slog.Logger
}

// NewChain builds a plugin chain over the given ordered plugins.
func NewChain(counters *stats.Counters, plugins ...Plugin) *Chain {
	return &Chain{plugins: plugins, counters: counters, log: slog.Default()}
}

// Run applies each plugin in order to pcm, halting at the first failure.
func (c *Chain) Run(pcm []byte) []byte {
	cur := pcm
	for i, p := range c.plugins {
		out, err := p(cur)
		if err != nil {
			c.counters.PluginErrors.Add(1)
			c.log.Debug("interception pipe: plugin failed, forwarding unprocessed buffer",
				"error", errkind.Wrap(errkind.Plugin, "plugin %d: %v", i, err))
			return cur
		}
		if len(out)%2 != 0 {
			c.counters.PluginErrors.Add(1)
			c.log.Debug("interception pipe: plugin returned invalid-length buffer, forwarding unprocessed buffer",
				"error", errkind.Wrap(errkind.Plugin, "plugin %d: invalid output length %d", i, len(out)))
			return cur
		}
		cur = out
	}
	return cur
}
