// Package stats holds the atomic counters the bridge increments on its hot
// paths and an operator-facing snapshot/export surface. The core pipeline
// packages only ever touch *Counters directly (cheap atomic adds); nothing
// in the core imports the Prometheus exporter.
package stats

import "sync/atomic"

// Counters aggregates the operator-visible counters named throughout the
// component design (wire-format drops, backpressure drops, VOX transitions,
// jitter buffer over/underruns, echo-interlock mutes).
type Counters struct {
	USRPErrors        atomic.Uint64
	USRPTruncated     atomic.Uint64
	USRPControlFrames atomic.Uint64

	TLVErrors     atomic.Uint64
	TLVIgnored    atomic.Uint64
	TLVUnknownType atomic.Uint64

	PluginErrors atomic.Uint64

	QueueDropsSilent atomic.Uint64
	QueueDropsWarned atomic.Uint64

	VOXActivations   atomic.Uint64
	VOXDeactivations atomic.Uint64
	VOXHardTimeouts  atomic.Uint64

	JitterOverflows  atomic.Uint64
	JitterUnderruns  atomic.Uint64
	JitterEmitDrops  atomic.Uint64

	EchoMutedFrames atomic.Uint64
}

// Snapshot is a point-in-time, plain-value copy of Counters suitable for
// JSON encoding or display.
type Snapshot struct {
	USRPErrors        uint64
	USRPTruncated     uint64
	USRPControlFrames uint64
	TLVErrors         uint64
	TLVIgnored        uint64
	TLVUnknownType    uint64
	PluginErrors      uint64
	QueueDropsSilent  uint64
	QueueDropsWarned  uint64
	VOXActivations    uint64
	VOXDeactivations  uint64
	VOXHardTimeouts   uint64
	JitterOverflows   uint64
	JitterUnderruns   uint64
	JitterEmitDrops   uint64
	EchoMutedFrames   uint64
}

// Snapshot takes a consistent-enough (each field read independently)
// point-in-time copy of the counters for reporting.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		USRPErrors:        c.USRPErrors.Load(),
		USRPTruncated:     c.USRPTruncated.Load(),
		USRPControlFrames: c.USRPControlFrames.Load(),
		TLVErrors:         c.TLVErrors.Load(),
		TLVIgnored:        c.TLVIgnored.Load(),
		TLVUnknownType:    c.TLVUnknownType.Load(),
		PluginErrors:      c.PluginErrors.Load(),
		QueueDropsSilent:  c.QueueDropsSilent.Load(),
		QueueDropsWarned:  c.QueueDropsWarned.Load(),
		VOXActivations:    c.VOXActivations.Load(),
		VOXDeactivations:  c.VOXDeactivations.Load(),
		VOXHardTimeouts:   c.VOXHardTimeouts.Load(),
		JitterOverflows:   c.JitterOverflows.Load(),
		JitterUnderruns:   c.JitterUnderruns.Load(),
		JitterEmitDrops:   c.JitterEmitDrops.Load(),
		EchoMutedFrames:   c.EchoMutedFrames.Load(),
	}
}
