package stats

import "github.com/prometheus/client_golang/prometheus"

// PrometheusExporter adapts Counters into Prometheus collectors so an
// operator can scrape /metrics. It is an outer adapter: the pipeline
// packages never import this file, only *Counters.
type PrometheusExporter struct {
	counters *Counters
	desc     map[string]*prometheus.Desc
}

// NewPrometheusExporter builds an exporter over the given counters.
func NewPrometheusExporter(c *Counters) *PrometheusExporter {
	mk := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("usrpdmr_"+name, help, nil, nil)
	}
	return &PrometheusExporter{
		counters: c,
		desc: map[string]*prometheus.Desc{
			"usrp_errors_total":         mk("usrp_errors_total", "USRP datagrams dropped for wire-format errors"),
			"usrp_truncated_total":      mk("usrp_truncated_total", "USRP datagrams dropped for truncation"),
			"usrp_control_frames_total": mk("usrp_control_frames_total", "USRP control (packet_type=1) frames counted"),
			"tlv_errors_total":          mk("tlv_errors_total", "TLV frames dropped for wire-format errors"),
			"tlv_ignored_total":         mk("tlv_ignored_total", "TLV frames counted-and-dropped by policy"),
			"tlv_unknown_type_total":    mk("tlv_unknown_type_total", "TLV frames with unrecognised type"),
			"plugin_errors_total":       mk("plugin_errors_total", "Plugin chain invocations that failed or returned an invalid buffer"),
			"queue_drops_silent_total":  mk("queue_drops_silent_total", "Frames dropped silently on ingress backpressure"),
			"queue_drops_warned_total":  mk("queue_drops_warned_total", "Frames dropped on TX backpressure with warn-every-N logging"),
			"vox_activations_total":     mk("vox_activations_total", "VOX idle-to-transmitting transitions"),
			"vox_deactivations_total":   mk("vox_deactivations_total", "VOX transmitting-to-idle transitions via hangtime"),
			"vox_hard_timeouts_total":   mk("vox_hard_timeouts_total", "VOX transmitting-to-idle transitions via hard timeout"),
			"jitter_overflows_total":    mk("jitter_overflows_total", "Jitter buffer frames dropped for exceeding the hard cap"),
			"jitter_underruns_total":    mk("jitter_underruns_total", "Jitter buffer emission cycles with nothing to emit"),
			"jitter_emit_drops_total":   mk("jitter_emit_drops_total", "Jitter buffer emissions dropped because downstream did not accept within deadline"),
			"echo_muted_frames_total":   mk("echo_muted_frames_total", "TX frames attenuated and dropped by the echo interlock"),
		},
	}
}

// Describe implements prometheus.Collector.
func (p *PrometheusExporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range p.desc {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (p *PrometheusExporter) Collect(ch chan<- prometheus.Metric) {
	s := p.counters.Snapshot()
	emit := func(name string, v uint64) {
		ch <- prometheus.MustNewConstMetric(p.desc[name], prometheus.CounterValue, float64(v))
	}
	emit("usrp_errors_total", s.USRPErrors)
	emit("usrp_truncated_total", s.USRPTruncated)
	emit("usrp_control_frames_total", s.USRPControlFrames)
	emit("tlv_errors_total", s.TLVErrors)
	emit("tlv_ignored_total", s.TLVIgnored)
	emit("tlv_unknown_type_total", s.TLVUnknownType)
	emit("plugin_errors_total", s.PluginErrors)
	emit("queue_drops_silent_total", s.QueueDropsSilent)
	emit("queue_drops_warned_total", s.QueueDropsWarned)
	emit("vox_activations_total", s.VOXActivations)
	emit("vox_deactivations_total", s.VOXDeactivations)
	emit("vox_hard_timeouts_total", s.VOXHardTimeouts)
	emit("jitter_overflows_total", s.JitterOverflows)
	emit("jitter_underruns_total", s.JitterUnderruns)
	emit("jitter_emit_drops_total", s.JitterEmitDrops)
	emit("echo_muted_frames_total", s.EchoMutedFrames)
}
