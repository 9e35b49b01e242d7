// Package frame defines AudioFrame, the unit that flows through every
// bounded queue in the bridge. It is a plain, exported-field struct — no
// map[string]any crosses a stage boundary (spec design note: cross-stage
// mutable dictionaries become typed records).
package frame

// Source tags the origin of a frame.
type Source int

const (
	SourceUSRP Source = iota
	SourceMMDVM
	SourceLocalCapture
)

func (s Source) String() string {
	switch s {
	case SourceUSRP:
		return "usrp"
	case SourceMMDVM:
		return "mmdvm"
	case SourceLocalCapture:
		return "local_capture"
	default:
		return "unknown"
	}
}

// AudioFrame is the unit of audio flowing between pipeline stages.
//
// A frame either owns its PCM buffer exclusively or is treated as
// immutable once enqueued — no stage shares a mutable backing array with
// another concurrently-running stage.
type AudioFrame struct {
	PCM               []byte // 16-bit little-endian samples, interleaved if multi-channel
	SampleRate        int
	Channels          int
	SampleWidthBytes  int // always 2
	Sequence          uint32
	TimestampUs       int64
	Source            Source
	PTTActive         bool    // set by VOX for TX frames; absent/false on RX frames
	EchoMuted         bool    // set by the TX gate when interlock attenuated the frame
	AmplitudeRMS      float64 // populated by VOX for telemetry
}

// Clone returns a frame with its own copy of the PCM backing array, so the
// clone can be mutated independently of the original.
func (f AudioFrame) Clone() AudioFrame {
	cp := f
	cp.PCM = append([]byte(nil), f.PCM...)
	return cp
}

// Valid reports whether the frame's PCM length is consistent with its
// declared sample width and channel count.
func (f AudioFrame) Valid() bool {
	width := f.SampleWidthBytes
	if width == 0 {
		width = 2
	}
	ch := f.Channels
	if ch == 0 {
		ch = 1
	}
	return len(f.PCM)%(width*ch) == 0
}
