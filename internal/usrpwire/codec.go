package usrpwire

import (
	"errors"
	"fmt"

	"usrpdmr/internal/errkind"
	"usrpdmr/internal/frame"
)

// ErrTruncated distinguishes a truncated datagram from other WireFormat
// failures (bad magic, short read), so callers can bump a dedicated
// counter. Check with errors.Is.
var ErrTruncated = errors.New("usrp: truncated datagram")

// ParseResult is the outcome of parsing one USRP datagram.
type ParseResult struct {
	Frame     frame.AudioFrame
	IsControl bool // true for packet_type==1: no frame was produced
}

// ParseDatagram validates and decodes a raw USRP datagram. It rejects
// datagrams shorter than HeaderSize or with a bad magic, and validates
// HeaderSize+payload_length against the actual datagram length. Control
// frames (packet_type==1) are reported via ParseResult.IsControl with a
// zero Frame; the caller is responsible for counting them.
func ParseDatagram(buf []byte) (ParseResult, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return ParseResult{}, err
	}
	if HeaderSize+int(h.PayloadLen) > len(buf) {
		return ParseResult{}, fmt.Errorf("%w: %w: header declares %d payload bytes, have %d", errkind.ErrWireFormat, ErrTruncated, h.PayloadLen, len(buf)-HeaderSize)
	}
	if h.PacketType == PacketControl {
		return ParseResult{IsControl: true}, nil
	}
	payload := buf[HeaderSize : HeaderSize+int(h.PayloadLen)]
	f := frame.AudioFrame{
		PCM:              append([]byte(nil), payload...),
		SampleRate:       int(h.SampleRate),
		Channels:         int(h.Channels),
		SampleWidthBytes: int(h.SampleWidth),
		Sequence:         h.Sequence,
		TimestampUs:      int64(h.TimestampUs),
		Source:           frame.SourceUSRP,
	}
	return ParseResult{Frame: f}, nil
}

// EmitDatagram serialises f as an audio (packet_type==0) USRP datagram
// into a freshly allocated buffer: header concatenated with the frame's
// PCM payload.
func EmitDatagram(f frame.AudioFrame, sequence uint32, timestampUs uint64) []byte {
	width := f.SampleWidthBytes
	if width == 0 {
		width = 2
	}
	ch := f.Channels
	if ch == 0 {
		ch = 1
	}
	h := Header{
		PacketType:  PacketAudio,
		Sequence:    sequence,
		TimestampUs: timestampUs,
		SampleRate:  uint32(f.SampleRate),
		Channels:    uint16(ch),
		SampleWidth: uint16(width),
		PayloadLen:  uint32(len(f.PCM)),
	}
	out := make([]byte, HeaderSize+len(f.PCM))
	h.Marshal(out)
	copy(out[HeaderSize:], f.PCM)
	return out
}

// EmitControlDatagram serialises a zero-payload control (packet_type==1)
// USRP datagram into a freshly allocated buffer.
func EmitControlDatagram(sequence uint32, timestampUs uint64) []byte {
	h := Header{
		PacketType:  PacketControl,
		Sequence:    sequence,
		TimestampUs: timestampUs,
	}
	out := make([]byte, HeaderSize)
	h.Marshal(out)
	return out
}
