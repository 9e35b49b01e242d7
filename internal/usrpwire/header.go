// Package usrpwire implements the USRP UDP wire codec: a fixed 32-byte
// header followed by a raw PCM payload. Unlike the AllStarLink USRP
// dialect (big-endian, Eye/Seq/Memory/Keyup/TalkGroup fields), this wire
// format is the bridge's own: little-endian, magic+packet_type+sequence+
// timestamp_us+sample_rate+channels+sample_width+reserved+payload_length.
package usrpwire

import (
	"encoding/binary"

	"usrpdmr/internal/errkind"
)

// HeaderSize is the fixed USRP header length in bytes.
const HeaderSize = 32

// Magic is the 4-byte USRP frame identifier.
var Magic = [4]byte{'U', 'S', 'R', 'P'}

// PacketType distinguishes audio payloads from control frames.
type PacketType uint32

const (
	PacketAudio   PacketType = 0
	PacketControl PacketType = 1
)

// Header is the fixed 32-byte USRP header. Field offsets, little-endian:
//
//	0:4   magic "USRP"
//	4:8   packet_type (u32)
//	8:12  sequence (u32)
//	12:20 timestamp_us (u64)
//	20:24 sample_rate (u32)
//	24:26 channels (u16)
//	26:28 sample_width (u16)
//	28:32 payload_length (u32)
//
// A companion description of this layout also names a 2-byte "reserved"
// field between sample_width and payload_length, which cannot fit inside
// a 32-byte header alongside a 4-byte payload_length at the tail — those
// two accounts are mutually exclusive. This codec resolves the conflict
// by placing payload_length at offset 28 and dropping reserved from the
// wire entirely (Header.Reserved below is kept only as an in-memory
// field, always zero on the wire). Confirm against a live peer before
// trusting byte-for-byte interoperability.
type Header struct {
	PacketType  PacketType
	Sequence    uint32
	TimestampUs uint64
	SampleRate  uint32
	Channels    uint16
	SampleWidth uint16
	Reserved    uint16
	PayloadLen  uint32
}

// Marshal writes the header into the first HeaderSize bytes of dst, which
// must be at least HeaderSize long.
func (h Header) Marshal(dst []byte) {
	_ = dst[:HeaderSize]
	copy(dst[0:4], Magic[:])
	binary.LittleEndian.PutUint32(dst[4:8], uint32(h.PacketType))
	binary.LittleEndian.PutUint32(dst[8:12], h.Sequence)
	binary.LittleEndian.PutUint64(dst[12:20], h.TimestampUs)
	binary.LittleEndian.PutUint32(dst[20:24], h.SampleRate)
	binary.LittleEndian.PutUint16(dst[24:26], h.Channels)
	binary.LittleEndian.PutUint16(dst[26:28], h.SampleWidth)
	binary.LittleEndian.PutUint32(dst[28:32], h.PayloadLen)
}

// ParseHeader reads a Header from the first HeaderSize bytes of buf. buf
// must already be validated to be at least HeaderSize bytes with a
// matching magic; ParseHeader itself re-checks both and returns a
// WireFormat error on failure.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errkind.Wrap(errkind.WireFormat, "datagram too short: %d bytes", len(buf))
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] || buf[3] != Magic[3] {
		return Header{}, errkind.Wrap(errkind.WireFormat, "bad magic")
	}
	h := Header{
		PacketType:  PacketType(binary.LittleEndian.Uint32(buf[4:8])),
		Sequence:    binary.LittleEndian.Uint32(buf[8:12]),
		TimestampUs: binary.LittleEndian.Uint64(buf[12:20]),
		SampleRate:  binary.LittleEndian.Uint32(buf[20:24]),
		Channels:    binary.LittleEndian.Uint16(buf[24:26]),
		SampleWidth: binary.LittleEndian.Uint16(buf[26:28]),
		PayloadLen:  binary.LittleEndian.Uint32(buf[28:32]),
	}
	return h, nil
}
