package usrpwire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"usrpdmr/internal/frame"
)

func TestEmitParseRoundTrip(t *testing.T) {
	f := frame.AudioFrame{
		PCM:              []byte{1, 2, 3, 4, 5, 6, 7, 8},
		SampleRate:       8000,
		Channels:         1,
		SampleWidthBytes: 2,
	}
	datagram := EmitDatagram(f, 42, 123456789)
	result, err := ParseDatagram(datagram)
	require.NoError(t, err)
	require.False(t, result.IsControl)
	require.Equal(t, f.PCM, result.Frame.PCM)
	require.Equal(t, uint32(42), result.Frame.Sequence)
	require.Equal(t, int64(123456789), result.Frame.TimestampUs)
	require.Equal(t, 8000, result.Frame.SampleRate)
	require.Equal(t, 1, result.Frame.Channels)
	require.Equal(t, 2, result.Frame.SampleWidthBytes)
}

func TestParseDatagramTooShort(t *testing.T) {
	_, err := ParseDatagram([]byte{'U', 'S', 'R'})
	require.Error(t, err)
}

func TestParseDatagramBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, "XXXX")
	_, err := ParseDatagram(buf)
	require.Error(t, err)
}

func TestParseDatagramTruncatedPayload(t *testing.T) {
	f := frame.AudioFrame{PCM: []byte{1, 2, 3, 4}, SampleRate: 8000, Channels: 1, SampleWidthBytes: 2}
	datagram := EmitDatagram(f, 1, 0)
	truncated := datagram[:len(datagram)-2]
	_, err := ParseDatagram(truncated)
	require.Error(t, err)
}

func TestParseDatagramControlFrame(t *testing.T) {
	datagram := EmitControlDatagram(7, 99)
	result, err := ParseDatagram(datagram)
	require.NoError(t, err)
	require.True(t, result.IsControl)
}

func TestHeaderIsExactly32Bytes(t *testing.T) {
	buf := make([]byte, HeaderSize)
	require.Len(t, buf, 32)
}
