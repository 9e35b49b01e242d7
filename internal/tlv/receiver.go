package tlv

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"usrpdmr/internal/frame"
	"usrpdmr/internal/stats"
)

// Receiver listens for inbound TLV datagrams from the modem front-end and
// emits decoded PCM AudioFrame values. AMBE, PTT and unknown-type frames
// are counted and dropped per the recognised-type policy; only PCM frames
// reach the Frames channel.
type Receiver struct {
	conn     *net.UDPConn
	log      *slog.Logger
	counters *stats.Counters
	frames   chan frame.AudioFrame
	bufSize  int
}

// NewReceiver binds a UDP listener at addr:port.
func NewReceiver(addr string, port int, bufSize int, log *slog.Logger, counters *stats.Counters) (*Receiver, error) {
	laddr := &net.UDPAddr{IP: net.ParseIP(addr), Port: port}
	if laddr.IP == nil {
		laddr.IP = net.IPv4zero
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = 65536
	}
	return &Receiver{conn: conn, log: log, counters: counters, frames: make(chan frame.AudioFrame, 100), bufSize: bufSize}, nil
}

// Frames returns the channel of decoded PCM frames. Closed after Run
// returns.
func (r *Receiver) Frames() <-chan frame.AudioFrame { return r.frames }

// Run blocks, reading datagrams until ctx is cancelled or the socket is
// closed, paced by a 1s read deadline per the suspension-point design.
func (r *Receiver) Run(ctx context.Context) {
	defer close(r.frames)
	buf := make([]byte, r.bufSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := r.conn.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			return
		}
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return
		}
		item, err := Parse(buf[:n])
		if err != nil {
			r.counters.TLVErrors.Add(1)
			r.log.Debug("tlv: dropped malformed datagram", "error", err)
			continue
		}
		switch item.Type {
		case TypePCM:
			if len(item.Value) == 0 {
				r.counters.TLVErrors.Add(1)
				continue
			}
			f := frame.AudioFrame{
				PCM:              item.Value,
				SampleRate:       8000,
				Channels:         1,
				SampleWidthBytes: 2,
				Source:           frame.SourceMMDVM,
				TimestampUs:      time.Now().UnixMicro(),
			}
			select {
			case r.frames <- f:
			case <-ctx.Done():
				return
			}
		case TypeAMBE:
			r.counters.TLVIgnored.Add(1)
		case TypePTTStart, TypePTTStop:
			r.counters.TLVIgnored.Add(1)
		default:
			r.counters.TLVUnknownType.Add(1)
		}
	}
}

// Close releases the underlying socket.
func (r *Receiver) Close() error { return r.conn.Close() }
