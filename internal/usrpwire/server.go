package usrpwire

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"usrpdmr/internal/errkind"
	"usrpdmr/internal/frame"
	"usrpdmr/internal/stats"
)

// Server listens for inbound USRP datagrams and emits decoded AudioFrame
// values on Frames. It owns one goroutine, paced by a 1s read deadline per
// the suspension-point design so it observes context cancellation and
// socket closure promptly without blocking indefinitely.
type Server struct {
	conn       *net.UDPConn
	log        *slog.Logger
	counters   *stats.Counters
	frames     chan frame.AudioFrame
	highWaterSeq atomic.Uint32
	bufSize    int

	closeOnce sync.Once
}

// NewServer binds a UDP listener at addr:port and returns a Server ready
// to Run. bufSize is the receive buffer size (datagram + slack).
func NewServer(addr string, port int, bufSize int, log *slog.Logger, counters *stats.Counters) (*Server, error) {
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
	return &Server{
		conn:     conn,
		log:      log,
		counters: counters,
		frames:   make(chan frame.AudioFrame, 100),
		bufSize:  bufSize,
	}, nil
}

// Frames returns the channel of decoded audio frames. Closed after Run
// returns.
func (s *Server) Frames() <-chan frame.AudioFrame { return s.frames }

// Run blocks, reading datagrams until ctx is cancelled or the socket is
// closed. It never returns an error for a malformed datagram — those are
// dropped and counted per the error-handling design.
func (s *Server) Run(ctx context.Context) {
	defer close(s.frames)
	buf := make([]byte, s.bufSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := s.conn.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			return
		}
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			s.log.Warn("usrp: socket read failed, stopping", "error", errkind.Wrap(errkind.IO, "recv on %s: %v", s.conn.LocalAddr(), err))
			return
		}
		result, err := ParseDatagram(buf[:n])
		if err != nil {
			if errors.Is(err, ErrTruncated) {
				s.counters.USRPTruncated.Add(1)
			} else {
				s.counters.USRPErrors.Add(1)
			}
			s.log.Debug("usrp: dropped malformed datagram", "error", err)
			continue
		}
		if result.IsControl {
			s.counters.USRPControlFrames.Add(1)
			continue
		}
		f := result.Frame
		if f.Sequence > s.highWaterSeq.Load() {
			s.highWaterSeq.Store(f.Sequence)
		}
		select {
		case s.frames <- f:
		case <-ctx.Done():
			return
		}
	}
}

// HighWaterSequence returns the highest sequence number observed so far,
// for telemetry only.
func (s *Server) HighWaterSequence() uint32 { return s.highWaterSeq.Load() }

// Close releases the underlying socket, unblocking any in-progress recv.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.conn.Close() })
	return err
}
