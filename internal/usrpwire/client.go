package usrpwire

import (
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"usrpdmr/internal/errkind"
	"usrpdmr/internal/frame"
	"usrpdmr/internal/stats"
)

// Client emits USRP datagrams toward a fixed remote address. It owns a
// per-emitter monotonic sequence counter and never blocks on send: UDP
// writes to a local peer either succeed immediately or fail, and a failed
// send is counted and dropped rather than retried.
type Client struct {
	conn     *net.UDPConn
	log      *slog.Logger
	counters *stats.Counters
	seq      atomic.Uint32
}

// NewClient resolves and connects a UDP socket toward addr:port. Using
// net.DialUDP fixes the remote peer so Write (not WriteTo) can be used,
// matching the "send never blocks" requirement without per-call address
// resolution.
func NewClient(addr string, port int, log *slog.Logger, counters *stats.Counters) (*Client, error) {
	raddr := &net.UDPAddr{IP: net.ParseIP(addr), Port: port}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, log: log, counters: counters}, nil
}

// Send encodes f as an audio USRP datagram with the next sequence number
// and the current wall-clock timestamp, then writes it. Failures are
// counted and swallowed per the emitter's fail-silently-and-count policy.
func (c *Client) Send(f frame.AudioFrame) {
	seq := c.seq.Add(1)
	datagram := EmitDatagram(f, seq, uint64(time.Now().UnixMicro()))
	if _, err := c.conn.Write(datagram); err != nil {
		c.counters.USRPErrors.Add(1)
		c.log.Debug("usrp: send failed", "error", errkind.Wrap(errkind.IO, "send to %s: %v", c.conn.RemoteAddr(), err))
	}
}

// SendControl emits a zero-payload control datagram with the next
// sequence number. The bridge's shutdown path does not call it.
func (c *Client) SendControl() {
	seq := c.seq.Add(1)
	datagram := EmitControlDatagram(seq, uint64(time.Now().UnixMicro()))
	if _, err := c.conn.Write(datagram); err != nil {
		c.counters.USRPErrors.Add(1)
		c.log.Debug("usrp: control send failed", "error", errkind.Wrap(errkind.IO, "send to %s: %v", c.conn.RemoteAddr(), err))
	}
}

// Close releases the underlying socket.
func (c *Client) Close() error { return c.conn.Close() }
