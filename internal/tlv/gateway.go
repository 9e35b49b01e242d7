package tlv

import (
	"log/slog"
	"net"

	"usrpdmr/internal/frame"
	"usrpdmr/internal/stats"
)

// Gateway emits TLV datagrams toward the modem front-end: PCM data frames
// and out-of-band PTT control frames.
type Gateway struct {
	conn     *net.UDPConn
	log      *slog.Logger
	counters *stats.Counters
}

// NewGateway connects a UDP socket toward addr:port.
func NewGateway(addr string, port int, log *slog.Logger, counters *stats.Counters) (*Gateway, error) {
	raddr := &net.UDPAddr{IP: net.ParseIP(addr), Port: port}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &Gateway{conn: conn, log: log, counters: counters}, nil
}

// SendPCM transmits f as a PCM TLV frame, but only when f.PTTActive is
// true: the decision to transmit belongs to VOX, this is the enforcement
// point. Frames arriving with PTTActive false are silently dropped (not
// an error).
func (g *Gateway) SendPCM(f frame.AudioFrame) {
	if !f.PTTActive {
		return
	}
	datagram := Emit(TypePCM, f.PCM)
	if _, err := g.conn.Write(datagram); err != nil {
		g.counters.TLVErrors.Add(1)
		g.log.Debug("tlv: pcm send failed", "error", err)
	}
}

// SendPTT transmits a zero-length PTT-start/PTT-stop control frame,
// out-of-band of any PCM queue so PTT transitions are never blocked by a
// backed-up data queue.
func (g *Gateway) SendPTT(on bool) {
	typ := TypePTTStop
	if on {
		typ = TypePTTStart
	}
	datagram := Emit(typ, nil)
	if _, err := g.conn.Write(datagram); err != nil {
		g.counters.TLVErrors.Add(1)
		g.log.Debug("tlv: ptt send failed", "error", err)
	}
}

// Close releases the underlying socket.
func (g *Gateway) Close() error { return g.conn.Close() }
