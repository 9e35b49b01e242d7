package pipeline

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"usrpdmr/internal/config"
	"usrpdmr/internal/frame"
	"usrpdmr/internal/tlv"
	"usrpdmr/internal/usrpwire"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.ListenUDP("udp", &net.UDPAddr{})
	require.NoError(t, err)
	defer l.Close()
	return l.LocalAddr().(*net.UDPAddr).Port
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{}
	cfg.USRP.ListenAddress = "127.0.0.1"
	cfg.USRP.ListenPort = freePort(t)
	cfg.USRP.BufferSize = 65536
	cfg.USRPClient.TargetAddress = "127.0.0.1"
	cfg.USRPClient.TargetPort = freePort(t)
	cfg.MMDVM.Address = "127.0.0.1"
	cfg.MMDVM.Port = freePort(t)
	cfg.MMDVM.BufferSize = 65536
	cfg.MMDVMRx.ListenAddress = "127.0.0.1"
	cfg.MMDVMRx.RxPort = freePort(t)
	cfg.Audio.SampleRate = 8000
	cfg.Audio.Channels = 1
	cfg.Audio.Gain = 1.0
	cfg.Audio.GainMax = 10.0
	cfg.VOX.Threshold = 500
	cfg.VOX.HangtimeMs = 200
	cfg.VOX.HardTimeoutMs = 60000
	cfg.Jitter.TargetDepth = 3
	cfg.Jitter.FrameTimeMs = 20
	return cfg
}

func TestBridgeStartStopIsClean(t *testing.T) {
	cfg := testConfig(t)
	log := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	b, err := pipelineNew(t, cfg, log)
	require.NoError(t, err)
	b.Start()
	time.Sleep(50 * time.Millisecond)
	b.Stop()
	b.Stop() // idempotent
}

func pipelineNew(t *testing.T, cfg config.Config, log *slog.Logger) (*Bridge, error) {
	t.Helper()
	return New(context.Background(), cfg, log, nil)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestBridgeTXPathDeliversLoudFrameAsPTT(t *testing.T) {
	cfg := testConfig(t)
	log := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	b, err := New(context.Background(), cfg, log, nil)
	require.NoError(t, err)
	b.Start()
	defer b.Stop()

	// Listen on the modem-facing port the gateway sends PCM to.
	modemConn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: cfg.MMDVM.Port})
	require.NoError(t, err)
	defer modemConn.Close()

	// Send a loud USRP frame toward the bridge's USRP listener.
	usrpConn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: cfg.USRP.ListenPort})
	require.NoError(t, err)
	defer usrpConn.Close()

	samples := make([]int16, 160)
	for i := range samples {
		samples[i] = 20000
	}
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		pcm[i*2] = byte(s)
		pcm[i*2+1] = byte(s >> 8)
	}

	fr := frame.AudioFrame{PCM: pcm, SampleRate: 16000, Channels: 1, SampleWidthBytes: 2}
	datagram := usrpwire.EmitDatagram(fr, 1, 0)

	// Send several loud frames so VOX has time to activate and a PCM
	// frame is forwarded once ptt_active is true.
	for i := 0; i < 5; i++ {
		_, err = usrpConn.Write(datagram)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	require.NoError(t, modemConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 4096)
	// The VOX activation sends PTT-start before the first PCM frame.
	n, _, err := modemConn.ReadFromUDP(buf)
	require.NoError(t, err)
	item, err := tlv.Parse(buf[:n])
	require.NoError(t, err)
	require.Equal(t, tlv.TypePTTStart, item.Type)

	n, _, err = modemConn.ReadFromUDP(buf)
	require.NoError(t, err)
	item, err = tlv.Parse(buf[:n])
	require.NoError(t, err)
	require.Equal(t, tlv.TypePCM, item.Type)
}

