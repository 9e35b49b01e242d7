// Package pipeline wires the USRP and TLV codecs, the DSP processors, VOX,
// the jitter buffer and the echo interlock into the two one-way pipelines
// (TX: phone to radio, RX: radio to phone) that share process lifecycle.
// Its Start/Stop shape and context+WaitGroup goroutine lifecycle follow
// the reference bridge's MediaBridge.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"usrpdmr/internal/capture"
	"usrpdmr/internal/config"
	"usrpdmr/internal/dsp"
	"usrpdmr/internal/frame"
	"usrpdmr/internal/interlock"
	"usrpdmr/internal/jitter"
	"usrpdmr/internal/queue"
	"usrpdmr/internal/stats"
	"usrpdmr/internal/tlv"
	"usrpdmr/internal/usrpwire"
	"usrpdmr/internal/vox"
)

const queueCapacity = 100
const queueTimeout = time.Second

// Bridge owns both pipelines, the shared echo interlock, and the strict
// shutdown sequence.
type Bridge struct {
	cfg      config.Config
	log      *slog.Logger
	counters *stats.Counters

	usrpServer *usrpwire.Server
	usrpClient *usrpwire.Client
	mmdvmRx    *tlv.Receiver
	dmrGateway *tlv.Gateway

	captureSource capture.Source // optional, replaces usrpServer as TX input

	txProcessor *dsp.Processor
	rxProcessor *dsp.Processor
	voxCtrl     *vox.Controller
	jitterBuf   *jitter.Buffer
	echo        *interlock.Interlock

	q1, q2, q3 *queue.Queue // TX: usrp->processor->vox->gate
	q4, q5, q6 *queue.Queue // RX: mmdvm->jitter->processor->client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	shutdownMu sync.Mutex
	shutdownOnce sync.Once
}

// New builds a Bridge, opening all UDP sockets. captureSrc may be nil to
// use usrpServer as the TX input (the normal deployment); a non-nil
// captureSrc replaces it (bench/test mode).
func New(parent context.Context, cfg config.Config, log *slog.Logger, captureSrc capture.Source) (*Bridge, error) {
	ctx, cancel := context.WithCancel(parent)
	counters := &stats.Counters{}

	usrpServer, err := usrpwire.NewServer(cfg.USRP.ListenAddress, cfg.USRP.ListenPort, cfg.USRP.BufferSize, log, counters)
	if err != nil {
		cancel()
		return nil, err
	}
	usrpClient, err := usrpwire.NewClient(cfg.USRPClient.TargetAddress, cfg.USRPClient.TargetPort, log, counters)
	if err != nil {
		cancel()
		usrpServer.Close()
		return nil, err
	}
	mmdvmRx, err := tlv.NewReceiver(cfg.MMDVMRx.ListenAddress, cfg.MMDVMRx.RxPort, 65536, log, counters)
	if err != nil {
		cancel()
		usrpServer.Close()
		usrpClient.Close()
		return nil, err
	}
	dmrGateway, err := tlv.NewGateway(cfg.MMDVM.Address, cfg.MMDVM.Port, log, counters)
	if err != nil {
		cancel()
		usrpServer.Close()
		usrpClient.Close()
		mmdvmRx.Close()
		return nil, err
	}

	echo := interlock.New(cfg.Interlock)

	b := &Bridge{
		cfg:           cfg,
		log:           log,
		counters:      counters,
		usrpServer:    usrpServer,
		usrpClient:    usrpClient,
		mmdvmRx:       mmdvmRx,
		dmrGateway:    dmrGateway,
		captureSource: captureSrc,
		txProcessor:   dsp.NewProcessor(cfg.DSPConfig(true, counters)),
		rxProcessor:   dsp.NewProcessor(cfg.DSPConfig(false, counters)),
		jitterBuf:     jitter.New(cfg.Jitter, counters, log),
		echo:          echo,
		q1:            queue.New("q1_usrp_to_processor", queueCapacity, queue.WithDropPolicy(queue.DropSilent), queue.WithLogger(log), queue.WithDropCounters(func() { counters.QueueDropsSilent.Add(1) }, nil)),
		q2:            queue.New("q2_processor_to_vox", queueCapacity, queue.WithDropPolicy(queue.DropWarnEveryN), queue.WithLogger(log), queue.WithDropCounters(nil, func() { counters.QueueDropsWarned.Add(1) })),
		q3:            queue.New("q3_vox_to_gateway", queueCapacity, queue.WithDropPolicy(queue.DropWarnEveryN), queue.WithLogger(log), queue.WithDropCounters(nil, func() { counters.QueueDropsWarned.Add(1) })),
		q4:            queue.New("q4_mmdvm_to_jitter", queueCapacity, queue.WithDropPolicy(queue.DropSilent), queue.WithLogger(log), queue.WithDropCounters(func() { counters.QueueDropsSilent.Add(1) }, nil)),
		q5:            queue.New("q5_jitter_to_processor", queueCapacity, queue.WithDropPolicy(queue.DropSilent), queue.WithLogger(log), queue.WithDropCounters(func() { counters.QueueDropsSilent.Add(1) }, nil)),
		q6:            queue.New("q6_processor_to_client", queueCapacity, queue.WithDropPolicy(queue.DropWarnEveryN), queue.WithLogger(log), queue.WithDropCounters(nil, func() { counters.QueueDropsWarned.Add(1) })),
		ctx:           ctx,
		cancel:        cancel,
	}
	b.voxCtrl = vox.New(cfg.VOX, func(on bool) { dmrGateway.SendPTT(on) }, counters, log)
	return b, nil
}

// Counters exposes the bridge's counters for an outer stats/metrics
// adapter.
func (b *Bridge) Counters() *stats.Counters { return b.counters }

// Start launches every pipeline goroutine.
func (b *Bridge) Start() {
	b.log.Info("pipeline starting")

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.usrpServer.Run(b.ctx) }()

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.mmdvmRx.Run(b.ctx) }()

	txIn := b.usrpServer.Frames()
	if b.captureSource != nil {
		txIn = b.captureSource.Frames()
	}

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.pumpIngress(txIn, b.q1) }()

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.runTXProcessor() }()

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.runTXGate() }()

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.runTXEgress() }()

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.pumpIngress(b.mmdvmRx.Frames(), b.q4) }()

	q4Chan := b.chanOf(b.q4)
	q5WriteChan := b.chanOfWrite(b.q5)
	q5ReadChan := b.chanOf(b.q5)

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.jitterBuf.Run(b.ctx, q4Chan, q5WriteChan) }()

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.runRXProcessor(q5ReadChan) }()

	b.wg.Add(1)
	go func() { defer b.wg.Done(); b.runRXEgress() }()
}

// pumpIngress bridges a raw frame channel (from a codec's Run goroutine)
// into a queue with the ingress drop-newest-silent policy.
func (b *Bridge) pumpIngress(in <-chan frame.AudioFrame, q *queue.Queue) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case f, ok := <-in:
			if !ok {
				return
			}
			q.PutDrop(f)
		}
	}
}

// chanOf and chanOfWrite adapt a Queue into the plain channels the jitter
// buffer's Run signature expects, by running a small forwarding goroutine
// bounded by the bridge's own context. This keeps Queue's own API
// timeout-based while letting the jitter buffer use cheap non-blocking
// channel ops internally.
func (b *Bridge) chanOf(q *queue.Queue) <-chan frame.AudioFrame {
	out := make(chan frame.AudioFrame, queueCapacity)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(out)
		for {
			f, ok := q.TryGet()
			if !ok {
				select {
				case <-b.ctx.Done():
					return
				case <-time.After(time.Millisecond):
					continue
				}
			}
			select {
			case out <- f:
			case <-b.ctx.Done():
				return
			}
		}
	}()
	return out
}

func (b *Bridge) chanOfWrite(q *queue.Queue) chan<- frame.AudioFrame {
	in := make(chan frame.AudioFrame, queueCapacity)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-b.ctx.Done():
				return
			case f, ok := <-in:
				if !ok {
					return
				}
				q.PutDrop(f)
			}
		}
	}()
	return in
}

func (b *Bridge) runTXProcessor() {
	for {
		f, ok := b.q1.GetBlocking(b.ctx, queueTimeout)
		if !ok {
			if b.ctx.Err() != nil {
				return
			}
			continue
		}
		b.txProcessor.Process(&f)
		b.q2.PutDrop(f)
	}
}

// runTXGate applies the VOX decision and the echo-interlock gate, then
// forwards surviving frames toward the DMR gateway.
func (b *Bridge) runTXGate() {
	for {
		f, ok := b.q2.GetBlocking(b.ctx, queueTimeout)
		if !ok {
			if b.ctx.Err() != nil {
				return
			}
			continue
		}

		muted := b.echo.IsTxMuted()
		if muted {
			gained := dsp.ApplyGain(nil, dsp.BytesToSamples(nil, f.PCM), b.echo.TxGain(1.0, true))
			f.PCM = dsp.SamplesToBytes(nil, gained)
			f.EchoMuted = true
		}

		forward := b.voxCtrl.Process(&f, vox.NowMs())
		if !forward {
			continue
		}
		if f.EchoMuted || !f.PTTActive {
			if f.EchoMuted {
				b.counters.EchoMutedFrames.Add(1)
			}
			continue
		}
		b.q3.PutDrop(f)
	}
}

func (b *Bridge) runTXEgress() {
	for {
		f, ok := b.q3.GetBlocking(b.ctx, queueTimeout)
		if !ok {
			if b.ctx.Err() != nil {
				return
			}
			continue
		}
		b.dmrGateway.SendPCM(f)
	}
}

func (b *Bridge) runRXProcessor(ch <-chan frame.AudioFrame) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case f, ok := <-ch:
			if !ok {
				return
			}
			b.echo.NoteRxActive()
			b.rxProcessor.Process(&f)
			b.q6.PutDrop(f)
		}
	}
}

func (b *Bridge) runRXEgress() {
	for {
		f, ok := b.q6.GetBlocking(b.ctx, queueTimeout)
		if !ok {
			if b.ctx.Err() != nil {
				return
			}
			continue
		}
		b.usrpClient.Send(f)
	}
}

// Stop runs the strict 5-step shutdown sequence: clear running, send a
// final PTT-stop best-effort and force VOX off, close sockets, join all
// goroutines against one shared 2s deadline, and log final stats. When the
// deadline is exceeded a single warning is logged; it does not name which
// goroutine failed to exit. Idempotent and safe to call concurrently (e.g.
// from competing signal handlers).
func (b *Bridge) Stop() {
	b.shutdownOnce.Do(func() {
		b.shutdownMu.Lock()
		defer b.shutdownMu.Unlock()

		b.log.Info("pipeline stopping")

		// Step 1: clear running.
		b.cancel()

		// Step 2: final PTT-stop best-effort + force VOX off.
		b.dmrGateway.SendPTT(false)
		b.voxCtrl.ForceOff()

		// Step 3: close all listening sockets.
		b.usrpServer.Close()
		b.mmdvmRx.Close()
		b.usrpClient.Close()
		b.dmrGateway.Close()
		if b.captureSource != nil {
			b.captureSource.Close()
		}

		// Step 4: join all threads with a deadline.
		done := make(chan struct{})
		go func() { b.wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			b.log.Warn("pipeline: shutdown join deadline exceeded")
		}

		// Step 5: emit final statistics.
		snap := b.counters.Snapshot()
		b.log.Info("pipeline stopped", "stats", snap)
	})
}
