// Package queue provides the bounded frame queue used between every
// pipeline stage (Q1..Q6 in the component design). It wraps a buffered
// channel with timeout-based Put/Get and named drop policies, generalizing
// the bridge's non-blocking drain-or-fallback channel idiom into an
// explicit, reusable type.
package queue

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"usrpdmr/internal/errkind"
	"usrpdmr/internal/frame"
)

// DropPolicy controls what PutDrop does when the queue is full.
type DropPolicy int

const (
	// DropSilent drops the newest frame without logging (used by UDP
	// ingress stages per the resource model).
	DropSilent DropPolicy = iota
	// DropWarnEveryN drops the newest frame and logs a warning every N
	// drops, to avoid flooding logs under sustained backpressure (used by
	// TX stages per the resource model).
	DropWarnEveryN
)

// Queue is a bounded FIFO of AudioFrame with blocking-with-timeout and
// non-blocking drop-on-full operations.
type Queue struct {
	ch       chan frame.AudioFrame
	name     string
	policy   DropPolicy
	warnN    uint64
	dropped  atomic.Uint64
	onDropSilent func()
	onDropWarned func()
	log      *slog.Logger
}

// Option configures a Queue at construction time.
type Option func(*Queue)

// WithDropPolicy sets the drop policy (default DropSilent).
func WithDropPolicy(p DropPolicy) Option {
	return func(q *Queue) { q.policy = p }
}

// WithWarnEvery sets the log-every-N-drops cadence for DropWarnEveryN
// (default 50).
func WithWarnEvery(n uint64) Option {
	return func(q *Queue) {
		if n > 0 {
			q.warnN = n
		}
	}
}

// WithLogger attaches a logger used for warn-every-N drop messages.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.log = l }
}

// WithDropCounters wires counter callbacks invoked on every drop, split by
// whether the drop was logged.
func WithDropCounters(onSilent, onWarned func()) Option {
	return func(q *Queue) {
		q.onDropSilent = onSilent
		q.onDropWarned = onWarned
	}
}

// New creates a bounded queue with the given capacity (default queue size
// is 100 frames per the resource model; pass capacity explicitly).
func New(name string, capacity int, opts ...Option) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue{
		ch:     make(chan frame.AudioFrame, capacity),
		name:   name,
		policy: DropSilent,
		warnN:  50,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the queue's diagnostic name.
func (q *Queue) Name() string { return q.name }

// Len returns the number of frames currently queued.
func (q *Queue) Len() int { return len(q.ch) }

// Dropped returns the total number of frames dropped for backpressure.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// PutBlocking enqueues f, blocking up to timeout. It reports false if the
// timeout elapsed or ctx was cancelled first (caller treats this as a
// Backpressure condition).
func (q *Queue) PutBlocking(ctx context.Context, f frame.AudioFrame, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = time.Second
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case q.ch <- f:
		return true
	case <-ctx.Done():
		return false
	case <-t.C:
		return false
	}
}

// PutDrop attempts to enqueue f without blocking. On a full queue it drops
// f according to the configured DropPolicy and returns false.
func (q *Queue) PutDrop(f frame.AudioFrame) bool {
	select {
	case q.ch <- f:
		return true
	default:
		n := q.dropped.Add(1)
		switch q.policy {
		case DropWarnEveryN:
			if q.onDropWarned != nil {
				q.onDropWarned()
			}
			if n%q.warnN == 0 && q.log != nil {
				q.log.Warn("queue full, dropping newest frame",
					"error", errkind.Wrap(errkind.Backpressure, "queue %s full, dropped_total=%d", q.name, n))
			}
		default:
			if q.onDropSilent != nil {
				q.onDropSilent()
			}
		}
		return false
	}
}

// GetBlocking dequeues a frame, blocking up to timeout (default 1s per the
// concurrency model). It reports false on timeout or context cancellation.
func (q *Queue) GetBlocking(ctx context.Context, timeout time.Duration) (frame.AudioFrame, bool) {
	if timeout <= 0 {
		timeout = time.Second
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case f := <-q.ch:
		return f, true
	case <-ctx.Done():
		return frame.AudioFrame{}, false
	case <-t.C:
		return frame.AudioFrame{}, false
	}
}

// TryGet dequeues a frame without blocking.
func (q *Queue) TryGet() (frame.AudioFrame, bool) {
	select {
	case f := <-q.ch:
		return f, true
	default:
		return frame.AudioFrame{}, false
	}
}
