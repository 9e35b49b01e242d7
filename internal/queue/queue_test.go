package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"usrpdmr/internal/frame"
)

func TestPutDropSilentDoesNotInvokeWarnedCallback(t *testing.T) {
	var silent, warned int
	q := New("t", 1,
		WithDropPolicy(DropSilent),
		WithDropCounters(func() { silent++ }, func() { warned++ }))

	require.True(t, q.PutDrop(frame.AudioFrame{}))
	require.False(t, q.PutDrop(frame.AudioFrame{}))
	require.Equal(t, 1, silent)
	require.Equal(t, 0, warned)
	require.Equal(t, uint64(1), q.Dropped())
}

func TestPutDropWarnEveryNInvokesWarnedCallbackOnEveryDrop(t *testing.T) {
	var warned int
	q := New("t", 1,
		WithDropPolicy(DropWarnEveryN),
		WithWarnEvery(2),
		WithDropCounters(nil, func() { warned++ }))

	require.True(t, q.PutDrop(frame.AudioFrame{}))
	for i := 0; i < 3; i++ {
		q.PutDrop(frame.AudioFrame{})
	}
	require.Equal(t, 3, warned)
	require.Equal(t, uint64(3), q.Dropped())
}

func TestGetBlockingTimesOutOnEmptyQueue(t *testing.T) {
	q := New("t", 1)
	_, ok := q.GetBlocking(context.Background(), 10*time.Millisecond)
	require.False(t, ok)
}

func TestPutBlockingThenGetBlockingRoundTrips(t *testing.T) {
	q := New("t", 1)
	f := frame.AudioFrame{Sequence: 7}
	require.True(t, q.PutBlocking(context.Background(), f, time.Second))
	got, ok := q.GetBlocking(context.Background(), time.Second)
	require.True(t, ok)
	require.Equal(t, uint32(7), got.Sequence)
}

func TestTryGetOnEmptyQueueReportsFalse(t *testing.T) {
	q := New("t", 1)
	_, ok := q.TryGet()
	require.False(t, ok)
}
