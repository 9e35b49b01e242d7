package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSnapshotReflectsCounters(t *testing.T) {
	c := &Counters{}
	c.USRPErrors.Add(3)
	c.VOXActivations.Add(1)
	snap := c.Snapshot()
	require.Equal(t, uint64(3), snap.USRPErrors)
	require.Equal(t, uint64(1), snap.VOXActivations)
	require.Equal(t, uint64(0), snap.TLVErrors)
}

func TestPrometheusExporterCollectsAllCounters(t *testing.T) {
	c := &Counters{}
	c.JitterOverflows.Add(5)
	exp := NewPrometheusExporter(c)
	require.Equal(t, 16, testutil.CollectAndCount(exp))
}
