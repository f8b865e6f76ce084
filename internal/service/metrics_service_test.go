package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshotAggregatesCacheAndRequests(t *testing.T) {
	m := NewMetricsService()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveHTTPRequest("GET", "/plans/solve", 200, 10*time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.Equal(t, 0.5, snap.CacheHitRatio)
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.Greater(t, snap.AverageRequestDurationMs, 0.0)
}

func TestMetricsServiceObserveSolveTracksTerminalStatus(t *testing.T) {
	m := NewMetricsService()
	m.ObserveSolve("OPTIMAL", 5*time.Millisecond)
	m.ObserveSolve("INFEASIBLE", time.Millisecond)
	m.ObserveSolve("TIMEOUT", time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.SolvesTotal)
	assert.Equal(t, uint64(1), snap.SolvesInfeasible)
	assert.Equal(t, uint64(1), snap.SolvesTimedOut)
}

func TestMetricsServiceObserveModelSizeDoesNotPanic(t *testing.T) {
	m := NewMetricsService()
	m.ObserveModelSize(120, 340)
}

func TestMetricsServiceHandlerServesPrometheusFormat(t *testing.T) {
	m := NewMetricsService()
	require.NotNil(t, m.Handler())
}

func TestMetricsServiceNilReceiverIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/x", 200, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveDBQuery("select", time.Millisecond)
		m.ObserveSolve("OPTIMAL", time.Millisecond)
		m.ObserveModelSize(1, 1)
	})
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())

	rec := m.Handler()
	require.NotNil(t, rec)
}
