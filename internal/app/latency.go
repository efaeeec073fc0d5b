package app

import (
	"sort"
	"sync"
	"time"
)

// minLatencySamples is how many searches the window needs before a median is reported.
const minLatencySamples = 5

// LatencyTracker collects search durations over a rolling window and reports
// the P50. Safe for concurrent use; searches record from pool workers.
type LatencyTracker struct {
	window time.Duration

	mu      sync.Mutex
	samples []latencySample
}

type latencySample struct {
	ts time.Time
	d  time.Duration
}

// NewLatencyTracker creates a tracker with the given rolling window duration.
func NewLatencyTracker(window time.Duration) *LatencyTracker {
	return &LatencyTracker{window: window}
}

// Record adds a search duration at the current time.
func (l *LatencyTracker) Record(d time.Duration) {
	l.RecordAt(time.Now(), d)
}

// RecordAt adds a search duration at a specific timestamp. Samples must be
// recorded in time order; negative durations are dropped.
func (l *LatencyTracker) RecordAt(ts time.Time, d time.Duration) {
	if d < 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.samples = append(l.samples, latencySample{ts: ts, d: d})
	l.evict(ts)
}

// SnapshotAt returns how many searches fall inside the window ending at now
// and their median duration. The median is 0 below minLatencySamples.
func (l *LatencyTracker) SnapshotAt(now time.Time) (int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(now)
	n := len(l.samples)
	if n < minLatencySamples {
		return n, 0
	}
	// Copy durations for sorting (don't mutate sample order)
	ds := make([]time.Duration, n)
	for i, s := range l.samples {
		ds[i] = s.d
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	return n, ds[n/2]
}

// Snapshot is SnapshotAt(time.Now()).
func (l *LatencyTracker) Snapshot() (int, time.Duration) {
	return l.SnapshotAt(time.Now())
}

// evict removes samples older than the window. Caller holds mu.
func (l *LatencyTracker) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.samples) && l.samples[i].ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		l.samples = l.samples[i:]
	}
}
