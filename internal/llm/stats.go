package llm

import (
	"sort"
	"sync"
	"time"
)

// Snapshot is a point-in-time aggregate of call latencies.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Stats tracks recent call latencies within a rolling window.
type Stats struct {
	mu     sync.Mutex
	at     []time.Time
	dur    []int64
	maxAge time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{maxAge: maxAge}
}

// Record adds one latency sample in milliseconds.
func (s *Stats) Record(ms int64) {
	if ms < 0 {
		ms = 0
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)
	s.at = append(s.at, now)
	s.dur = append(s.dur, ms)
}

// Get returns the current aggregate over the window.
func (s *Stats) Get() Snapshot {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(now)

	if len(s.dur) == 0 {
		return Snapshot{}
	}

	sorted := make([]int64, len(s.dur))
	copy(sorted, s.dur)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}

	return Snapshot{
		Count: len(sorted),
		MinMs: sorted[0],
		MaxMs: sorted[len(sorted)-1],
		AvgMs: float64(sum) / float64(len(sorted)),
		P50Ms: percentile(sorted, 50),
		P95Ms: percentile(sorted, 95),
		P99Ms: percentile(sorted, 99),
	}
}

func (s *Stats) prune(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	w := 0
	for i, ts := range s.at {
		if !ts.Before(cutoff) {
			s.at[w] = ts
			s.dur[w] = s.dur[i]
			w++
		}
	}
	s.at = s.at[:w]
	s.dur = s.dur[:w]
}

// percentile interpolates linearly between the two nearest sorted samples.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	idx := float64(len(sorted)-1) * pct / 100
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[hi])-float64(sorted[lo]))*frac
}
