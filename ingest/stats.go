package ingest

import (
	"sync"
	"time"
)

// Stats is the single shared structure workers mutate during a run. Every
// field is guarded by one lock; workers write through the Add methods and the
// scheduler reads consistent snapshots for reporting.
type Stats struct {
	mu            sync.Mutex
	processed     int
	failed        int
	totalRequests int
	totalTokens   int
	rateLimitHits int
	retries       int
	startTime     time.Time
}

// StatsSnapshot is a consistent point-in-time copy of run statistics.
type StatsSnapshot struct {
	Processed     int
	Failed        int
	TotalRequests int
	TotalTokens   int
	RateLimitHits int
	Retries       int
	Elapsed       time.Duration

	// Throughput is files completed per second since Start.
	Throughput float64

	// ETA estimates time to drain the given remaining count at the current
	// throughput. Zero when throughput is zero.
	ETA time.Duration
}

// NewStats creates run statistics starting now.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// AddProcessed records one successfully ingested file.
func (s *Stats) AddProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
}

// AddFailed records one failed file.
func (s *Stats) AddFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

// AddRequest records one successful provider request and its token cost.
func (s *Stats) AddRequest(tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
	s.totalTokens += tokens
}

// AddRateLimitHit records one provider throttling signal.
func (s *Stats) AddRateLimitHit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimitHits++
}

// AddRetry records one retried provider call.
func (s *Stats) AddRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries++
}

// Snapshot returns a consistent copy of the counters with derived throughput
// and an ETA for the given remaining file count.
func (s *Stats) Snapshot(remaining int) StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Since(s.startTime)
	snap := StatsSnapshot{
		Processed:     s.processed,
		Failed:        s.failed,
		TotalRequests: s.totalRequests,
		TotalTokens:   s.totalTokens,
		RateLimitHits: s.rateLimitHits,
		Retries:       s.retries,
		Elapsed:       elapsed,
	}

	completed := s.processed + s.failed
	if elapsed > 0 && completed > 0 {
		snap.Throughput = float64(completed) / elapsed.Seconds()
	}
	if snap.Throughput > 0 && remaining > 0 {
		snap.ETA = time.Duration(float64(remaining)/snap.Throughput) * time.Second
	}
	return snap
}
