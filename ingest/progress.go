package ingest

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressInterval is how often a progress line is emitted during a run.
const progressInterval = 10 * time.Second

// ProgressTracker periodically reports run progress derived from the shared
// statistics: completion percentage, throughput, and estimated time to
// finish.
type ProgressTracker struct {
	writer io.Writer
	stats  *Stats
	total  int

	mu      sync.Mutex
	stop    chan struct{}
	stopped bool
}

// NewProgressTracker creates a tracker over total files.
func NewProgressTracker(writer io.Writer, stats *Stats, total int) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		stats:  stats,
		total:  total,
		stop:   make(chan struct{}),
	}
}

// Start begins periodic reporting in a background goroutine.
func (p *ProgressTracker) Start() {
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.report()
			}
		}
	}()
}

// Stop halts reporting and prints one final progress line.
func (p *ProgressTracker) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stop)
	p.report()
}

func (p *ProgressTracker) report() {
	snap := p.stats.Snapshot(p.remaining())

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(snap.Processed+snap.Failed) / float64(p.total) * 100.0
	}

	line := fmt.Sprintf("Progress: %d/%d (%.1f%%) - %.2f files/s",
		snap.Processed+snap.Failed, p.total, percentage, snap.Throughput)
	if snap.ETA > 0 {
		line += fmt.Sprintf(" - ETA %v", snap.ETA.Round(time.Second))
	}
	fmt.Fprintln(p.writer, line)
}

func (p *ProgressTracker) remaining() int {
	snap := p.stats.Snapshot(0)
	remaining := p.total - snap.Processed - snap.Failed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
