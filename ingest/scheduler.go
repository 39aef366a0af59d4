// Copyright 2025 Gabriel Dave
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/loader"
	"github.com/gabrieldave/ingesta/storage"
)

// supportedExtensions lists the file types discovery picks up. Formats the
// loader cannot extract yet still get discovered so their failures are
// visible in the error log instead of silently skipped.
var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".epub": {},
	".txt":  {},
	".md":   {},
	".docx": {},
	".doc":  {},
	".html": {},
	".htm":  {},
}

// Config holds the tunables of one ingestion run.
type Config struct {
	// DataDir is the directory walked for candidate files.
	DataDir string

	// Collection names the vector collection written to.
	Collection string

	// ChunkSize and ChunkOverlap configure the chunker.
	ChunkSize    int
	ChunkOverlap int

	// BatchSize is the number of files per worker batch. Larger batches
	// amortize overhead; smaller ones give earlier partial feedback.
	BatchSize int

	// EmbeddingBatchSize is the number of chunks per embedding request.
	EmbeddingBatchSize int

	// MaxWorkers bounds the worker pool. Latency-bound work tolerates
	// headroom up to around 10; beyond that throttling dominates.
	MaxWorkers int

	// TargetRPM and TargetTPM are the provider budget targets, usually set
	// at a safety margin of 70-80% of the published limits.
	TargetRPM int
	TargetTPM int

	// MaxFileTokens is the hard per-file ceiling; larger files are skipped
	// and logged.
	MaxFileTokens int

	// MinChunksPerFile flags files yielding fewer chunks as suspicious.
	MinChunksPerFile int

	// ForceReindex reprocesses files already fingerprinted, overwriting
	// their chunks.
	ForceReindex bool
}

// DefaultConfig returns the tuning used by the production corpus.
func DefaultConfig() *Config {
	return &Config{
		Collection:         "books",
		ChunkSize:          1024,
		ChunkOverlap:       200,
		BatchSize:          30,
		EmbeddingBatchSize: 30,
		MaxWorkers:         5,
		TargetRPM:          3500,
		TargetTPM:          3500000,
		MaxFileTokens:      800000,
		MinChunksPerFile:   5,
	}
}

// Validate checks the configuration before a run starts.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("ingest config: DataDir is required")
	}
	if c.Collection == "" {
		return fmt.Errorf("ingest config: Collection is required")
	}
	if err := core.ValidateChunkConfig(c.ChunkSize, c.ChunkOverlap); err != nil {
		return err
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("ingest config: BatchSize must be positive")
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("ingest config: MaxWorkers must be positive")
	}
	return nil
}

// Report is the final summary of one run.
type Report struct {
	Discovered    int
	Skipped       int
	Processed     int
	Failed        int
	TotalRequests int
	TotalTokens   int
	RateLimitHits int
	Retries       int
	Elapsed       time.Duration
	Throughput    float64
	Suspicious    []SuspiciousFile
}

// Scheduler drives a run: discover candidate files, subtract the already
// ingested set, partition into batches, and dispatch them across a bounded
// worker pool while aggregating shared statistics.
type Scheduler struct {
	cfg      *Config
	engine   *engine
	stats    *Stats
	progress io.Writer
	logger   *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithProgressWriter sets where progress lines are written. Defaults to
// os.Stderr; io.Discard silences them.
func WithProgressWriter(w io.Writer) SchedulerOption {
	return func(s *Scheduler) {
		if w != nil {
			s.progress = w
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler over the given stores and services.
func NewScheduler(
	cfg *Config,
	docs storage.DocumentRepository,
	vectors storage.VectorCollection,
	errLog storage.ErrorLog,
	embedder ai.Embedder,
	load loader.Loader,
	opts ...SchedulerOption,
) (*Scheduler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if vectors == nil {
		return nil, ErrVectorCollectionRequired
	}
	if errLog == nil {
		return nil, ErrErrorLogRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if load == nil {
		return nil, ErrLoaderRequired
	}

	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	stats := NewStats()
	logger := slog.Default().With("component", "scheduler")

	s := &Scheduler{
		cfg:      cfg,
		stats:    stats,
		progress: os.Stderr,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = &engine{
		cfg:      cfg,
		docs:     docs,
		vectors:  vectors,
		errLog:   errLog,
		embedder: embedder,
		load:     load,
		chunker:  chunker,
		budgeter: NewTokenBudgeter(),
		governor: NewGovernor(stats,
			WithRequestPacing(cfg.TargetRPM),
			WithCallTimeout(2*time.Minute),
		),
		stats:  stats,
		logger: s.logger.With("component", "engine"),
	}
	return s, nil
}

// Run executes one full ingestion pass and returns the final report.
// Per-file failures are recorded and do not fail the run; only a
// configuration or connectivity failure that prevents correct bookkeeping
// returns an error. Cancelling the context stops new batches from being
// dispatched; in-flight batches drain before Run returns.
func (s *Scheduler) Run(ctx context.Context) (*Report, error) {
	candidates, skipped, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.progress, "Found %d files (%d already ingested, %d to process)\n",
		len(candidates)+skipped, skipped, len(candidates))

	if len(candidates) == 0 {
		return s.report(0, skipped), nil
	}

	batches := s.partition(candidates)
	s.logger.Info("starting run",
		"files", len(candidates),
		"batches", len(batches),
		"workers", s.cfg.MaxWorkers)

	pool, err := ants.NewPool(s.cfg.MaxWorkers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	tracker := NewProgressTracker(s.progress, s.stats, len(candidates))
	tracker.Start()
	defer tracker.Stop()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fatalErr error
	)
	for _, batch := range batches {
		// Stop dispatching on cancellation or after a fatal storage
		// failure; submitted batches run to completion.
		if ctx.Err() != nil {
			break
		}
		mu.Lock()
		stop := fatalErr != nil
		mu.Unlock()
		if stop {
			break
		}

		batch := batch
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.engine.processBatch(ctx, batch); err != nil && IsFatal(err) {
				mu.Lock()
				if fatalErr == nil {
					fatalErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit batch: %w", submitErr)
		}
	}
	wg.Wait()

	if fatalErr != nil {
		return nil, fatalErr
	}

	rep := s.report(len(candidates), skipped)
	s.printReport(rep)
	return rep, nil
}

// discover walks the data directory, fingerprints every supported file, and
// subtracts the already-ingested set. A fingerprint lookup failure aborts the
// run: treating every file as new on a broken store would duplicate the whole
// corpus's embedding cost.
func (s *Scheduler) discover(ctx context.Context) ([]candidate, int, error) {
	ingested := map[core.FileID]struct{}{}
	if !s.cfg.ForceReindex {
		var err error
		ingested, err = s.engine.docs.ListIngested(ctx)
		if err != nil {
			return nil, 0, markFatal(fmt.Errorf("%w: list ingested fingerprints: %v", storage.ErrUnavailable, err))
		}
	}

	var candidates []candidate
	skipped := 0
	err := filepath.WalkDir(s.cfg.DataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			s.logger.Warn("cannot open candidate file", "path", path, "err", err)
			return nil
		}
		id, err := core.FileIDFromReader(f)
		f.Close()
		if err != nil {
			s.logger.Warn("cannot fingerprint candidate file", "path", path, "err", err)
			return nil
		}

		if _, done := ingested[id]; done {
			skipped++
			return nil
		}
		candidates = append(candidates, candidate{path: path, id: id})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk %s: %w", s.cfg.DataDir, err)
	}
	return candidates, skipped, nil
}

// partition splits candidates into fixed-size batches.
func (s *Scheduler) partition(candidates []candidate) [][]candidate {
	var batches [][]candidate
	for start := 0; start < len(candidates); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batches = append(batches, candidates[start:end])
	}
	return batches
}

func (s *Scheduler) report(total, skipped int) *Report {
	snap := s.stats.Snapshot(0)
	return &Report{
		Discovered:    total + skipped,
		Skipped:       skipped,
		Processed:     snap.Processed,
		Failed:        snap.Failed,
		TotalRequests: snap.TotalRequests,
		TotalTokens:   snap.TotalTokens,
		RateLimitHits: snap.RateLimitHits,
		Retries:       snap.Retries,
		Elapsed:       snap.Elapsed,
		Throughput:    snap.Throughput,
		Suspicious:    s.engine.suspiciousFiles(),
	}
}

func (s *Scheduler) printReport(rep *Report) {
	fmt.Fprintf(s.progress, "\nIngestion complete in %v\n", rep.Elapsed.Round(time.Second))
	fmt.Fprintf(s.progress, "  processed:       %d\n", rep.Processed)
	fmt.Fprintf(s.progress, "  failed:          %d\n", rep.Failed)
	fmt.Fprintf(s.progress, "  requests:        %d\n", rep.TotalRequests)
	fmt.Fprintf(s.progress, "  tokens:          %d\n", rep.TotalTokens)
	fmt.Fprintf(s.progress, "  rate limit hits: %d\n", rep.RateLimitHits)
	fmt.Fprintf(s.progress, "  retries:         %d\n", rep.Retries)
	fmt.Fprintf(s.progress, "  throughput:      %.2f files/s\n", rep.Throughput)
	for _, f := range rep.Suspicious {
		fmt.Fprintf(s.progress, "  suspicious: %s (%d chunks)\n", f.Filename, f.ChunkCount)
	}
}
