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


package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/storage"
)

// Config holds the tunables of one enrichment pass.
type Config struct {
	// Workers bounds the classifier concurrency. Classification is one
	// chat-completion call per document, so a small pool suffices.
	Workers int

	// Force reclassifies every document, including already classified ones.
	Force bool

	// ExcerptChunks is how many leading chunks form the excerpt shown to
	// the classifier.
	ExcerptChunks int

	// ExcerptChars truncates the assembled excerpt.
	ExcerptChars int

	// MaxRetries is the maximum number of attempts per classifier call.
	MaxRetries int

	// RetryBaseDelay and RetryMaxDelay shape the exponential backoff
	// between attempts.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// DefaultConfig returns the enrichment defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:        4,
		ExcerptChunks:  3,
		ExcerptChars:   2000,
		MaxRetries:     5,
		RetryBaseDelay: 2 * time.Second,
		RetryMaxDelay:  30 * time.Second,
	}
}

// Validate checks the configuration before a pass starts.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("enrich config: Workers must be positive")
	}
	if c.ExcerptChunks < 1 {
		return fmt.Errorf("enrich config: ExcerptChunks must be positive")
	}
	if c.MaxRetries < 1 {
		return ErrInvalidMaxAttempts
	}
	return nil
}

// Report summarizes one enrichment pass.
type Report struct {
	Candidates int
	Enriched   int
	Failed     int
	Skipped    int
	Elapsed    time.Duration
}

// Enricher runs the metadata classification pass: for each document still
// missing real metadata it rebuilds an excerpt from the stored chunks, asks
// the classifier for title, author and category, and writes the result back
// to the fingerprint store. Documents whose responses cannot be parsed stay
// unclassified and are picked up again by the next pass.
type Enricher struct {
	cfg        *Config
	docs       storage.DocumentRepository
	vectors    storage.VectorCollection
	errLog     storage.ErrorLog
	classifier ai.MetadataClassifier
	progress   io.Writer
	logger     *slog.Logger
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithProgressWriter sets where progress lines are written.
func WithProgressWriter(w io.Writer) EnricherOption {
	return func(e *Enricher) {
		if w != nil {
			e.progress = w
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEnricher creates an enricher over the given stores and classifier.
func NewEnricher(
	cfg *Config,
	docs storage.DocumentRepository,
	vectors storage.VectorCollection,
	errLog storage.ErrorLog,
	classifier ai.MetadataClassifier,
	opts ...EnricherOption,
) (*Enricher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if docs == nil {
		return nil, errors.New("document repository required")
	}
	if vectors == nil {
		return nil, errors.New("vector collection required")
	}
	if errLog == nil {
		return nil, errors.New("error log required")
	}
	if classifier == nil {
		return nil, errors.New("metadata classifier required")
	}

	e := &Enricher{
		cfg:        cfg,
		docs:       docs,
		vectors:    vectors,
		errLog:     errLog,
		classifier: classifier,
		progress:   os.Stderr,
		logger:     slog.Default().With("component", "enricher"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes one enrichment pass and returns the summary. Per-document
// failures are recorded and never fail the pass.
func (e *Enricher) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	candidates, err := e.candidates(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(e.progress, "Classifying %d documents (%d workers)\n", len(candidates), e.cfg.Workers)
	if len(candidates) == 0 {
		return &Report{Elapsed: time.Since(start)}, nil
	}

	pool, err := ants.NewPool(e.cfg.Workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		wg                        sync.WaitGroup
		mu                        sync.Mutex
		enriched, failed, skipped int
	)
	for _, doc := range candidates {
		if ctx.Err() != nil {
			break
		}

		doc := doc
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			err := e.enrichOne(ctx, doc)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				enriched++
			case errors.Is(err, ErrNoChunks):
				skipped++
			default:
				failed++
			}
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit document: %w", submitErr)
		}
	}
	wg.Wait()

	rep := &Report{
		Candidates: len(candidates),
		Enriched:   enriched,
		Failed:     failed,
		Skipped:    skipped,
		Elapsed:    time.Since(start),
	}
	fmt.Fprintf(e.progress, "Enrichment complete: %d classified, %d failed, %d skipped in %v\n",
		rep.Enriched, rep.Failed, rep.Skipped, rep.Elapsed.Round(time.Second))
	return rep, nil
}

// candidates returns the documents to classify in this pass.
func (e *Enricher) candidates(ctx context.Context) ([]*core.Document, error) {
	if e.cfg.Force {
		docs, err := e.docs.ListDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		return docs, nil
	}
	docs, err := e.docs.ListUnclassified(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unclassified documents: %w", err)
	}
	return docs, nil
}

// enrichOne classifies a single document and writes the metadata back.
func (e *Enricher) enrichOne(ctx context.Context, doc *core.Document) error {
	excerpt, err := e.buildExcerpt(ctx, doc.FileID)
	if err != nil {
		if errors.Is(err, ErrNoChunks) {
			e.logger.Warn("no chunks stored for document, skipping", "file", doc.Filename)
			return err
		}
		e.recordFailure(ctx, doc, core.KindConnectivity, err)
		return err
	}

	var meta *ai.DocumentMetadata
	err = RetryWithBackoff(ctx, func() error {
		var callErr error
		meta, callErr = e.classifier.Classify(ctx, excerpt)
		return callErr
	}, e.cfg.MaxRetries, e.cfg.RetryBaseDelay, e.cfg.RetryMaxDelay)
	if err != nil {
		// An unparseable response leaves the document unclassified so the
		// next pass retries it with a fresh completion.
		kind := core.KindProviderError
		if errors.Is(err, ai.ErrParseFailure) {
			kind = core.KindParseError
		} else if isRetryable(err) {
			kind = core.KindRateLimited
		}
		e.recordFailure(ctx, doc, kind, err)
		return err
	}

	if err := e.docs.UpdateMetadata(ctx, doc.FileID, meta.Title, meta.Author, meta.Category); err != nil {
		e.recordFailure(ctx, doc, core.KindConnectivity, err)
		return err
	}

	e.logger.Info("document classified",
		"file", doc.Filename,
		"title", meta.Title,
		"author", meta.Author,
		"category", meta.Category)
	return nil
}

// buildExcerpt joins the document's leading chunks into the classifier
// excerpt, truncated to the configured size.
func (e *Enricher) buildExcerpt(ctx context.Context, docID core.FileID) (string, error) {
	chunks, err := e.vectors.GetChunksByDoc(ctx, docID, e.cfg.ExcerptChunks)
	if err != nil {
		return "", fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return "", ErrNoChunks
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Content)
	}
	excerpt := strings.Join(parts, "\n\n")
	if e.cfg.ExcerptChars > 0 && len(excerpt) > e.cfg.ExcerptChars {
		excerpt = excerpt[:e.cfg.ExcerptChars]
	}
	return excerpt, nil
}

func (e *Enricher) recordFailure(ctx context.Context, doc *core.Document, kind core.ErrorKind, err error) {
	e.logger.Warn("classification failed",
		"file", doc.Filename,
		"kind", kind.String(),
		"err", err)

	row := &core.IngestionError{
		DocID:    doc.FileID,
		Filename: doc.Filename,
		Kind:     kind,
		Message:  err.Error(),
	}
	if logErr := e.errLog.Append(ctx, row); logErr != nil {
		e.logger.Error("failed to record classification error", "file", doc.Filename, "err", logErr)
	}
}
