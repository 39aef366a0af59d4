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
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/loader"
	"github.com/gabrieldave/ingesta/storage"
)

// candidate is one file selected for ingestion: its path plus the content
// fingerprint computed during discovery.
type candidate struct {
	path string
	id   core.FileID
}

// SuspiciousFile flags a file that produced fewer chunks than expected,
// usually a sign of broken text extraction.
type SuspiciousFile struct {
	Filename   string
	ChunkCount int
}

// engine turns one file at a time into embedded, upserted chunks. It owns no
// goroutines; the scheduler runs engines inside pool workers.
type engine struct {
	cfg      *Config
	docs     storage.DocumentRepository
	vectors  storage.VectorCollection
	errLog   storage.ErrorLog
	embedder ai.Embedder
	load     loader.Loader
	chunker  *Chunker
	budgeter *TokenBudgeter
	governor *Governor
	stats    *Stats
	logger   *slog.Logger

	mu         sync.Mutex
	suspicious []SuspiciousFile
}

// processBatch runs every file in the batch, isolating per-file failures: a
// corrupt file is logged and counted, the rest of the batch proceeds. Only
// fatal storage errors and cancellation abort the batch.
func (e *engine) processBatch(ctx context.Context, batch []candidate) error {
	for _, cand := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := e.processFile(ctx, cand)
		if err == nil {
			continue
		}
		if IsFatal(err) || errors.Is(err, context.Canceled) {
			return err
		}
		e.recordFailure(ctx, cand, err)
	}
	return nil
}

// processFile runs the full pipeline for one file: load, chunk, tag, embed
// through the governor, upsert, and finally mark the fingerprint. The
// fingerprint is only written after every chunk has landed, so a crash
// mid-file leaves the file unmarked and a re-run picks it up again.
func (e *engine) processFile(ctx context.Context, cand candidate) error {
	filename := filepath.Base(cand.path)

	text, err := e.load.Load(ctx, cand.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadFailure, filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	if e.cfg.MaxFileTokens > 0 {
		if estimated := e.budgeter.EstimateTokens(text); estimated > e.cfg.MaxFileTokens {
			return fmt.Errorf("%w: %s estimated %d tokens (ceiling %d)",
				ErrFileTooLarge, filename, estimated, e.cfg.MaxFileTokens)
		}
	}

	segments, err := e.chunker.Chunk(text)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}
	if e.cfg.MinChunksPerFile > 0 && len(segments) < e.cfg.MinChunksPerFile {
		e.markSuspicious(filename, len(segments))
	}

	rows := make([]*core.Chunk, len(segments))
	for i, content := range segments {
		rows[i] = &core.Chunk{
			ID:      core.ChunkIDFor(cand.id, i, content),
			DocID:   cand.id,
			Ordinal: i,
			Content: content,
			Metadata: map[string]string{
				"file_name": filename,
				"file_path": cand.path,
				"ordinal":   strconv.Itoa(i),
			},
		}
	}

	// Forced reindexing clears the document's old rows first so content
	// changes don't leave stale chunks under superseded ids.
	if e.cfg.ForceReindex {
		if _, err := e.vectors.DeleteByDoc(ctx, cand.id); err != nil {
			return markFatal(fmt.Errorf("delete old chunks for %s: %w", filename, err))
		}
	}

	for _, batch := range e.batchRows(rows) {
		if err := e.embedAndUpsert(ctx, batch); err != nil {
			return err
		}
	}

	doc := &core.Document{
		FileID:     cand.id,
		Filename:   filename,
		FilePath:   cand.path,
		Extension:  strings.ToLower(filepath.Ext(cand.path)),
		ChunkCount: len(rows),
	}
	if err := e.docs.MarkIngested(ctx, doc); err != nil {
		return markFatal(fmt.Errorf("mark %s ingested: %w", filename, err))
	}

	e.stats.AddProcessed()
	e.logger.Info("file ingested",
		"file", filename,
		"chunks", len(rows))
	return nil
}

// embedAndUpsert embeds one batch of rows through the governor and writes
// them to the vector collection.
func (e *engine) embedAndUpsert(ctx context.Context, rows []*core.Chunk) error {
	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Content
	}
	tokens := e.budgeter.EstimateBatch(texts)

	err := e.governor.Call(ctx, tokens, func(ctx context.Context) error {
		vectors, err := e.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
		}
		for i := range rows {
			rows[i].Vector = vectors[i]
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := e.vectors.Upsert(ctx, rows...); err != nil {
		return markFatal(fmt.Errorf("upsert chunks: %w", err))
	}
	return nil
}

// batchRows partitions a file's rows by the embedding batch size, then
// re-partitions each batch that exceeds the per-minute token target.
func (e *engine) batchRows(rows []*core.Chunk) [][]*core.Chunk {
	size := e.cfg.EmbeddingBatchSize
	if size <= 0 {
		size = len(rows)
	}

	var batches [][]*core.Chunk
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		texts := make([]string, len(batch))
		for i, row := range batch {
			texts[i] = row.Content
		}

		// SplitToBudget partitions contiguously in order, so the text
		// partition lengths map straight back onto the rows.
		offset := 0
		for _, part := range e.budgeter.SplitToBudget(texts, e.cfg.TargetTPM) {
			batches = append(batches, batch[offset:offset+len(part)])
			offset += len(part)
		}
	}
	return batches
}

// recordFailure logs one per-file failure and counts it. Error-log write
// failures are reported but never escalate; losing a log row is better than
// failing the file twice.
func (e *engine) recordFailure(ctx context.Context, cand candidate, err error) {
	filename := filepath.Base(cand.path)
	kind := ClassifyFailure(err)

	e.stats.AddFailed()
	e.logger.Warn("file failed",
		"file", filename,
		"kind", kind.String(),
		"err", err)

	row := &core.IngestionError{
		DocID:    cand.id,
		Filename: filename,
		Kind:     kind,
		Message:  err.Error(),
	}
	if logErr := e.errLog.Append(ctx, row); logErr != nil {
		e.logger.Error("failed to record ingestion error", "file", filename, "err", logErr)
	}
}

func (e *engine) markSuspicious(filename string, chunks int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspicious = append(e.suspicious, SuspiciousFile{Filename: filename, ChunkCount: chunks})
}

func (e *engine) suspiciousFiles() []SuspiciousFile {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SuspiciousFile, len(e.suspicious))
	copy(out, e.suspicious)
	return out
}
