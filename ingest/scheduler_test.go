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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrieldave/ingesta/ai/mock"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/loader"
	"github.com/gabrieldave/ingesta/storage"
	"github.com/gabrieldave/ingesta/storage/badger"
)

type testStores struct {
	docs    storage.DocumentRepository
	vectors storage.VectorCollection
	errLog  storage.ErrorLog
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	docs, vectors, errLog, backend, err := badger.NewMemoryRepositories("books")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return testStores{docs: docs, vectors: vectors, errLog: errLog}
}

func newTestConfig(dir string) *Config {
	return &Config{
		DataDir:            dir,
		Collection:         "books",
		ChunkSize:          200,
		ChunkOverlap:       40,
		BatchSize:          5,
		EmbeddingBatchSize: 10,
		MaxWorkers:         2,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestScheduler(t *testing.T, cfg *Config, stores testStores) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, stores.docs, stores.vectors, stores.errLog,
		mock.NewMockEmbedder(), loader.New(), WithProgressWriter(io.Discard))
	require.NoError(t, err)
	return s
}

func TestSchedulerRunMixedBatch(t *testing.T) {
	dir := t.TempDir()
	body := strings.Repeat("Risk management is what keeps a trader in the game. ", 40)
	writeFile(t, dir, "good.txt", body)
	writeFile(t, dir, "blank.txt", "")
	writeFile(t, dir, "novel.epub", "not really an epub")
	writeFile(t, dir, "ignored.json", "{}") // undiscoverable extension

	stores := newTestStores(t)
	scheduler := newTestScheduler(t, newTestConfig(dir), stores)

	rep, err := scheduler.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Discovered)
	assert.Equal(t, 0, rep.Skipped)
	assert.Equal(t, 1, rep.Processed)
	assert.Equal(t, 2, rep.Failed)
	assert.GreaterOrEqual(t, rep.TotalRequests, 1)

	ctx := context.Background()
	count, err := stores.docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	chunks, err := stores.vectors.Count(ctx)
	require.NoError(t, err)
	assert.Greater(t, chunks, 1)

	summary, err := stores.errLog.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary[core.KindEmptyDocument])
	assert.Equal(t, 1, summary[core.KindLoadError])
}

func TestSchedulerRerunSkipsFingerprinted(t *testing.T) {
	dir := t.TempDir()
	body := strings.Repeat("Position sizing beats prediction over a long enough horizon. ", 40)
	writeFile(t, dir, "good.txt", body)
	writeFile(t, dir, "blank.txt", "")

	stores := newTestStores(t)
	ctx := context.Background()

	rep, err := newTestScheduler(t, newTestConfig(dir), stores).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Processed)

	chunksAfterFirst, err := stores.vectors.Count(ctx)
	require.NoError(t, err)

	// Same content, fresh scheduler: the good file is fingerprinted and
	// skipped, the empty one fails again.
	rep, err = newTestScheduler(t, newTestConfig(dir), stores).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 0, rep.Processed)
	assert.Equal(t, 1, rep.Failed)

	count, err := stores.docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	chunksAfterSecond, err := stores.vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, chunksAfterFirst, chunksAfterSecond)
}

func TestSchedulerForceReindexIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	body := strings.Repeat("Markets discount the future, not the past. ", 50)
	writeFile(t, dir, "good.txt", body)

	stores := newTestStores(t)
	ctx := context.Background()

	rep, err := newTestScheduler(t, newTestConfig(dir), stores).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Processed)

	chunksAfterFirst, err := stores.vectors.Count(ctx)
	require.NoError(t, err)

	cfg := newTestConfig(dir)
	cfg.ForceReindex = true
	rep, err = newTestScheduler(t, cfg, stores).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Processed)
	assert.Equal(t, 0, rep.Skipped)

	count, err := stores.docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	chunksAfterSecond, err := stores.vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, chunksAfterFirst, chunksAfterSecond)
}

func TestSchedulerManyFilesAcrossWorkers(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		body := strings.Repeat(fmt.Sprintf("Chapter %d of a trading handbook. ", i), 40)
		writeFile(t, dir, fmt.Sprintf("book-%d.txt", i), body)
	}
	writeFile(t, dir, "empty-a.txt", "")
	writeFile(t, dir, "empty-b.txt", "  \n  ")

	stores := newTestStores(t)
	cfg := newTestConfig(dir)
	cfg.BatchSize = 3
	scheduler := newTestScheduler(t, cfg, stores)

	rep, err := scheduler.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Discovered)
	assert.Equal(t, 10, rep.Processed+rep.Failed)
	assert.Equal(t, 8, rep.Processed)
	assert.Equal(t, 2, rep.Failed)
	assert.GreaterOrEqual(t, rep.TotalRequests, rep.Processed)

	count, err := stores.docs.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestSchedulerFlagsSuspiciousFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "thin.txt", "One lonely paragraph.")

	stores := newTestStores(t)
	cfg := newTestConfig(dir)
	cfg.MinChunksPerFile = 5
	scheduler := newTestScheduler(t, cfg, stores)

	rep, err := scheduler.Run(context.Background())
	require.NoError(t, err)

	// Low chunk yield is a warning, not a failure.
	assert.Equal(t, 1, rep.Processed)
	require.Len(t, rep.Suspicious, 1)
	assert.Equal(t, "thin.txt", rep.Suspicious[0].Filename)
	assert.Equal(t, 1, rep.Suspicious[0].ChunkCount)
}

func TestSchedulerFileTokenCeiling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tome.txt", strings.Repeat("An endless appendix of tables. ", 200))

	stores := newTestStores(t)
	cfg := newTestConfig(dir)
	cfg.MaxFileTokens = 10
	scheduler := newTestScheduler(t, cfg, stores)

	rep, err := scheduler.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Processed)
	assert.Equal(t, 1, rep.Failed)

	summary, err := stores.errLog.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary[core.KindTokenBudget])
}

func TestSchedulerEmptyDirectory(t *testing.T) {
	stores := newTestStores(t)
	scheduler := newTestScheduler(t, newTestConfig(t.TempDir()), stores)

	rep, err := scheduler.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Discovered)
	assert.Equal(t, 0, rep.Processed)
}

func TestNewSchedulerValidation(t *testing.T) {
	stores := newTestStores(t)
	cfg := newTestConfig(t.TempDir())

	_, err := NewScheduler(cfg, nil, stores.vectors, stores.errLog, mock.NewMockEmbedder(), loader.New())
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewScheduler(cfg, stores.docs, nil, stores.errLog, mock.NewMockEmbedder(), loader.New())
	assert.ErrorIs(t, err, ErrVectorCollectionRequired)

	_, err = NewScheduler(cfg, stores.docs, stores.vectors, nil, mock.NewMockEmbedder(), loader.New())
	assert.ErrorIs(t, err, ErrErrorLogRequired)

	_, err = NewScheduler(cfg, stores.docs, stores.vectors, stores.errLog, nil, loader.New())
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewScheduler(cfg, stores.docs, stores.vectors, stores.errLog, mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ErrLoaderRequired)

	bad := newTestConfig("")
	_, err = NewScheduler(bad, stores.docs, stores.vectors, stores.errLog, mock.NewMockEmbedder(), loader.New())
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data/books"
	assert.NoError(t, cfg.Validate())

	cfg.ChunkOverlap = cfg.ChunkSize
	assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidChunkConfig)

	cfg = DefaultConfig()
	cfg.DataDir = "/data/books"
	cfg.MaxWorkers = 0
	assert.Error(t, cfg.Validate())
}

func TestMonitorStatus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.txt", strings.Repeat("Trend following in commodity markets. ", 40))
	writeFile(t, dir, "blank.txt", "")

	stores := newTestStores(t)
	ctx := context.Background()

	_, err := newTestScheduler(t, newTestConfig(dir), stores).Run(ctx)
	require.NoError(t, err)

	monitor := NewMonitor(stores.docs, stores.vectors, stores.errLog, 0)
	status, err := monitor.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, status.DocumentsIngested)
	assert.Greater(t, status.ChunksStored, 0)
	// Freshly ingested documents carry no category yet.
	assert.Equal(t, 1, status.Unclassified)
	assert.Equal(t, 1, status.ErrorSummary[core.KindEmptyDocument])
}
