package ingest

import (
	"context"
	"fmt"

	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/storage"
)

// Status is a read-only snapshot of the corpus state: what has been
// ingested, what still awaits enrichment, and how past runs failed.
type Status struct {
	DocumentsIngested int
	ChunksStored      int
	Unclassified      int
	ErrorSummary      map[core.ErrorKind]int
	Suspicious        []SuspiciousFile
}

// Monitor derives run-level indicators from the stateful backends. It only
// reads; ingestion state is never mutated from here.
type Monitor struct {
	docs             storage.DocumentRepository
	vectors          storage.VectorCollection
	errLog           storage.ErrorLog
	minChunksPerFile int
}

// NewMonitor creates a monitor over the given stores.
func NewMonitor(docs storage.DocumentRepository, vectors storage.VectorCollection, errLog storage.ErrorLog, minChunksPerFile int) *Monitor {
	return &Monitor{
		docs:             docs,
		vectors:          vectors,
		errLog:           errLog,
		minChunksPerFile: minChunksPerFile,
	}
}

// Status assembles the current corpus snapshot.
func (m *Monitor) Status(ctx context.Context) (*Status, error) {
	docCount, err := m.docs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	chunkCount, err := m.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	unclassified, err := m.docs.ListUnclassified(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unclassified: %w", err)
	}
	summary, err := m.errLog.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize errors: %w", err)
	}

	status := &Status{
		DocumentsIngested: docCount,
		ChunksStored:      chunkCount,
		Unclassified:      len(unclassified),
		ErrorSummary:      summary,
	}

	if m.minChunksPerFile > 0 {
		docs, err := m.docs.ListDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, doc := range docs {
			if doc.ChunkCount < m.minChunksPerFile {
				status.Suspicious = append(status.Suspicious, SuspiciousFile{
					Filename:   doc.Filename,
					ChunkCount: doc.ChunkCount,
				})
			}
		}
	}
	return status, nil
}
