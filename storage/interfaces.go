package storage

import (
	"context"

	"github.com/gabrieldave/ingesta/core"
)

// DocumentRepository is the fingerprint store: it answers whether a file's
// content is already ingested and records successful ingestions. It also
// carries the enrichment metadata the classification pass writes back.
// Implementations must be thread-safe and support concurrent access.
//
// A lookup failure must surface as an error rather than an empty result;
// treating every file as new on a broken backend would cause unbounded
// duplicate embedding cost.
type DocumentRepository interface {
	// Exists reports whether a document with the given content fingerprint
	// has already been ingested.
	Exists(ctx context.Context, id core.FileID) (bool, error)

	// MarkIngested records a document as fully ingested. Called only after
	// every chunk of the file has been embedded and upserted. Upserts by
	// FileID: re-marking an existing document refreshes its chunk count
	// and UpdatedAt timestamp without losing enrichment metadata.
	MarkIngested(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a single document by fingerprint.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.FileID) (*core.Document, error)

	// ListIngested returns the fingerprints of all ingested documents.
	// This is the skip set consulted during discovery.
	ListIngested(ctx context.Context) (map[core.FileID]struct{}, error)

	// ListDocuments returns all ingested documents.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// ListUnclassified returns documents whose category is still empty or
	// holds the sentinel value, i.e. candidates for the enrichment pass.
	ListUnclassified(ctx context.Context) ([]*core.Document, error)

	// UpdateMetadata sets the enrichment fields of an existing document.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateMetadata(ctx context.Context, id core.FileID, title, author, category string) error

	// Count returns the number of ingested documents.
	Count(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}

// VectorCollection is the shared vector store the engine populates. Rows
// are keyed by ChunkID; Upsert overwrites an existing row with the same key,
// which is what makes re-ingestion idempotent.
type VectorCollection interface {
	// Upsert writes chunks into the collection, overwriting rows that share
	// a ChunkID. Each row write is atomic; there is no cross-chunk
	// transaction.
	Upsert(ctx context.Context, chunks ...*core.Chunk) error

	// Count returns the number of chunk rows in the collection.
	Count(ctx context.Context) (int, error)

	// GetChunksByDoc returns up to limit chunks belonging to a document,
	// ordered by ordinal. Used by the enrichment pass to build excerpts.
	GetChunksByDoc(ctx context.Context, docID core.FileID, limit int) ([]*core.Chunk, error)

	// DeleteByDoc removes every chunk belonging to a document and returns
	// the number of rows removed. Used by forced reindexing.
	DeleteByDoc(ctx context.Context, docID core.FileID) (int, error)

	// ListDocIDs returns the distinct document fingerprints present in the
	// collection.
	ListDocIDs(ctx context.Context) ([]core.FileID, error)

	// Close closes the collection and releases resources.
	Close() error
}

// ErrorLog is the append-only record of ingestion failures, queryable by
// error kind for later triage. Logging never mutates document or chunk state.
type ErrorLog interface {
	// Append records one failure.
	Append(ctx context.Context, e *core.IngestionError) error

	// Recent returns up to limit errors, newest first.
	Recent(ctx context.Context, limit int) ([]*core.IngestionError, error)

	// ListByKind returns up to limit errors of the given kind, newest first.
	ListByKind(ctx context.Context, kind core.ErrorKind, limit int) ([]*core.IngestionError, error)

	// Summary returns the number of logged errors per kind.
	Summary(ctx context.Context) (map[core.ErrorKind]int, error)

	// Close closes the log and releases resources.
	Close() error
}
