package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/storage"
)

func newTestDoc(content, filename string) *core.Document {
	return &core.Document{
		FileID:     core.FileIDFromBytes([]byte(content)),
		Filename:   filename,
		FilePath:   "/books/" + filename,
		Extension:  ".txt",
		ChunkCount: 3,
	}
}

func TestDocumentExistsAndMark(t *testing.T) {
	docs, _, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	doc := newTestDoc("market wizards content", "wizards.txt")

	exists, err := docs.Exists(ctx, doc.FileID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Fatal("Expected document to be absent before marking")
	}

	if err := docs.MarkIngested(ctx, doc); err != nil {
		t.Fatalf("MarkIngested failed: %v", err)
	}

	exists, err = docs.Exists(ctx, doc.FileID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Fatal("Expected document to exist after marking")
	}

	got, err := docs.GetDocument(ctx, doc.FileID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.Filename != "wizards.txt" {
		t.Fatalf("Expected 'wizards.txt', got '%s'", got.Filename)
	}
	if got.IngestedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be set")
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	docs, _, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	_, err = docs.GetDocument(context.Background(), core.FileIDFromBytes([]byte("missing")))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestMarkIngestedPreservesEnrichment(t *testing.T) {
	docs, _, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	doc := newTestDoc("reminiscences content", "reminiscences.txt")

	if err := docs.MarkIngested(ctx, doc); err != nil {
		t.Fatalf("MarkIngested failed: %v", err)
	}
	if err := docs.UpdateMetadata(ctx, doc.FileID, "Reminiscences of a Stock Operator", "Edwin Lefèvre", "Biografía/Historias de Traders"); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}

	first, err := docs.GetDocument(ctx, doc.FileID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}

	// Re-marking the same file (forced reindex) must keep the enrichment
	// fields and the original ingestion timestamp.
	again := newTestDoc("reminiscences content", "reminiscences.txt")
	again.ChunkCount = 7
	if err := docs.MarkIngested(ctx, again); err != nil {
		t.Fatalf("MarkIngested failed: %v", err)
	}

	got, err := docs.GetDocument(ctx, doc.FileID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.Title != "Reminiscences of a Stock Operator" {
		t.Fatalf("Expected enrichment title preserved, got '%s'", got.Title)
	}
	if got.Category != "Biografía/Historias de Traders" {
		t.Fatalf("Expected enrichment category preserved, got '%s'", got.Category)
	}
	if got.ChunkCount != 7 {
		t.Fatalf("Expected refreshed chunk count 7, got %d", got.ChunkCount)
	}
	if !got.IngestedAt.Equal(first.IngestedAt) {
		t.Fatal("Expected IngestedAt to survive re-marking")
	}

	count, err := docs.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 document after re-marking, got %d", count)
	}
}

func TestListIngestedAndUnclassified(t *testing.T) {
	docs, _, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	classified := newTestDoc("classified content", "a.txt")
	pending := newTestDoc("pending content", "b.txt")
	fallback := newTestDoc("fallback content", "c.txt")

	for _, d := range []*core.Document{classified, pending, fallback} {
		if err := docs.MarkIngested(ctx, d); err != nil {
			t.Fatalf("MarkIngested failed: %v", err)
		}
	}
	if err := docs.UpdateMetadata(ctx, classified.FileID, "T", "A", "Análisis Técnico (Gráficos)"); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}
	if err := docs.UpdateMetadata(ctx, fallback.FileID, "T", "A", core.CategoryGeneral); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}

	ids, err := docs.ListIngested(ctx)
	if err != nil {
		t.Fatalf("ListIngested failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("Expected 3 ingested fingerprints, got %d", len(ids))
	}
	if _, ok := ids[pending.FileID]; !ok {
		t.Fatal("Expected pending fingerprint in skip set")
	}

	unclassified, err := docs.ListUnclassified(ctx)
	if err != nil {
		t.Fatalf("ListUnclassified failed: %v", err)
	}
	if len(unclassified) != 2 {
		t.Fatalf("Expected 2 unclassified documents, got %d", len(unclassified))
	}
	for _, d := range unclassified {
		if d.FileID == classified.FileID {
			t.Fatal("Classified document should not appear as unclassified")
		}
	}
}

func TestUpdateMetadataNotFound(t *testing.T) {
	docs, _, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	err = docs.UpdateMetadata(context.Background(), core.FileIDFromBytes([]byte("nope")), "T", "A", "C")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
