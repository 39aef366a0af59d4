package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/gabrieldave/ingesta/core"
)

func makeTestChunks(docID core.FileID, contents ...string) []*core.Chunk {
	chunks := make([]*core.Chunk, 0, len(contents))
	for i, content := range contents {
		chunks = append(chunks, &core.Chunk{
			ID:      core.ChunkIDFor(docID, i, content),
			DocID:   docID,
			Ordinal: i,
			Content: content,
			Vector:  []float32{float32(i), 0.5, 0.25},
			Metadata: map[string]string{
				"file_name": "test.txt",
			},
		})
	}
	return chunks
}

func TestUpsertIdempotence(t *testing.T) {
	_, vectors, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	docID := core.FileIDFromBytes([]byte("some book"))
	chunks := makeTestChunks(docID, "first passage", "second passage", "third passage")

	if err := vectors.Upsert(ctx, chunks...); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	count, err := vectors.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 rows, got %d", count)
	}

	// Upserting identical content must overwrite, not duplicate.
	if err := vectors.Upsert(ctx, chunks...); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	count, err = vectors.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 rows after re-upsert, got %d", count)
	}
}

func TestGetChunksByDocOrdering(t *testing.T) {
	_, vectors, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	docID := core.FileIDFromBytes([]byte("ordered book"))

	contents := make([]string, 12)
	for i := range contents {
		contents[i] = fmt.Sprintf("passage number %d", i)
	}
	chunks := makeTestChunks(docID, contents...)

	// Insert out of order; iteration must come back in ordinal order.
	for i := len(chunks) - 1; i >= 0; i-- {
		if err := vectors.Upsert(ctx, chunks[i]); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	got, err := vectors.GetChunksByDoc(ctx, docID, 0)
	if err != nil {
		t.Fatalf("GetChunksByDoc failed: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("Expected 12 chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if chunk.Ordinal != i {
			t.Fatalf("Expected ordinal %d at position %d, got %d", i, i, chunk.Ordinal)
		}
	}

	limited, err := vectors.GetChunksByDoc(ctx, docID, 3)
	if err != nil {
		t.Fatalf("GetChunksByDoc failed: %v", err)
	}
	if len(limited) != 3 {
		t.Fatalf("Expected 3 chunks with limit, got %d", len(limited))
	}
	if limited[0].Ordinal != 0 || limited[2].Ordinal != 2 {
		t.Fatal("Expected the first ordinals when limited")
	}
}

func TestDeleteByDoc(t *testing.T) {
	_, vectors, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	keepID := core.FileIDFromBytes([]byte("kept book"))
	dropID := core.FileIDFromBytes([]byte("dropped book"))

	if err := vectors.Upsert(ctx, makeTestChunks(keepID, "kept one", "kept two")...); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := vectors.Upsert(ctx, makeTestChunks(dropID, "dropped one", "dropped two", "dropped three")...); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	removed, err := vectors.DeleteByDoc(ctx, dropID)
	if err != nil {
		t.Fatalf("DeleteByDoc failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("Expected 3 rows removed, got %d", removed)
	}

	count, err := vectors.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 surviving rows, got %d", count)
	}

	gone, err := vectors.GetChunksByDoc(ctx, dropID, 0)
	if err != nil {
		t.Fatalf("GetChunksByDoc failed: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("Expected no chunks for deleted document, got %d", len(gone))
	}

	ids, err := vectors.ListDocIDs(ctx)
	if err != nil {
		t.Fatalf("ListDocIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != keepID {
		t.Fatalf("Expected only the kept document fingerprint, got %v", ids)
	}
}

func TestDeleteByDocEmpty(t *testing.T) {
	_, vectors, _, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	removed, err := vectors.DeleteByDoc(context.Background(), core.FileIDFromBytes([]byte("absent")))
	if err != nil {
		t.Fatalf("DeleteByDoc failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("Expected 0 rows removed, got %d", removed)
	}
}
