package badger

import (
	"context"
	"testing"
	"time"

	"github.com/gabrieldave/ingesta/core"
)

func TestErrorLogAppendAndRecent(t *testing.T) {
	_, _, errLog, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Minute)

	kinds := []core.ErrorKind{core.KindLoadError, core.KindEmptyDocument, core.KindRateLimited}
	for i, kind := range kinds {
		e := &core.IngestionError{
			Filename:  "book.txt",
			Kind:      kind,
			Message:   kind.String(),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := errLog.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if e.ID == "" {
			t.Fatal("Expected a row ID to be assigned")
		}
	}

	recent, err := errLog.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(recent))
	}
	// Newest first
	if recent[0].Kind != core.KindRateLimited {
		t.Fatalf("Expected newest row first, got %s", recent[0].Kind)
	}
	if recent[2].Kind != core.KindLoadError {
		t.Fatalf("Expected oldest row last, got %s", recent[2].Kind)
	}

	limited, err := errLog.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("Expected 2 rows with limit, got %d", len(limited))
	}
}

func TestErrorLogListByKind(t *testing.T) {
	_, _, errLog, backend, err := NewMemoryRepositories("books")
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := errLog.Append(ctx, &core.IngestionError{
			Filename: "a.pdf",
			Kind:     core.KindLoadError,
			Message:  "corrupt pdf",
		}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := errLog.Append(ctx, &core.IngestionError{
		Filename: "b.txt",
		Kind:     core.KindParseError,
		Message:  "invalid json after 3 attempts",
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	loadErrors, err := errLog.ListByKind(ctx, core.KindLoadError, 10)
	if err != nil {
		t.Fatalf("ListByKind failed: %v", err)
	}
	if len(loadErrors) != 4 {
		t.Fatalf("Expected 4 load errors, got %d", len(loadErrors))
	}

	parseErrors, err := errLog.ListByKind(ctx, core.KindParseError, 10)
	if err != nil {
		t.Fatalf("ListByKind failed: %v", err)
	}
	if len(parseErrors) != 1 {
		t.Fatalf("Expected 1 parse error, got %d", len(parseErrors))
	}

	summary, err := errLog.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary[core.KindLoadError] != 4 || summary[core.KindParseError] != 1 {
		t.Fatalf("Unexpected summary: %v", summary)
	}
}
