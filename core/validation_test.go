package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChunkConfig(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		wantErr   bool
	}{
		{"valid", 1024, 200, false},
		{"zero overlap", 512, 0, false},
		{"overlap equals size", 512, 512, true},
		{"overlap exceeds size", 512, 600, true},
		{"negative overlap", 512, -1, true},
		{"zero chunk size", 0, 0, true},
		{"negative chunk size", -100, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkConfig(tt.chunkSize, tt.overlap)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidChunkConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	valid := &Document{
		FileID:   FileIDFromBytes([]byte("content")),
		Filename: "reminiscences.pdf",
	}
	assert.NoError(t, ValidateDocument(valid))

	assert.ErrorIs(t, ValidateDocument(nil), ErrInvalidDocument)

	missingID := &Document{Filename: "book.pdf"}
	assert.ErrorIs(t, ValidateDocument(missingID), ErrEmptyFileID)

	missingName := &Document{FileID: "abc"}
	assert.ErrorIs(t, ValidateDocument(missingName), ErrEmptyFilename)
}

func TestValidateChunk(t *testing.T) {
	docID := FileIDFromBytes([]byte("content"))
	valid := &Chunk{
		ID:      ChunkIDFor(docID, 0, "text"),
		DocID:   docID,
		Ordinal: 0,
		Content: "text",
	}
	assert.NoError(t, ValidateChunk(valid))

	assert.ErrorIs(t, ValidateChunk(nil), ErrInvalidChunk)

	empty := &Chunk{ID: "x", DocID: docID, Content: ""}
	assert.ErrorIs(t, ValidateChunk(empty), ErrEmptyChunkContent)

	negative := &Chunk{ID: "x", DocID: docID, Content: "text", Ordinal: -1}
	assert.ErrorIs(t, ValidateChunk(negative), ErrNegativeOrdinal)
}
