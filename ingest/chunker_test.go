package ingest

import (
	"strings"
	"testing"

	"github.com/gabrieldave/ingesta/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerDeterminism(t *testing.T) {
	chunker, err := NewChunker(200, 40)
	require.NoError(t, err)

	text := strings.Repeat("The market can stay irrational longer than you can stay solvent. ", 50)

	first, err := chunker.Chunk(text)
	require.NoError(t, err)
	second, err := chunker.Chunk(text)
	require.NoError(t, err)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestChunkerEmptyInput(t *testing.T) {
	chunker, err := NewChunker(200, 40)
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t\n"} {
		chunks, err := chunker.Chunk(text)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunkerRejectsBadConfig(t *testing.T) {
	_, err := NewChunker(100, 100)
	assert.ErrorIs(t, err, core.ErrInvalidChunkConfig)

	_, err = NewChunker(100, 150)
	assert.ErrorIs(t, err, core.ErrInvalidChunkConfig)

	_, err = NewChunker(0, 0)
	assert.ErrorIs(t, err, core.ErrInvalidChunkConfig)
}

func TestChunkerShortTextSingleChunk(t *testing.T) {
	chunker, err := NewChunker(1024, 200)
	require.NoError(t, err)

	chunks, err := chunker.Chunk("a short note on position sizing")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short note on position sizing", chunks[0])
}
