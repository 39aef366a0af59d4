package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIDFromBytes_Deterministic(t *testing.T) {
	content := []byte("the market discounts everything")

	first := FileIDFromBytes(content)
	second := FileIDFromBytes(content)

	assert.Equal(t, first, second, "same content must produce same FileID")
	assert.Len(t, string(first), 64, "FileID should be a hex-encoded 256-bit digest")
}

func TestFileIDFromBytes_DistinctContent(t *testing.T) {
	a := FileIDFromBytes([]byte("support and resistance"))
	b := FileIDFromBytes([]byte("support and resistance."))

	assert.NotEqual(t, a, b, "different content must produce different FileIDs")
}

func TestFileIDFromReader_MatchesBytes(t *testing.T) {
	content := []byte("candlestick patterns for intraday entries")

	fromReader, err := FileIDFromReader(bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, FileIDFromBytes(content), fromReader)
}

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "risk\t management\n  rules", "risk management rules"},
		{"lowercases", "Stop LOSS", "stop loss"},
		{"trims", "  position sizing  ", "position sizing"},
		{"empty", "   \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeContent(tt.in))
		})
	}
}

func TestChunkIDFor_Deterministic(t *testing.T) {
	docID := FileIDFromBytes([]byte("some book"))

	first := ChunkIDFor(docID, 3, "The trend is your friend.")
	second := ChunkIDFor(docID, 3, "The trend is your friend.")

	assert.Equal(t, first, second)
}

func TestChunkIDFor_NormalizationInsensitive(t *testing.T) {
	docID := FileIDFromBytes([]byte("some book"))

	a := ChunkIDFor(docID, 0, "The  trend is\nyour friend.")
	b := ChunkIDFor(docID, 0, "the trend is your friend.")

	assert.Equal(t, a, b, "whitespace and case must not change chunk identity")
}

func TestChunkIDFor_OrdinalChangesIdentity(t *testing.T) {
	docID := FileIDFromBytes([]byte("some book"))
	content := strings.Repeat("overlap region ", 10)

	a := ChunkIDFor(docID, 0, content)
	b := ChunkIDFor(docID, 1, content)

	assert.NotEqual(t, a, b, "identical overlapping text at different ordinals must stay distinct")
}

func TestChunkIDFor_DocChangesIdentity(t *testing.T) {
	a := ChunkIDFor(FileIDFromBytes([]byte("edition one")), 0, "prologue")
	b := ChunkIDFor(FileIDFromBytes([]byte("edition two")), 0, "prologue")

	assert.NotEqual(t, a, b)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "LOAD_ERROR", KindLoadError.String())
	assert.Equal(t, "EMPTY_DOCUMENT", KindEmptyDocument.String())
	assert.Equal(t, "TOKEN_BUDGET_EXCEEDED", KindTokenBudget.String())
	assert.Equal(t, "RATE_LIMITED", KindRateLimited.String())
	assert.Equal(t, "PROVIDER_ERROR", KindProviderError.String())
	assert.Equal(t, "PARSE_ERROR", KindParseError.String())
	assert.Equal(t, "CONNECTIVITY_ERROR", KindConnectivity.String())
	assert.Equal(t, "UNKNOWN_ERROR", ErrorKind(99).String())
}

func TestErrorKindFromString(t *testing.T) {
	kind, ok := ErrorKindFromString("RATE_LIMITED")
	assert.True(t, ok)
	assert.Equal(t, KindRateLimited, kind)

	_, ok = ErrorKindFromString("NOT_A_KIND")
	assert.False(t, ok)
}

func TestIsClassified(t *testing.T) {
	assert.False(t, IsClassified(""))
	assert.False(t, IsClassified("general"))
	assert.False(t, IsClassified("General"))
	assert.False(t, IsClassified(CategoryGeneral))
	assert.True(t, IsClassified("Análisis Técnico (Gráficos)"))
}
