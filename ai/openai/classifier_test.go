package openai

import (
	"testing"

	"github.com/gabrieldave/ingesta/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	t.Run("clean json", func(t *testing.T) {
		meta, err := parseMetadata(`{"title": "El Arte del Trading", "author": "J. Pérez", "category": "Psicología del Trading"}`)
		require.NoError(t, err)

		assert.Equal(t, "El Arte del Trading", meta.Title)
		assert.Equal(t, "J. Pérez", meta.Author)
		assert.Equal(t, "Psicología del Trading", meta.Category)
	})

	t.Run("markdown fenced json", func(t *testing.T) {
		raw := "```json\n{\"title\": \"T\", \"author\": \"A\", \"category\": \"Análisis Técnico (Gráficos)\"}\n```"
		meta, err := parseMetadata(raw)
		require.NoError(t, err)

		assert.Equal(t, "T", meta.Title)
		assert.Equal(t, "Análisis Técnico (Gráficos)", meta.Category)
	})

	t.Run("missing author becomes unknown", func(t *testing.T) {
		meta, err := parseMetadata(`{"title": "T", "author": "", "category": "Macroeconomía"}`)
		require.NoError(t, err)

		assert.Equal(t, UnknownAuthor, meta.Author)
	})

	t.Run("category outside vocabulary falls back", func(t *testing.T) {
		meta, err := parseMetadata(`{"title": "T", "author": "A", "category": "Macroeconomía"}`)
		require.NoError(t, err)

		assert.Equal(t, core.CategoryGeneral, meta.Category)
	})

	t.Run("control characters are stripped", func(t *testing.T) {
		raw := "{\"title\": \"T\x01itle\", \"author\": \"A\", \"category\": \"General/Inversión\"}"
		meta, err := parseMetadata(raw)
		require.NoError(t, err)

		assert.Equal(t, "Title", meta.Title)
	})

	t.Run("unquoted key is repaired", func(t *testing.T) {
		meta, err := parseMetadata(`{title": "T", "author": "A", "category": "General/Inversión"}`)
		require.NoError(t, err)

		assert.Equal(t, "T", meta.Title)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := parseMetadata("I'm sorry, I cannot classify this document.")
		assert.Error(t, err)
	})
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid json untouched",
			input:    `{"title": "x"}`,
			expected: `{"title": "x"}`,
		},
		{
			name:     "missing opening quote after brace",
			input:    `{title": "x"}`,
			expected: `{"title": "x"}`,
		},
		{
			name:     "missing opening quote after comma",
			input:    `{"a": 1, author": "x"}`,
			expected: `{"a": 1, "author": "x"}`,
		},
		{
			name:     "plain text untouched",
			input:    "not json at all",
			expected: "not json at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, repairJSON(tt.input))
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "abc", sanitizeText("a\x00b\x1Fc"))
	assert.Equal(t, "line1\nline2\ttab", sanitizeText("line1\nline2\ttab"))
	assert.Equal(t, "tildes: áéíóú", sanitizeText("tildes: áéíóú"))
}
