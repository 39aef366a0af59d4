package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/core"
)

// MockClassifier is a test double for ai.MetadataClassifier.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockClassifier struct {
	// ClassifyFunc is called by Classify if set.
	// If nil, uses default deterministic behavior.
	ClassifyFunc func(ctx context.Context, excerpt string) (*ai.DocumentMetadata, error)

	mu        sync.Mutex
	callCount int
}

// NewMockClassifier creates a mock classifier with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify derives simple deterministic metadata from the excerpt.
// Default behavior: the first line becomes the title, the author is unknown,
// and the category is the vocabulary fallback.
func (m *MockClassifier) Classify(ctx context.Context, excerpt string) (*ai.DocumentMetadata, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, excerpt)
	}

	title := strings.TrimSpace(excerpt)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}
	if len(title) > 80 {
		title = title[:80]
	}
	if title == "" {
		title = "Untitled"
	}

	return &ai.DocumentMetadata{
		Title:    title,
		Author:   "Desconocido",
		Category: core.CategoryGeneral,
	}, nil
}

// CallCount returns the number of times Classify was called.
func (m *MockClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockClassifier) Reset() {
	m.mu.Lock()
	m.callCount = 0
	m.mu.Unlock()
	m.ClassifyFunc = nil
}
