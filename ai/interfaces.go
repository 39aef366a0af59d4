package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// MetadataClassifier extracts bibliographic metadata from a document excerpt.
// Implementations must be thread-safe for concurrent use.
type MetadataClassifier interface {
	// Classify reads a document excerpt and returns its title, author, and
	// category drawn from the closed category vocabulary.
	// Returns ErrParseFailure when the model's output never yields valid
	// metadata; such failures are permanent and must not be retried.
	Classify(ctx context.Context, excerpt string) (*DocumentMetadata, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and MetadataClassifier
// instances, ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Classifier returns the metadata classification service.
	// The returned MetadataClassifier is safe for concurrent use.
	Classifier() MetadataClassifier

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
