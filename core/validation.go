// Copyright 2025 Gabriel Dave
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateChunkConfig validates a chunk size / overlap pair. Overlap must be
// strictly smaller than the chunk size; the check runs at configuration time
// so a bad pair never reaches the chunker.
func ValidateChunkConfig(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap cannot be negative, got %d", ErrInvalidChunkConfig, overlap)
	}
	if overlap >= chunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunkConfig, overlap, chunkSize)
	}
	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - FileID must not be empty
//   - Filename must not be empty
//
// NOT validated (populated later by the enrichment pass):
//   - Title, Author, Category
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.FileID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFileID)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - ID and DocID must not be empty
//   - Content must not be empty
//   - Ordinal must not be negative
//
// NOT validated (populated by the embedding stage):
//   - Vector (can be empty until embedded)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.ID == "" || chunk.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyFileID)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkContent)
	}

	if chunk.Ordinal < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeOrdinal)
	}

	return nil
}
