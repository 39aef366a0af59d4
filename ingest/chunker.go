package ingest

import (
	"strings"

	"github.com/gabrieldave/ingesta/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker splits document text into overlapping fixed-size segments.
// Splitting is deterministic: the same text and configuration always yield
// the same ordered sequence, which chunk identity depends on.
type Chunker struct {
	splitter  textsplitter.RecursiveCharacter
	chunkSize int
	overlap   int
}

// NewChunker creates a chunker. The overlap must be smaller than the chunk
// size; that is rejected here rather than discovered mid-run.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if err := core.ValidateChunkConfig(chunkSize, overlap); err != nil {
		return nil, err
	}

	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
		),
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Chunk splits text into ordered segments. Empty or whitespace-only input
// yields zero chunks without error; the caller decides how to report that.
func (c *Chunker) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		chunks = append(chunks, part)
	}
	return chunks, nil
}

// ChunkSize returns the configured segment size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap between adjacent segments.
func (c *Chunker) Overlap() int { return c.overlap }
