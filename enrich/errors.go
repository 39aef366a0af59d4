package enrich

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoChunks is returned when a document has no chunks to build an
	// excerpt from.
	ErrNoChunks = errors.New("document has no stored chunks")
)
