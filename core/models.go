package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// FileID is the content-derived identity of a source file.
// It is the BLAKE2b-256 digest of the raw file bytes, hex encoded.
// Identical content always maps to the same FileID regardless of the
// file's name or location; this is the only identity the engine trusts.
type FileID string

// ChunkID is the stable identity of one retrievable chunk. It is derived
// from the owning FileID, the chunk ordinal, and a hash of the normalized
// chunk content, so re-running ingestion with unchanged content and config
// produces the same IDs and upserts overwrite instead of duplicating.
type ChunkID string

// FileIDFromReader computes the FileID of a file's raw bytes.
func FileIDFromReader(r io.Reader) (FileID, error) {
	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return FileID(hex.EncodeToString(h.Sum(nil))), nil
}

// FileIDFromBytes computes the FileID of in-memory content.
func FileIDFromBytes(data []byte) FileID {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return FileID(hex.EncodeToString(h.Sum(nil)))
}

// NormalizeContent canonicalizes chunk text before hashing: whitespace runs
// collapse to a single space and the result is lowercased and trimmed.
// Incidental formatting differences therefore do not change chunk identity.
func NormalizeContent(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.Join(strings.Fields(s), " ")))
}

// ChunkIDFor derives the deterministic chunk identity from the owning
// document, the chunk's ordinal, and its normalized content.
func ChunkIDFor(docID FileID, ordinal int, content string) ChunkID {
	h, _ := blake2b.New(32, nil)
	h.Write([]byte(string(docID)))
	h.Write([]byte(":" + strconv.Itoa(ordinal) + ":"))
	h.Write([]byte(NormalizeContent(content)))
	return ChunkID(hex.EncodeToString(h.Sum(nil)))
}

// Document represents one ingested source file. It is created once the
// file's chunks have all been embedded and upserted; Title, Author and
// Category are filled in later by the metadata enrichment pass.
type Document struct {
	FileID     FileID
	Filename   string
	FilePath   string
	Extension  string
	Title      string
	Author     string
	Language   string
	Category   string
	ChunkCount int
	IngestedAt time.Time
	UpdatedAt  time.Time
}

// Chunk is the atomic unit of retrievable text: a fixed-size slice of a
// document with its embedding vector and free-form metadata. Chunks are
// immutable after creation; changed source content yields new ChunkIDs.
type Chunk struct {
	ID       ChunkID
	DocID    FileID
	Ordinal  int
	Content  string
	Vector   []float32
	Metadata map[string]string
}

// ErrorKind classifies an ingestion failure. The classification decides
// both the retry behavior and whether the failure is fatal to the run.
type ErrorKind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown ErrorKind = iota
	// KindLoadError means the document loader failed on one file.
	KindLoadError
	// KindEmptyDocument means the loader produced zero extractable text.
	KindEmptyDocument
	// KindTokenBudget means a single file exceeded the per-file token ceiling.
	KindTokenBudget
	// KindRateLimited means the provider signaled throttling.
	KindRateLimited
	// KindProviderError is a non-rate-limit provider failure (auth, bad request).
	KindProviderError
	// KindParseError means a classifier response was not valid structured output.
	KindParseError
	// KindConnectivity means a stateful backend is unreachable. Fatal to the run.
	KindConnectivity
)

var errorKindNames = map[ErrorKind]string{
	KindUnknown:       "UNKNOWN_ERROR",
	KindLoadError:     "LOAD_ERROR",
	KindEmptyDocument: "EMPTY_DOCUMENT",
	KindTokenBudget:   "TOKEN_BUDGET_EXCEEDED",
	KindRateLimited:   "RATE_LIMITED",
	KindProviderError: "PROVIDER_ERROR",
	KindParseError:    "PARSE_ERROR",
	KindConnectivity:  "CONNECTIVITY_ERROR",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "UNKNOWN_ERROR"
}

// ErrorKindFromString resolves a kind name like "LOAD_ERROR" back to its
// ErrorKind. The second result is false for unknown names.
func ErrorKindFromString(name string) (ErrorKind, bool) {
	for kind, n := range errorKindNames {
		if n == name {
			return kind, true
		}
	}
	return KindUnknown, false
}

// IngestionError is one append-only row in the error log, recorded for
// every failed attempt. It never mutates Document or Chunk state.
type IngestionError struct {
	ID        string
	DocID     FileID
	Filename  string
	Kind      ErrorKind
	Message   string
	Timestamp time.Time
}
