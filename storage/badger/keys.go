package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gabrieldave/ingesta/core"
)

// Key prefixes for different data types
const (
	documentPrefix    = "docrec"
	chunkPrefix       = "vecrec"
	chunkDocPrefix    = "vecdoc"
	ingestErrorPrefix = "errrec"
)

// makeDocumentKey generates a key for a document by content fingerprint.
func makeDocumentKey(id core.FileID) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeChunkKey generates a key for a chunk row inside a named collection.
func makeChunkKey(collection string, id core.ChunkID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", chunkPrefix, collection, id))
}

// makeChunkDocKey generates a composite key for the per-document chunk index.
// Format: prefix:collection:docID:ordinal:chunkID
// The ordinal is written in BigEndian order so lexicographic iteration visits
// a document's chunks in ordinal order.
func makeChunkDocKey(collection string, docID core.FileID, ordinal int, chunkID core.ChunkID) []byte {
	prefix := []byte(fmt.Sprintf("%s:%s:%s:", chunkDocPrefix, collection, docID))
	buf := make([]byte, len(prefix)+8+1+len(chunkID))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	offset += 8
	buf[offset] = ':'
	offset++
	copy(buf[offset:], []byte(chunkID))
	return buf
}

// makePartialChunkDocKey generates the iteration prefix for one document's
// chunk index entries.
func makePartialChunkDocKey(collection string, docID core.FileID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", chunkDocPrefix, collection, docID))
}

// makeIngestErrorKey generates a composite key for an error-log row.
// Format: prefix:timestamp:id
// The timestamp is written in BigEndian order so reverse iteration yields
// newest-first ordering.
func makeIngestErrorKey(ts time.Time, id string) []byte {
	prefix := []byte(ingestErrorPrefix + ":")
	buf := make([]byte, len(prefix)+8+1+len(id))
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(ts.UnixMicro()))
	offset += 8
	buf[offset] = ':'
	offset++
	copy(buf[offset:], []byte(id))
	return buf
}
