package badger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/storage"
)

// VectorCollection implements storage.VectorCollection for BadgerDB.
// Chunk rows are keyed by ChunkID under a collection namespace; a secondary
// index keyed by document fingerprint and ordinal supports per-document
// iteration in ordinal order.
type VectorCollection struct {
	backend    *Backend
	collection string
}

var _ storage.VectorCollection = (*VectorCollection)(nil)

// NewVectorCollection opens a named collection on the backend.
func NewVectorCollection(backend *Backend, collection string) (*VectorCollection, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection name", storage.ErrInvalidQuery)
	}
	return &VectorCollection{
		backend:    backend,
		collection: collection,
	}, nil
}

// Close is a no-op; the backend owns the database handle.
func (c *VectorCollection) Close() error {
	return nil
}

// Upsert writes chunks into the collection. Rows sharing a ChunkID are
// overwritten, so re-ingesting unchanged content leaves the row count stable.
func (c *VectorCollection) Upsert(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	// One transaction per chunk: each row write is atomic on its own, and a
	// batch that fails midway must not roll back rows already written.
	for _, chunk := range chunks {
		err := c.backend.WithTx(func(tx *badger.Txn) error {
			if err := tx.Set(makeChunkKey(c.collection, chunk.ID), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			docKey := makeChunkDocKey(c.collection, chunk.DocID, chunk.Ordinal, chunk.ID)
			return tx.Set(docKey, []byte(chunk.ID))
		}, true)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// Count returns the number of chunk rows in the collection.
func (c *VectorCollection) Count(ctx context.Context) (int, error) {
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(fmt.Sprintf("%s:%s:", chunkPrefix, c.collection))

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// GetChunksByDoc returns up to limit chunks of one document in ordinal order.
// A limit <= 0 means no limit.
func (c *VectorCollection) GetChunksByDoc(ctx context.Context, docID core.FileID, limit int) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkDocKey(c.collection, docID)

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}

			var chunkID core.ChunkID
			if err := iter.Item().Value(func(val []byte) error {
				chunkID = core.ChunkID(val)
				return nil
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, makeChunkKey(c.collection, chunkID))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteByDoc removes every chunk belonging to a document and reports how
// many rows were removed.
func (c *VectorCollection) DeleteByDoc(ctx context.Context, docID core.FileID) (int, error) {
	// Collect the keys first; deleting while iterating over the same prefix
	// invalidates the iterator.
	var chunkKeys [][]byte
	var indexKeys [][]byte
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkDocKey(c.collection, docID)

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))

			var chunkID core.ChunkID
			if err := iter.Item().Value(func(val []byte) error {
				chunkID = core.ChunkID(val)
				return nil
			}); err != nil {
				return err
			}
			chunkKeys = append(chunkKeys, makeChunkKey(c.collection, chunkID))
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	err = c.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range chunkKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	}, true)
	if err != nil {
		return 0, err
	}
	return len(chunkKeys), nil
}

// ListDocIDs returns the distinct document fingerprints in the collection.
func (c *VectorCollection) ListDocIDs(ctx context.Context) ([]core.FileID, error) {
	seen := make(map[core.FileID]struct{})
	var ids []core.FileID

	prefix := []byte(fmt.Sprintf("%s:%s:", chunkDocPrefix, c.collection))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			rest := iter.Item().Key()[len(prefix):]
			sep := bytes.IndexByte(rest, ':')
			if sep < 0 {
				continue
			}
			id := core.FileID(rest[:sep])
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		return nil
	}, false)
	return ids, err
}

// readChunk reads a chunk row from the transaction. Returns nil without
// error when the key is absent.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chunk, unmarshalErr = storage.UnmarshalChunk(val)
		return unmarshalErr
	})
	return chunk, err
}
