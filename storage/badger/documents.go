package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) *DocumentRepository {
	return &DocumentRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *DocumentRepository) Close() error {
	return nil
}

// Exists reports whether a document with the given fingerprint is recorded.
func (r *DocumentRepository) Exists(ctx context.Context, id core.FileID) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeDocumentKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// MarkIngested upserts a document record. When a record with the same
// fingerprint already exists, its enrichment metadata is preserved unless the
// incoming document carries its own values, and IngestedAt is kept from the
// first ingestion.
func (r *DocumentRepository) MarkIngested(ctx context.Context, doc *core.Document) error {
	if err := core.ValidateDocument(doc); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		old, err := readDocument(tx, makeDocumentKey(doc.FileID))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old != nil {
			doc.IngestedAt = old.IngestedAt
			if doc.Title == "" {
				doc.Title = old.Title
			}
			if doc.Author == "" {
				doc.Author = old.Author
			}
			if doc.Category == "" {
				doc.Category = old.Category
			}
		} else {
			doc.IngestedAt = now
		}
		doc.UpdatedAt = now

		return tx.Set(makeDocumentKey(doc.FileID), storage.MarshalDocument(doc))
	}, true)
}

// GetDocument retrieves a single document by fingerprint.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.FileID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListIngested returns the set of ingested fingerprints.
func (r *DocumentRepository) ListIngested(ctx context.Context) (map[core.FileID]struct{}, error) {
	ids := make(map[core.FileID]struct{})
	err := r.forEachDocument(func(doc *core.Document) {
		ids[doc.FileID] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListDocuments returns all ingested documents.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.forEachDocument(func(doc *core.Document) {
		results = append(results, doc)
	})
	return results, err
}

// ListUnclassified returns documents still awaiting enrichment.
func (r *DocumentRepository) ListUnclassified(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.forEachDocument(func(doc *core.Document) {
		if !core.IsClassified(doc.Category) {
			results = append(results, doc)
		}
	})
	return results, err
}

// UpdateMetadata sets the enrichment fields of an existing document.
func (r *DocumentRepository) UpdateMetadata(ctx context.Context, id core.FileID, title, author, category string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		doc.Title = title
		doc.Author = author
		doc.Category = category
		doc.UpdatedAt = time.Now().UTC()

		return tx.Set(key, storage.MarshalDocument(doc))
	}, true)
}

// Count returns the number of ingested documents.
func (r *DocumentRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(documentPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// forEachDocument calls fn for every stored document record.
func (r *DocumentRepository) forEachDocument(fn func(*core.Document)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				doc, unmarshalErr = storage.UnmarshalDocument(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			fn(doc)
		}
		return nil
	}, false)
}

// readDocument reads a document record from the transaction. Returns nil
// without error when the key is absent.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
