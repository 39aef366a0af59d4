package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/storage"
)

// ErrorLog implements storage.ErrorLog for BadgerDB. Rows are keyed by
// timestamp so reverse iteration yields newest-first ordering.
type ErrorLog struct {
	backend *Backend
}

var _ storage.ErrorLog = (*ErrorLog)(nil)

// NewErrorLog creates a new ErrorLog.
func NewErrorLog(backend *Backend) *ErrorLog {
	return &ErrorLog{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (l *ErrorLog) Close() error {
	return nil
}

// Append records one failure. The row ID and timestamp are assigned here if
// the caller left them unset.
func (l *ErrorLog) Append(ctx context.Context, e *core.IngestionError) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	return l.backend.WithTx(func(tx *badger.Txn) error {
		key := makeIngestErrorKey(e.Timestamp, e.ID)
		return tx.Set(key, storage.MarshalIngestionError(e))
	}, true)
}

// Recent returns up to limit errors, newest first.
func (l *ErrorLog) Recent(ctx context.Context, limit int) ([]*core.IngestionError, error) {
	return l.list(limit, nil)
}

// ListByKind returns up to limit errors of one kind, newest first.
func (l *ErrorLog) ListByKind(ctx context.Context, kind core.ErrorKind, limit int) ([]*core.IngestionError, error) {
	return l.list(limit, func(e *core.IngestionError) bool {
		return e.Kind == kind
	})
}

// Summary returns the number of logged errors per kind.
func (l *ErrorLog) Summary(ctx context.Context) (map[core.ErrorKind]int, error) {
	summary := make(map[core.ErrorKind]int)
	_, err := l.listInto(0, nil, func(e *core.IngestionError) {
		summary[e.Kind]++
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// list walks the log in reverse key order, keeping rows that pass the filter.
// A limit <= 0 means no limit; a nil filter keeps everything.
func (l *ErrorLog) list(limit int, keep func(*core.IngestionError) bool) ([]*core.IngestionError, error) {
	return l.listInto(limit, keep, nil)
}

func (l *ErrorLog) listInto(limit int, keep func(*core.IngestionError) bool, visit func(*core.IngestionError)) ([]*core.IngestionError, error) {
	var results []*core.IngestionError
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(ingestErrorPrefix + ":")
		// Seek past the highest possible key in the prefix range.
		startKey := append(slices.Clone(prefix), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var row *core.IngestionError
			if err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				row, unmarshalErr = storage.UnmarshalIngestionError(val)
				return unmarshalErr
			}); err != nil {
				return err
			}

			if keep != nil && !keep(row) {
				continue
			}
			if visit != nil {
				visit(row)
				continue
			}
			results = append(results, row)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	}, false)
	return results, err
}
