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


package ingest

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrVectorCollectionRequired is returned when a vector collection is not provided.
	ErrVectorCollectionRequired = errors.New("vector collection required")

	// ErrErrorLogRequired is returned when an error log is not provided.
	ErrErrorLogRequired = errors.New("error log required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrLoaderRequired is returned when a document loader is not provided.
	ErrLoaderRequired = errors.New("document loader required")

	// ErrRetriesExhausted is returned by the governor when every attempt of a
	// provider call failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrLoadFailure reports a file the loader could not read or parse.
	ErrLoadFailure = errors.New("document could not be loaded")

	// ErrEmptyDocument reports a file whose loader produced no extractable text.
	ErrEmptyDocument = errors.New("document produced no extractable text")

	// ErrFileTooLarge reports a file whose estimated tokens exceed the
	// per-file ceiling.
	ErrFileTooLarge = errors.New("file exceeds token ceiling")
)

// fatalError marks a failure that must abort the whole run instead of being
// recorded against one file. Storage-backend failures are the only producers.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// markFatal wraps err so IsFatal reports true for it.
func markFatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err carries the run-aborting mark.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
