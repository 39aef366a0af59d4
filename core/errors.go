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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunkConfig indicates an invalid chunk size / overlap pair.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyFileID indicates the FileID field is empty.
	ErrEmptyFileID = errors.New("file id cannot be empty")

	// ErrEmptyFilename indicates the Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyChunkContent indicates the chunk Content field is empty.
	ErrEmptyChunkContent = errors.New("chunk content cannot be empty")

	// ErrNegativeOrdinal indicates a chunk ordinal below zero.
	ErrNegativeOrdinal = errors.New("chunk ordinal cannot be negative")
)
