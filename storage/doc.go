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


// Package storage provides the storage abstraction layer for the ingestion
// engine.
//
// This package defines repository interfaces that decouple storage
// implementation from the pipeline logic. It allows different backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Repositories
//
//   - DocumentRepository: the fingerprint store mapping content identities
//     to "already ingested" status plus enrichment metadata
//   - VectorCollection: chunk rows keyed by deterministic ChunkID, written
//     with upsert semantics
//   - ErrorLog: append-only failure records, queryable by error kind
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce abstraction and enable
// alternative backends:
//
//	docs, err := badger.NewDocumentRepository(backend)  // storage.DocumentRepository
//
// Internal package constructors may return concrete types since they're only
// used within the implementation package.
//
// # Thread Safety
//
// All repository implementations must be thread-safe: the parallel scheduler
// runs several workers against the same repositories concurrently.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
