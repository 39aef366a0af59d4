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


package ingesta

import (
	"log/slog"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/ai/openai"
	"github.com/gabrieldave/ingesta/enrich"
	"github.com/gabrieldave/ingesta/ingest"
	"github.com/gabrieldave/ingesta/loader"
	"github.com/gabrieldave/ingesta/storage"
	"github.com/gabrieldave/ingesta/storage/badger"
)

// DefaultCollection is the vector collection used when none is configured.
const DefaultCollection = "books"

// Database bundles the stateful backends and the AI provider behind one
// handle. It is the library entry point; the pipelines in ingest and enrich
// are created through its factory methods.
type Database struct {
	backend  *badger.Backend
	docs     storage.DocumentRepository
	vectors  storage.VectorCollection
	errLog   storage.ErrorLog
	provider ai.Provider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	collection string
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithCollection sets the vector collection name.
func WithCollection(name string) DatabaseOption {
	return func(o *databaseOptions) {
		if name != "" {
			o.collection = name
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig:   ai.DefaultConfig(), // Default if not provided
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(options)
	}
	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create vector collection
	vectors, err := badger.NewVectorCollection(backend, options.collection)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		docs:     badger.NewDocumentRepository(backend),
		vectors:  vectors,
		errLog:   badger.NewErrorLog(backend),
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Repositories share the backend; closing it closes them all.
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Documents() storage.DocumentRepository {
	return db.docs
}

func (db *Database) Vectors() storage.VectorCollection {
	return db.vectors
}

func (db *Database) Errors() storage.ErrorLog {
	return db.errLog
}

func (db *Database) NewScheduler(cfg *ingest.Config, opts ...ingest.SchedulerOption) (*ingest.Scheduler, error) {
	return ingest.NewScheduler(cfg, db.docs, db.vectors, db.errLog, db.provider.Embedder(), loader.New(), opts...)
}

func (db *Database) NewEnricher(cfg *enrich.Config, opts ...enrich.EnricherOption) (*enrich.Enricher, error) {
	return enrich.NewEnricher(cfg, db.docs, db.vectors, db.errLog, db.provider.Classifier(), opts...)
}

func (db *Database) NewMonitor(minChunksPerFile int) *ingest.Monitor {
	return ingest.NewMonitor(db.docs, db.vectors, db.errLog, minChunksPerFile)
}
