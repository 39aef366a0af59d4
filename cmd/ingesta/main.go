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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/gabrieldave/ingesta/ai"
	"github.com/gabrieldave/ingesta/ai/openai"
	"github.com/gabrieldave/ingesta/core"
	"github.com/gabrieldave/ingesta/enrich"
	"github.com/gabrieldave/ingesta/ingest"
	"github.com/gabrieldave/ingesta/loader"
	"github.com/gabrieldave/ingesta/storage/badger"
)

func main() {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "ingesta",
		Usage: "Content-addressed RAG ingestion engine for document corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"INGESTA_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Ingest a directory of documents into the vector store",
				Action: runCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "data-dir",
						Aliases:  []string{"i"},
						Usage:    "Directory walked for candidate files",
						Required: true,
						EnvVars:  []string{"INGESTA_DATA_DIR"},
					},
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"INGESTA_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
						EnvVars:  []string{"INGESTA_EMBEDDING_MODEL"},
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the embedding service",
						Value:   "ollama",
						EnvVars: []string{"INGESTA_API_KEY", "OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
						Value: 1024,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk overlap in characters",
						Value: 200,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of files per worker batch",
						Value: 30,
					},
					&cli.IntFlag{
						Name:  "embedding-batch-size",
						Usage: "Number of chunks per embedding request",
						Value: 30,
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of parallel workers",
						Value:   5,
						EnvVars: []string{"INGESTA_WORKERS"},
					},
					&cli.IntFlag{
						Name:  "target-rpm",
						Usage: "Requests-per-minute budget target",
						Value: 3500,
					},
					&cli.IntFlag{
						Name:  "target-tpm",
						Usage: "Tokens-per-minute budget target",
						Value: 3500000,
					},
					&cli.IntFlag{
						Name:  "max-file-tokens",
						Usage: "Per-file token ceiling; larger files are skipped",
						Value: 800000,
					},
					&cli.IntFlag{
						Name:  "min-chunks-per-file",
						Usage: "Flag files yielding fewer chunks as suspicious",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "force-reindex",
						Usage: "Reprocess files already fingerprinted",
					},
				),
			},
			{
				Name:   "enrich",
				Usage:  "Classify title, author and category for ingested documents",
				Action: enrichCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:    "classifier-host",
						Usage:   "Classifier service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"INGESTA_CLASSIFIER_HOST"},
					},
					&cli.StringFlag{
						Name:     "classifier-model",
						Usage:    "Classifier model name",
						Required: true,
						EnvVars:  []string{"INGESTA_CLASSIFIER_MODEL"},
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the classifier service",
						Value:   "ollama",
						EnvVars: []string{"INGESTA_API_KEY", "OPENAI_API_KEY"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of parallel classification workers",
						Value:   4,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts per classifier call",
						Value: 5,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 2 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Reclassify documents that already have metadata",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show corpus state: documents, chunks, pending enrichment, failures",
				Action: statusCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "min-chunks-per-file",
						Usage: "Flag documents with fewer chunks as suspicious",
						Value: 5,
					},
				),
			},
			{
				Name:   "errors",
				Usage:  "List recent ingestion errors",
				Action: errorsCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of errors to show",
						Value:   20,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Filter by error kind (e.g. LOAD_ERROR, RATE_LIMITED)",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storeFlags are the flags shared by every command that opens the database.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
			EnvVars:  []string{"INGESTA_DB_PATH"},
		},
		&cli.StringFlag{
			Name:    "collection",
			Usage:   "Vector collection name",
			Value:   "books",
			EnvVars: []string{"INGESTA_COLLECTION"},
		},
	}
}

// stores bundles the repositories every command needs.
type stores struct {
	backend *badger.Backend
	docs    *badger.DocumentRepository
	vectors *badger.VectorCollection
	errLog  *badger.ErrorLog
}

func openStores(c *cli.Context) (*stores, error) {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	vectors, err := badger.NewVectorCollection(backend, c.String("collection"))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to open vector collection: %w", err)
	}

	return &stores{
		backend: backend,
		docs:    badger.NewDocumentRepository(backend),
		vectors: vectors,
		errLog:  badger.NewErrorLog(backend),
	}, nil
}

func (s *stores) Close() {
	s.backend.Close()
}

func runCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(c)
	if err != nil {
		return err
	}
	defer st.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		// Classifier settings are unused by ingestion.
		ai.WithClassifierHost(c.String("embedding-host")),
		ai.WithClassifierModel("unused"),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	cfg := &ingest.Config{
		DataDir:            c.String("data-dir"),
		Collection:         c.String("collection"),
		ChunkSize:          c.Int("chunk-size"),
		ChunkOverlap:       c.Int("chunk-overlap"),
		BatchSize:          c.Int("batch-size"),
		EmbeddingBatchSize: c.Int("embedding-batch-size"),
		MaxWorkers:         c.Int("workers"),
		TargetRPM:          c.Int("target-rpm"),
		TargetTPM:          c.Int("target-tpm"),
		MaxFileTokens:      c.Int("max-file-tokens"),
		MinChunksPerFile:   c.Int("min-chunks-per-file"),
		ForceReindex:       c.Bool("force-reindex"),
	}

	scheduler, err := ingest.NewScheduler(cfg, st.docs, st.vectors, st.errLog, embedder, loader.New())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Data dir: %s\n", cfg.DataDir)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	// Per-file failures are already recorded in the error log; they do not
	// fail the command.
	if _, err := scheduler.Run(ctx); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return nil
}

func enrichCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(c)
	if err != nil {
		return err
	}
	defer st.Close()

	aiConfig := ai.NewConfig(
		ai.WithClassifierHost(c.String("classifier-host")),
		ai.WithClassifierModel(c.String("classifier-model")),
		// Embedder settings are unused by enrichment.
		ai.WithEmbeddingHost(c.String("classifier-host")),
		ai.WithEmbeddingModel("unused"),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	classifier, err := openai.NewMetadataClassifier(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}

	cfg := enrich.DefaultConfig()
	cfg.Workers = c.Int("workers")
	cfg.MaxRetries = c.Int("max-retries")
	cfg.RetryBaseDelay = c.Duration("retry-delay")
	cfg.Force = c.Bool("force")

	enricher, err := enrich.NewEnricher(cfg, st.docs, st.vectors, st.errLog, classifier)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Classifier host: %s\n", c.String("classifier-host"))
	fmt.Fprintf(os.Stderr, "Classifier model: %s\n", c.String("classifier-model"))
	fmt.Fprintln(os.Stderr)

	if _, err := enricher.Run(ctx); err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	st, err := openStores(c)
	if err != nil {
		return err
	}
	defer st.Close()

	monitor := ingest.NewMonitor(st.docs, st.vectors, st.errLog, c.Int("min-chunks-per-file"))
	status, err := monitor.Status(c.Context)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	fmt.Printf("Documents ingested: %d\n", status.DocumentsIngested)
	fmt.Printf("Chunks stored:      %d\n", status.ChunksStored)
	fmt.Printf("Await enrichment:   %d\n", status.Unclassified)
	if len(status.ErrorSummary) > 0 {
		fmt.Println("Errors by kind:")
		for kind, count := range status.ErrorSummary {
			fmt.Printf("  %-22s %d\n", kind.String(), count)
		}
	}
	for _, f := range status.Suspicious {
		fmt.Printf("Suspicious: %s (%d chunks)\n", f.Filename, f.ChunkCount)
	}
	return nil
}

func errorsCommand(c *cli.Context) error {
	st, err := openStores(c)
	if err != nil {
		return err
	}
	defer st.Close()

	limit := c.Int("limit")
	var rows []*core.IngestionError
	if kindStr := c.String("kind"); kindStr != "" {
		kind, ok := core.ErrorKindFromString(kindStr)
		if !ok {
			return fmt.Errorf("unknown error kind %q", kindStr)
		}
		rows, err = st.errLog.ListByKind(c.Context, kind, limit)
	} else {
		rows, err = st.errLog.Recent(c.Context, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list errors: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("No errors recorded.")
		return nil
	}
	for _, row := range rows {
		fmt.Printf("%s  %-22s %s: %s\n",
			row.Timestamp.Format(time.RFC3339), row.Kind.String(), row.Filename, row.Message)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
