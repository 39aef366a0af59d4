// Package ingest implements the content-addressed ingestion engine.
//
// The Scheduler type drives a run: it discovers candidate files, fingerprints
// them, subtracts the already-ingested set, and dispatches file batches
// across a bounded worker pool. Each file is loaded, chunked, embedded, and
// upserted under stable content-derived chunk identities, so re-running a
// pipeline over unchanged content performs no duplicate work.
//
// Provider calls are routed through a rate-limit governor combining proactive
// request pacing with reactive exponential backoff. Per-file failures are
// recorded in the error log and never abort a run; only storage connectivity
// failures do.
package ingest
