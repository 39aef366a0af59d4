// Package enrich implements the metadata classification pass that runs
// after ingestion. It rebuilds a short excerpt for each unclassified
// document from its stored chunks, asks an LLM for title, author and
// category, and writes the result back to the fingerprint store. The pass
// is restartable: documents left unclassified by parse failures are simply
// picked up again next time.
package enrich
