// Package indexer runs the photo tagging pipeline.
//
// A run over one folder moves through these phases:
//   - Scanning: walk the folder recursively and collect image files by extension
//   - Extracting: derive capture time and location on a bounded worker pool
//   - PersistingPhotos: upsert one PhotoMetadata row per file in a single transaction
//   - PersistingTags: create year and location tags and link them in a second transaction
//
// Progress, phase changes and log lines are delivered to an Observer. The
// Controller wraps a Pipeline for background use from the HTTP API and keeps
// a status snapshot for polling clients.
//
// Cancellation is cooperative. Extraction stops at the next completed file
// and discards its partial results; a persistence transaction that has begun
// always commits, and the run stops before the next phase.
package indexer
