// Package ingestion loads a contacts export into the graph and embedding stores.
//
// ReadConnections parses a LinkedIn-style connections CSV. The Pipeline then
// performs a full rebuild:
//   - resetting the graph and vector stores
//   - validating and deduplicating connections
//   - writing Person and Company nodes with their WORKS_AT edges
//   - embedding profile blurbs concurrently on a worker pool, rate limited and retried
//   - recording a manifest of the run
//
// Runs are not resumable; a failed run is repaired by running again.
package ingestion
