package search

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphClientRequired is returned when a graph client is not provided.
	ErrGraphClientRequired = errors.New("graph client required")

	// ErrVectorClientRequired is returned when a vector client is not provided.
	ErrVectorClientRequired = errors.New("vector client required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when a backing store is not provided.
	ErrStoreRequired = errors.New("store required")

	// ErrInvalidConfig is returned when orchestrator settings are inconsistent.
	ErrInvalidConfig = errors.New("invalid search configuration")

	// ErrFilterUnavailable is returned when the caller supplied a filter
	// but the graph could not be queried. Results are never returned unfiltered.
	ErrFilterUnavailable = errors.New("filter unavailable")

	// ErrSemanticSearchUnavailable is returned when free text was the only
	// intent of a query and the vector search failed.
	ErrSemanticSearchUnavailable = errors.New("semantic search unavailable")

	// ErrSummarizerUnavailable marks a failed or timed-out summary.
	// It is recorded as a warning and never fails a query.
	ErrSummarizerUnavailable = errors.New("summarizer unavailable")
)

// GraphQueryError is the single error type surfaced by a GraphClient.
type GraphQueryError struct {
	Op  string
	Err error
}

func (e *GraphQueryError) Error() string {
	return fmt.Sprintf("graph query %s: %v", e.Op, e.Err)
}

func (e *GraphQueryError) Unwrap() error {
	return e.Err
}

// VectorQueryError is the single error type surfaced by a VectorClient.
type VectorQueryError struct {
	Op  string
	Err error
}

func (e *VectorQueryError) Error() string {
	return fmt.Sprintf("vector query %s: %v", e.Op, e.Err)
}

func (e *VectorQueryError) Unwrap() error {
	return e.Err
}
