package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphStoreRequired is returned when a graph store is not provided.
	ErrGraphStoreRequired = errors.New("graph store required")

	// ErrVectorStoreRequired is returned when a vector store is not provided.
	ErrVectorStoreRequired = errors.New("vector store required")

	// ErrManifestRepositoryRequired is returned when a manifest repository is not provided.
	ErrManifestRepositoryRequired = errors.New("manifest repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrHeaderNotFound is returned when a CSV has no connections header row.
	ErrHeaderNotFound = errors.New("connections header row not found")
)

// RowError describes a row that was skipped.
type RowError struct {
	// Line is the source line of the row. Connections passed to Pipeline.Run
	// without a line are numbered by their 1-based position in the slice.
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}
