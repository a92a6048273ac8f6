package ai

import "time"

// Candidate is one ranked result handed to a Summarizer.
type Candidate struct {
	Name        string
	Company     string
	Position    string
	ConnectedOn time.Time

	// GraphMatch is true when the person satisfied the structured filter.
	GraphMatch bool

	// SemanticScore is the similarity to the query text, nil when not a semantic hit.
	SemanticScore *float64
}

// ExtractedFilter holds the structured constraints an LLM found in a query.
// Empty fields mean "no constraint".
type ExtractedFilter struct {
	Company         string
	NameContains    string
	ConnectedAfter  time.Time
	ConnectedBefore time.Time
}

// IsEmpty reports whether no constraint was extracted.
func (f ExtractedFilter) IsEmpty() bool {
	return f.Company == "" && f.NameContains == "" &&
		f.ConnectedAfter.IsZero() && f.ConnectedBefore.IsZero()
}
