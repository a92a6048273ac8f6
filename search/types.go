package search

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// Filter is the structured part of a query. Zero-valued fields are unset.
type Filter struct {
	Company         string
	NameContains    string
	ConnectedAfter  time.Time
	ConnectedBefore time.Time
}

// IsEmpty reports whether no constraint is set.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Company) == "" && strings.TrimSpace(f.NameContains) == "" &&
		f.ConnectedAfter.IsZero() && f.ConnectedBefore.IsZero()
}

// Predicate converts the filter to a storage predicate.
func (f Filter) Predicate() storage.Predicate {
	return storage.Predicate{
		CompanyKey:      core.NormalizeCompanyName(f.Company),
		NameContains:    strings.TrimSpace(f.NameContains),
		ConnectedAfter:  f.ConnectedAfter,
		ConnectedBefore: f.ConnectedBefore,
	}
}

// Request is a single hybrid query.
type Request struct {
	// Text is the free-text semantic intent. May be empty.
	Text string

	// Filter holds explicit structured constraints. May be empty.
	Filter Filter

	// Summarize asks for an LLM summary of the top results.
	Summarize bool

	// Limit truncates the ranked list after fusion. 0 means no limit.
	Limit int
}

// Tier is the fusion rank class of a result.
type Tier int

const (
	// TierSemanticOnly items matched the text but not the filter.
	TierSemanticOnly Tier = iota
	// TierGraphOnly items matched the filter but not the text.
	TierGraphOnly
	// TierBoth items matched the filter and the text.
	TierBoth
)

func (t Tier) String() string {
	switch t {
	case TierBoth:
		return "both"
	case TierGraphOnly:
		return "graph"
	case TierSemanticOnly:
		return "semantic"
	default:
		return "unknown"
	}
}

// ResultItem is one fused, deduplicated result.
type ResultItem struct {
	ID     core.ID
	Person *core.Person // nil if the person could not be loaded

	// GraphMatch is true when the person satisfied the structured filter.
	GraphMatch bool

	// SemanticScore is the text similarity in [0,1], nil when not a semantic hit.
	SemanticScore *float64

	// CombinedScore orders results; a higher tier always scores higher.
	CombinedScore float64

	Tier Tier
}

// WarningCode classifies a non-fatal problem encountered during a query.
type WarningCode string

const (
	WarningSummarizerUnavailable WarningCode = "SummarizerUnavailable"
	WarningSemanticDegraded      WarningCode = "SemanticSearchDegraded"
	WarningDerivedFilterFailed   WarningCode = "DerivedFilterFailed"
	WarningFilterExtraction      WarningCode = "FilterExtractionFailed"
	WarningHydration             WarningCode = "HydrationFailed"
)

// Warning is a non-fatal problem attached to a Response.
type Warning struct {
	Code    WarningCode
	Message string
}

// Response is the result of a query.
type Response struct {
	RequestID uuid.UUID
	Query     string

	// Filter is the filter actually applied, explicit or derived.
	Filter Filter

	// FilterDerived is true when Filter came from the filter extractor.
	FilterDerived bool

	Items   []ResultItem
	Summary string

	Warnings []Warning

	// Degraded is true when one source failed and results come from the other only.
	Degraded bool
}

// HasWarning reports whether a warning with the code was recorded.
func (r *Response) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func (r *Response) warn(code WarningCode, err error) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: err.Error()})
}
