package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/netsight/ai"
)

// MockFilterExtractor is a test double for ai.FilterExtractor.
type MockFilterExtractor struct {
	// ExtractFilterFunc is called by ExtractFilter if set.
	// If nil, no filter is extracted.
	ExtractFilterFunc func(ctx context.Context, text string) (ai.ExtractedFilter, error)

	callCount atomic.Int64
}

// NewMockFilterExtractor creates a mock filter extractor that extracts nothing.
func NewMockFilterExtractor() *MockFilterExtractor {
	return &MockFilterExtractor{}
}

// ExtractFilter returns the configured filter.
func (m *MockFilterExtractor) ExtractFilter(ctx context.Context, text string) (ai.ExtractedFilter, error) {
	m.callCount.Add(1)

	if m.ExtractFilterFunc != nil {
		return m.ExtractFilterFunc(ctx, text)
	}
	return ai.ExtractedFilter{}, nil
}

// CallCount returns the number of times ExtractFilter was called.
func (m *MockFilterExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockFilterExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractFilterFunc = nil
}
