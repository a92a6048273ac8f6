package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/poiesic/netsight/ai"
)

// MockSummarizer is a test double for ai.Summarizer.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, returns a summary naming the candidate count.
	SummarizeFunc func(ctx context.Context, query string, candidates []ai.Candidate) (string, error)

	callCount atomic.Int64

	mu   sync.Mutex
	last []ai.Candidate
}

// NewMockSummarizer creates a mock summarizer with default behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize records the candidates and returns the configured summary.
func (m *MockSummarizer) Summarize(ctx context.Context, query string, candidates []ai.Candidate) (string, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.last = append([]ai.Candidate(nil), candidates...)
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, query, candidates)
	}
	return fmt.Sprintf("%d contacts match %q.", len(candidates), query), nil
}

// LastCandidates returns the candidates passed to the most recent call.
func (m *MockSummarizer) LastCandidates() []ai.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockSummarizer) Reset() {
	m.callCount.Store(0)
	m.SummarizeFunc = nil
	m.mu.Lock()
	m.last = nil
	m.mu.Unlock()
}
