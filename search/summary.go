package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/netsight/ai"
	"github.com/sony/gobreaker"
)

var errNoSummarizer = errors.New("no summarizer configured")

func newSummaryBreaker(config Config, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "summarizer",
		MaxRequests: 1,
		Timeout:     config.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
}

type summaryResult struct {
	text string
	err  error
}

// summarize fills resp.Summary from the top candidates.
// Any failure leaves the summary empty and records a warning.
func (o *Orchestrator) summarize(ctx context.Context, logger *slog.Logger, resp *Response) {
	if len(resp.Items) == 0 {
		return
	}
	if o.summarizer == nil {
		resp.warn(WarningSummarizerUnavailable, fmt.Errorf("%w: %w", ErrSummarizerUnavailable, errNoSummarizer))
		return
	}

	candidates := candidatesFor(resp.Items, o.config.SummaryCandidateCount)
	query := resp.Query
	if query == "" {
		query = describeFilter(resp.Filter)
	}

	start := time.Now()
	result, err := o.breaker.Execute(func() (interface{}, error) {
		return o.summarizeWithTimeout(ctx, query, candidates)
	})
	if err != nil {
		logger.Warn("summary failed", "err", err, "elapsed", time.Since(start))
		resp.warn(WarningSummarizerUnavailable, fmt.Errorf("%w: %w", ErrSummarizerUnavailable, err))
		return
	}

	resp.Summary = result.(string)
	logger.Debug("summary generated", "candidates", len(candidates), "elapsed", time.Since(start))
}

// summarizeWithTimeout returns when the summarizer does or the timeout fires,
// whichever comes first.
func (o *Orchestrator) summarizeWithTimeout(ctx context.Context, query string, candidates []ai.Candidate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.SummarizerTimeout)
	defer cancel()

	done := make(chan summaryResult, 1)
	go func() {
		text, err := o.summarizer.Summarize(ctx, query, candidates)
		done <- summaryResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.text, r.err
	}
}

// candidatesFor converts the top n hydrated items into summarizer input.
func candidatesFor(items []ResultItem, n int) []ai.Candidate {
	candidates := make([]ai.Candidate, 0, min(n, len(items)))
	for _, item := range items {
		if len(candidates) == n {
			break
		}
		if item.Person == nil {
			continue
		}
		candidates = append(candidates, ai.Candidate{
			Name:          item.Person.Name,
			Company:       item.Person.Company,
			Position:      item.Person.Position,
			ConnectedOn:   item.Person.ConnectedOn,
			GraphMatch:    item.GraphMatch,
			SemanticScore: item.SemanticScore,
		})
	}
	return candidates
}

// describeFilter renders a filter as query text for filter-only summaries.
func describeFilter(f Filter) string {
	var parts []string
	if c := strings.TrimSpace(f.Company); c != "" {
		parts = append(parts, "at "+c)
	}
	if n := strings.TrimSpace(f.NameContains); n != "" {
		parts = append(parts, fmt.Sprintf("named like %q", n))
	}
	if !f.ConnectedAfter.IsZero() {
		parts = append(parts, "connected on or after "+f.ConnectedAfter.Format(time.DateOnly))
	}
	if !f.ConnectedBefore.IsZero() {
		parts = append(parts, "connected on or before "+f.ConnectedBefore.Format(time.DateOnly))
	}
	if len(parts) == 0 {
		return "contacts"
	}
	return "contacts " + strings.Join(parts, ", ")
}
