package search

import (
	"fmt"
	"time"
)

// Config holds orchestrator settings. It is fixed once the orchestrator is built.
type Config struct {
	// TopK is the semantic search breadth.
	TopK int

	// SummaryCandidateCount is how many top results are summarized. Must be <= TopK.
	SummaryCandidateCount int

	// SummarizerTimeout bounds a single summary call.
	SummarizerTimeout time.Duration

	// BreakerFailures is the number of consecutive summarizer failures that open the breaker.
	BreakerFailures uint32

	// BreakerCooldown is how long the breaker stays open before trying again.
	BreakerCooldown time.Duration
}

// DefaultConfig returns the default orchestrator settings.
func DefaultConfig() Config {
	return Config{
		TopK:                  50,
		SummaryCandidateCount: 10,
		SummarizerTimeout:     20 * time.Second,
		BreakerFailures:       3,
		BreakerCooldown:       30 * time.Second,
	}
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	}
	if c.SummaryCandidateCount < 1 || c.SummaryCandidateCount > c.TopK {
		return fmt.Errorf("%w: summary_candidate_count must be between 1 and top_k (%d)", ErrInvalidConfig, c.TopK)
	}
	if c.SummarizerTimeout <= 0 {
		return fmt.Errorf("%w: summarizer_timeout must be positive", ErrInvalidConfig)
	}
	if c.BreakerFailures < 1 {
		return fmt.Errorf("%w: breaker failures must be positive", ErrInvalidConfig)
	}
	if c.BreakerCooldown <= 0 {
		return fmt.Errorf("%w: breaker cooldown must be positive", ErrInvalidConfig)
	}
	return nil
}
