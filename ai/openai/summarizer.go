package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/netsight/ai"
	"github.com/tmc/langchaingo/llms"
)

// ErrEmptySummary is returned when the model produces no text.
var ErrEmptySummary = errors.New("model returned an empty summary")

// Summarizer implements ai.Summarizer using an OpenAI-compatible chat model.
type Summarizer struct {
	client    llms.Model
	maxTokens int
	logger    *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(client llms.Model, maxTokens int) *Summarizer {
	return &Summarizer{
		client:    client,
		maxTokens: maxTokens,
		logger:    slog.Default().With("component", "openai-summarizer"),
	}
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatModel(config)
	if err != nil {
		return nil, err
	}
	return newSummarizer(client, config.SummaryMaxTokens), nil
}

// Summarize renders the candidates into the summary prompt and returns the model's prose.
func (s *Summarizer) Summarize(ctx context.Context, query string, candidates []ai.Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}

	prompt, err := summaryPrompt.Format(map[string]any{
		"query":      strings.TrimSpace(query),
		"candidates": formatCandidates(candidates),
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("requesting summary", "candidates", len(candidates))
	text, err := llms.GenerateFromSinglePrompt(ctx, s.client, prompt,
		llms.WithTemperature(0.2),
		llms.WithMaxTokens(s.maxTokens))
	if err != nil {
		s.logger.Error("failed to generate summary", "err", err)
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptySummary
	}
	return text, nil
}
