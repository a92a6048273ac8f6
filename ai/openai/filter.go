package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/poiesic/netsight/ai"
	"github.com/poiesic/netsight/core"
	"github.com/tmc/langchaingo/llms"
)

const maxFilterAttempts = 3

// FilterExtractor implements ai.FilterExtractor using an OpenAI-compatible chat model.
type FilterExtractor struct {
	client llms.Model
	now    func() time.Time
	logger *slog.Logger
}

// extractedFilter matches the JSON the model is asked to produce.
type extractedFilter struct {
	Company         string `json:"company"`
	Name            string `json:"name"`
	ConnectedAfter  string `json:"connected_after"`
	ConnectedBefore string `json:"connected_before"`
}

// newFilterExtractor is an internal constructor that returns the concrete type.
func newFilterExtractor(client llms.Model) *FilterExtractor {
	return &FilterExtractor{
		client: client,
		now:    time.Now,
		logger: slog.Default().With("component", "openai-filter"),
	}
}

// NewFilterExtractor creates a new filter extractor using the provided configuration.
//
// Returns ai.FilterExtractor interface to enforce abstraction.
func NewFilterExtractor(config *ai.Config) (ai.FilterExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatModel(config)
	if err != nil {
		return nil, err
	}
	return newFilterExtractor(client), nil
}

// ExtractFilter asks the model for the filters stated in text.
// Malformed JSON is repaired, and the request retried up to three times.
func (e *FilterExtractor) ExtractFilter(ctx context.Context, text string) (ai.ExtractedFilter, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ai.ExtractedFilter{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildFilterPrompt(e.now()))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var result extractedFilter
	var lastErr error
	for attempt := 0; attempt < maxFilterAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return ai.ExtractedFilter{}, err
		}
		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return ai.ExtractedFilter{}, nil
		}

		responseText := stripCodeFence(response.Choices[0].Content)
		if repaired, err := jsonrepair.JSONRepair(responseText); err == nil {
			responseText = repaired
		}

		result = extractedFilter{}
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing filter response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		e.logger.Error("failed to parse filter response after retries", "err", lastErr)
		return ai.ExtractedFilter{}, lastErr
	}

	return result.toFilter()
}

// toFilter validates the model's output and converts it to an ai.ExtractedFilter.
func (f extractedFilter) toFilter() (ai.ExtractedFilter, error) {
	after, err := core.ParseConnectedOn(f.ConnectedAfter)
	if err != nil {
		return ai.ExtractedFilter{}, fmt.Errorf("connected_after: %w", err)
	}
	before, err := core.ParseConnectedOn(f.ConnectedBefore)
	if err != nil {
		return ai.ExtractedFilter{}, fmt.Errorf("connected_before: %w", err)
	}
	if !after.IsZero() && !before.IsZero() && after.After(before) {
		after, before = before, after
	}
	return ai.ExtractedFilter{
		Company:         strings.TrimSpace(f.Company),
		NameContains:    strings.TrimSpace(f.Name),
		ConnectedAfter:  after,
		ConnectedBefore: before,
	}, nil
}

// stripCodeFence removes markdown code fences some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
