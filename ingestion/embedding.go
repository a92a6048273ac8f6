package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/reembed"
	"golang.org/x/time/rate"
)

// embeddingProcessor embeds profile blurbs under a request rate limit.
type embeddingProcessor struct {
	batch   *reembed.BatchProcessor
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(batch *reembed.BatchProcessor, limiter *rate.Limiter, logger *slog.Logger) (processor, error) {
	if batch == nil {
		return nil, fmt.Errorf("batch processor required")
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		batch:   batch,
		limiter: limiter,
		logger:  logger.With("processor", "embeddings"),
	}, nil
}

// process waits for a rate-limit token, then embeds and stores the batch.
func (ep *embeddingProcessor) process(ctx context.Context, people []*core.Person) (int, error) {
	if err := ep.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	ep.logger.Debug("embedding batch", "people", len(people))
	n, err := ep.batch.Process(ctx, people)
	if err != nil {
		ep.logger.Error("error generating embeddings", "people", len(people), "err", err)
		return 0, err
	}
	return n, nil
}
