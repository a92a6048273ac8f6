// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/netsight/ai"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// BatchProcessor embeds batches of people and stores their vectors.
// It is safe for concurrent use when the embedder and store are.
type BatchProcessor struct {
	store          storage.VectorStore
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding API call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store storage.VectorStore, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the profile blurb of each person and upserts the vectors.
// Vectors are normalized before they are stored.
// Returns the number of embeddings written.
func (bp *BatchProcessor) Process(ctx context.Context, people []*core.Person) (int, error) {
	if len(people) == 0 {
		return 0, nil
	}

	texts := make([]string, len(people))
	for i, p := range people {
		texts[i] = core.ProfileBlurb(p)
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		if err == nil && len(vectors) != len(texts) {
			return Permanent(fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(texts), len(vectors)))
		}
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	embeddings := make([]*core.Embedding, len(people))
	for i, p := range people {
		embeddings[i] = &core.Embedding{
			PersonId:   p.Id,
			Vector:     NormalizeVector(vectors[i]),
			SourceText: texts[i],
		}
	}

	if err := bp.store.UpsertEmbeddings(ctx, embeddings...); err != nil {
		return 0, fmt.Errorf("failed to store embeddings: %w", err)
	}

	return len(embeddings), nil
}
