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


package search

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/netsight/ai"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// GraphClient answers structured, exact-match queries over the contacts graph.
// Errors are returned as *GraphQueryError.
type GraphClient interface {
	// FindPeople returns every person matching the filter, unordered.
	FindPeople(ctx context.Context, filter Filter) ([]*core.Person, error)

	// GetPeople loads people by ID, skipping unknown IDs.
	GetPeople(ctx context.Context, ids ...core.ID) ([]*core.Person, error)
}

// Hit is one semantic search result.
type Hit struct {
	ID    core.ID
	Score float64 // in [0,1]
}

// VectorClient answers semantic queries.
// Errors are returned as *VectorQueryError.
type VectorClient interface {
	// Search returns up to topK hits ordered by descending score.
	Search(ctx context.Context, text string, topK int) ([]Hit, error)

	// SearchSimilar returns up to topK hits near the stored embedding of a person.
	// The error wraps storage.ErrNotFound when the person has no embedding.
	SearchSimilar(ctx context.Context, id core.ID, topK int) ([]Hit, error)
}

// StoreGraphClient implements GraphClient over a storage.GraphStore.
type StoreGraphClient struct {
	store storage.GraphStore
}

var _ GraphClient = (*StoreGraphClient)(nil)

// NewGraphClient creates a GraphClient backed by store.
func NewGraphClient(store storage.GraphStore) (*StoreGraphClient, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	return &StoreGraphClient{store: store}, nil
}

// FindPeople runs the filter as a storage predicate.
func (c *StoreGraphClient) FindPeople(ctx context.Context, filter Filter) ([]*core.Person, error) {
	people, err := c.store.FindPeople(ctx, filter.Predicate())
	if err != nil {
		return nil, &GraphQueryError{Op: "find people", Err: err}
	}
	return people, nil
}

// GetPeople loads people by ID.
func (c *StoreGraphClient) GetPeople(ctx context.Context, ids ...core.ID) ([]*core.Person, error) {
	people, err := c.store.GetPeople(ctx, ids...)
	if err != nil {
		return nil, &GraphQueryError{Op: "get people", Err: err}
	}
	return people, nil
}

// EmbeddingVectorClient implements VectorClient by embedding the query text
// and searching a storage.VectorStore. Query embeddings are cached.
type EmbeddingVectorClient struct {
	embedder      ai.Embedder
	store         storage.VectorStore
	minSimilarity float32
	cache         *lru.Cache[string, []float32]
}

var _ VectorClient = (*EmbeddingVectorClient)(nil)

// NewVectorClient creates a VectorClient. Hits below minSimilarity are dropped.
// A cacheSize of 0 disables the query-embedding cache.
func NewVectorClient(embedder ai.Embedder, store storage.VectorStore, minSimilarity float32, cacheSize int) (*EmbeddingVectorClient, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	c := &EmbeddingVectorClient{
		embedder:      embedder,
		store:         store,
		minSimilarity: minSimilarity,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, []float32](cacheSize)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}
	return c, nil
}

// Search embeds text and returns the most similar people.
func (c *EmbeddingVectorClient) Search(ctx context.Context, text string, topK int) ([]Hit, error) {
	vector, err := c.embed(ctx, text)
	if err != nil {
		return nil, &VectorQueryError{Op: "embed query", Err: err}
	}

	return c.findSimilar(ctx, vector, topK)
}

// SearchSimilar searches with the stored embedding of a person.
func (c *EmbeddingVectorClient) SearchSimilar(ctx context.Context, id core.ID, topK int) ([]Hit, error) {
	embedding, err := c.store.GetEmbedding(ctx, id)
	if err != nil {
		return nil, &VectorQueryError{Op: "get embedding", Err: err}
	}
	return c.findSimilar(ctx, embedding.Vector, topK)
}

func (c *EmbeddingVectorClient) findSimilar(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	matches, err := c.store.FindSimilar(ctx, vector, c.minSimilarity, topK)
	if err != nil {
		return nil, &VectorQueryError{Op: "find similar", Err: err}
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{ID: m.PersonId, Score: clampScore(float64(m.Score))})
	}
	return hits, nil
}

func (c *EmbeddingVectorClient) embed(ctx context.Context, text string) ([]float32, error) {
	key := strings.Join(strings.Fields(text), " ")
	if c.cache != nil {
		if vector, ok := c.cache.Get(key); ok {
			return vector, nil
		}
	}
	vector, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Add(key, vector)
	}
	return vector, nil
}

// clampScore bounds a similarity to [0,1].
func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
