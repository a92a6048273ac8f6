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


package badger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// VectorStore implements storage.VectorStore for BadgerDB with a brute-force scan.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) *VectorStore {
	return &VectorStore{
		backend: backend,
	}
}

// Close is a no-op; the backend is owned by the caller.
func (v *VectorStore) Close() error {
	return nil
}

// UpsertEmbeddings inserts or replaces embeddings keyed by person ID.
func (v *VectorStore) UpsertEmbeddings(ctx context.Context, embeddings ...*core.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		for _, embedding := range embeddings {
			if len(embedding.Vector) == 0 {
				return fmt.Errorf("%w: empty vector for person %d", storage.ErrDimensionMismatch, embedding.PersonId)
			}
			key := makeEmbeddingKey(embedding.PersonId)
			if err := tx.Set(key, storage.MarshalEmbedding(embedding)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding returns the embedding of a person.
func (v *VectorStore) GetEmbedding(ctx context.Context, personID core.ID) (*core.Embedding, error) {
	var embedding *core.Embedding
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(personID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: embedding for person %d", storage.ErrNotFound, personID)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			embedding, err = storage.UnmarshalEmbedding(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return embedding, nil
}

// FindSimilar finds people whose embedding has cosine similarity >= minSimilarity with vector.
func (v *VectorStore) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]core.SimilarityMatch, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []core.SimilarityMatch
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var embedding *core.Embedding
			err := iter.Item().Value(func(val []byte) error {
				var err error
				embedding, err = storage.UnmarshalEmbedding(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(embedding.Vector) != len(vector) {
				return fmt.Errorf("%w: query has %d dimensions, stored embedding has %d",
					storage.ErrDimensionMismatch, len(vector), len(embedding.Vector))
			}

			similarity := cosineSimilarity(vector, embedding.Vector)
			if similarity >= minSimilarity {
				results = append(results, core.SimilarityMatch{
					PersonId: embedding.PersonId,
					Score:    similarity,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, ties by ID for stable output
	slices.SortFunc(results, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.PersonId < b.PersonId {
			return -1
		}
		if a.PersonId > b.PersonId {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CountEmbeddings returns the number of stored embeddings.
func (v *VectorStore) CountEmbeddings(ctx context.Context) (int, error) {
	return v.backend.countPrefix(ctx, embeddingPrefix)
}

// Reset removes every embedding.
func (v *VectorStore) Reset(ctx context.Context) error {
	return v.backend.DropPrefixes(ctx, embeddingPrefix)
}

// cosineSimilarity calculates the cosine similarity of two equal-length vectors.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
