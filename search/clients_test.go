package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/netsight/ai/mock"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
	"github.com/poiesic/netsight/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStores(t *testing.T) *badger.Stores {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func TestStoreGraphClient(t *testing.T) {
	ctx := context.Background()
	stores := setupStores(t)
	p1, p2, p3 := testPeople()
	_, err := stores.Graph.AddPeople(ctx, p1, p2, p3)
	require.NoError(t, err)

	_, err = NewGraphClient(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)

	client, err := NewGraphClient(stores.Graph)
	require.NoError(t, err)

	people, err := client.FindPeople(ctx, Filter{Company: " acme "})
	require.NoError(t, err)
	assert.Len(t, people, 2)

	people, err = client.GetPeople(ctx, 2, 42)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Grace Hopper", people[0].Name)

	require.NoError(t, stores.Close())
	_, err = client.FindPeople(ctx, Filter{Company: "acme"})
	var gqe *GraphQueryError
	require.ErrorAs(t, err, &gqe)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestEmbeddingVectorClient(t *testing.T) {
	ctx := context.Background()
	stores := setupStores(t)
	p1, p2, p3 := testPeople()

	embedder := mock.NewMockEmbedder()
	var embeddings []*core.Embedding
	for _, p := range []*core.Person{p1, p2, p3} {
		blurb := core.ProfileBlurb(p)
		embeddings = append(embeddings, &core.Embedding{
			PersonId:   p.Id,
			Vector:     mock.DeterministicVector(blurb, mock.DefaultDimension),
			SourceText: blurb,
		})
	}
	require.NoError(t, stores.Vector.UpsertEmbeddings(ctx, embeddings...))

	t.Run("exact text ranks first", func(t *testing.T) {
		client, err := NewVectorClient(embedder, stores.Vector, 0, 0)
		require.NoError(t, err)

		hits, err := client.Search(ctx, core.ProfileBlurb(p2), 2)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.LessOrEqual(t, len(hits), 2)
		assert.Equal(t, p2.Id, hits[0].ID)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
		for _, h := range hits {
			assert.GreaterOrEqual(t, h.Score, 0.0)
			assert.LessOrEqual(t, h.Score, 1.0)
		}
	})

	t.Run("similar to a stored embedding", func(t *testing.T) {
		embedder.Reset()
		client, err := NewVectorClient(embedder, stores.Vector, 0, 0)
		require.NoError(t, err)

		hits, err := client.SearchSimilar(ctx, p3.Id, 3)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, p3.Id, hits[0].ID)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
		assert.Zero(t, embedder.CallCount())

		_, err = client.SearchSimilar(ctx, core.ID(404), 3)
		var vqe *VectorQueryError
		require.ErrorAs(t, err, &vqe)
		assert.Equal(t, "get embedding", vqe.Op)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("query embeddings are cached", func(t *testing.T) {
		embedder.Reset()
		client, err := NewVectorClient(embedder, stores.Vector, 0, 8)
		require.NoError(t, err)

		_, err = client.Search(ctx, "staff  engineer", 5)
		require.NoError(t, err)
		_, err = client.Search(ctx, "staff engineer", 5)
		require.NoError(t, err)
		assert.Equal(t, 1, embedder.CallCount())
	})

	t.Run("embedding failure", func(t *testing.T) {
		failing := mock.NewMockEmbedder()
		failing.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model not loaded")
		}
		client, err := NewVectorClient(failing, stores.Vector, 0, 0)
		require.NoError(t, err)

		_, err = client.Search(ctx, "anything", 5)
		var vqe *VectorQueryError
		require.ErrorAs(t, err, &vqe)
		assert.Equal(t, "embed query", vqe.Op)
	})

	t.Run("requires dependencies", func(t *testing.T) {
		_, err := NewVectorClient(nil, stores.Vector, 0, 0)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
		_, err = NewVectorClient(embedder, nil, 0, 0)
		assert.ErrorIs(t, err, ErrStoreRequired)
	})
}
