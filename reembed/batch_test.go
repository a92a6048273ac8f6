package reembed

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/poiesic/netsight/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder for testing
type mockEmbedder struct {
	embedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.embedTextFunc != nil {
		return m.embedTextFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	// Default: return unnormalized vectors for each text
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0} // magnitude = 3.0
	}
	return result, nil
}

func magnitude(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestBatchProcessor_Process(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	people := seedPeople(t, stores, 2)

	var gotTexts []string
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			gotTexts = texts
			return [][]float32{{1, 2, 2}, {3, 4, 0}}, nil
		},
	}
	processor := NewBatchProcessor(stores.Vector, embedder, 3, 10*time.Millisecond)

	n, err := processor.Process(ctx, people)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, core.ProfileBlurb(people[0]), gotTexts[0])

	embedding, err := stores.Vector.GetEmbedding(ctx, people[1].Id)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, magnitude(embedding.Vector), 1e-6, "vectors should be normalized")
	assert.InDelta(t, 0.6, embedding.Vector[0], 1e-6)
	assert.Equal(t, core.ProfileBlurb(people[1]), embedding.SourceText)
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	called := false
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			called = true
			return nil, nil
		},
	}
	n, err := NewBatchProcessor(stores.Vector, embedder, 3, time.Millisecond).Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, called)
}

func TestBatchProcessor_RetryOnError(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	people := seedPeople(t, stores, 3)

	attempts := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("temporary failure")
			}
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{0, 0, 5}
			}
			return result, nil
		},
	}

	n, err := NewBatchProcessor(stores.Vector, embedder, 3, time.Millisecond).Process(context.Background(), people)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, attempts)
}

func TestBatchProcessor_AllRetriesFail(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	people := seedPeople(t, stores, 2)

	attempts := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			return nil, errors.New("service down")
		},
	}

	_, err := NewBatchProcessor(stores.Vector, embedder, 3, time.Millisecond).Process(context.Background(), people)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
	assert.Equal(t, 3, attempts)

	count, err := stores.Vector.CountEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "nothing should be written on failure")
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	stores, cleanup := setupTestDB(t)
	defer cleanup()

	people := seedPeople(t, stores, 3)

	attempts := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			return [][]float32{{1, 0, 0}}, nil
		},
	}

	_, err := NewBatchProcessor(stores.Vector, embedder, 3, time.Millisecond).Process(context.Background(), people)
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
	assert.Equal(t, 1, attempts, "a count mismatch is not retried")
}
