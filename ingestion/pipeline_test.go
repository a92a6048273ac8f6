package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/netsight/ai/mock"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
	"github.com/poiesic/netsight/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `Notes:
"When exporting your connection data, you may notice that some of the email addresses are missing."

First Name,Last Name,URL,Email Address,Company,Position,Connected On
Ada,Lovelace,https://www.linkedin.com/in/ada,ada@example.com,Acme,CTO,10 Jan 2023
Alan,Turing,https://www.linkedin.com/in/alan,,ACME ,Researcher,01 May 2021
Grace,Hopper,https://www.linkedin.com/in/grace,,Globex,Rear Admiral,02 Mar 2022
Ada,Lovelace,https://www.linkedin.com/in/ada/,,Acme,CTO,10 Jan 2023
,,https://www.linkedin.com/in/nobody,,,,01 Jan 2020
Linus,Pauling,,,,,
`

func setupTestStores(t *testing.T) *badger.Stores {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func newTestPipeline(t *testing.T, stores *badger.Stores, provider *mock.MockProvider, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithRetry(2, time.Millisecond), WithBatchSize(2)}, opts...)
	pipeline, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline
}

func newProvider() *mock.MockProvider {
	return mock.NewMockProvider().(*mock.MockProvider)
}

func TestNewPipeline(t *testing.T) {
	stores := setupTestStores(t)
	provider := newProvider()

	t.Run("valid pipeline", func(t *testing.T) {
		pipeline, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, provider)
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		defer pipeline.Release()

		assert.NotNil(t, pipeline.embeddingPool)
		assert.NotNil(t, pipeline.embeddingProc)
		assert.Equal(t, "mock-embedding", pipeline.model)
	})

	t.Run("nil graph store", func(t *testing.T) {
		_, err := NewPipeline(nil, stores.Vector, stores.Manifest, provider)
		assert.Equal(t, ErrGraphStoreRequired, err)
	})

	t.Run("nil vector store", func(t *testing.T) {
		_, err := NewPipeline(stores.Graph, nil, stores.Manifest, provider)
		assert.Equal(t, ErrVectorStoreRequired, err)
	})

	t.Run("nil manifest repository", func(t *testing.T) {
		_, err := NewPipeline(stores.Graph, stores.Vector, nil, provider)
		assert.Equal(t, ErrManifestRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestPipeline_WithOptions(t *testing.T) {
	stores := setupTestStores(t)
	provider := newProvider()

	t.Run("with pool size zero defaults to 1", func(t *testing.T) {
		pipeline, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, provider, WithPoolSize(0))
		require.NoError(t, err)
		defer pipeline.Release()
		assert.Equal(t, 1, pipeline.embeddingPool.Cap())
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		pipeline, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, provider, WithLogger(logger))
		require.NoError(t, err)
		defer pipeline.Release()
		assert.NotNil(t, pipeline.logger)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, provider, WithBatchSize(0))
		assert.Error(t, err)
	})

	t.Run("invalid retry", func(t *testing.T) {
		_, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, provider, WithRetry(0, time.Second))
		assert.Error(t, err)
	})

	t.Run("with rate limit", func(t *testing.T) {
		pipeline, err := NewPipeline(stores.Graph, stores.Vector, stores.Manifest, provider, WithRateLimit(5, 0))
		require.NoError(t, err)
		defer pipeline.Release()
		assert.Equal(t, 1, pipeline.limiter.Burst())
	})
}

func TestPipeline_IngestReader(t *testing.T) {
	ctx := context.Background()
	stores := setupTestStores(t)
	pipeline := newTestPipeline(t, stores, newProvider(), WithPoolSize(2))

	result, err := pipeline.IngestReader(ctx, "connections.csv", strings.NewReader(sampleExport))
	require.NoError(t, err)

	assert.Equal(t, 6, result.Rows)
	assert.Equal(t, 4, result.People)
	assert.Equal(t, 2, result.Companies, "Acme and ACME merge")
	assert.Equal(t, 4, result.Embeddings)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], core.ErrEmptyName)

	people, err := stores.Graph.FindPeople(ctx, storage.Predicate{CompanyKey: "acme"})
	require.NoError(t, err)
	assert.Len(t, people, 2)

	count, err := stores.Vector.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	manifest, err := stores.Manifest.LoadManifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Equal(t, "connections.csv", manifest.Source)
	assert.Equal(t, 4, manifest.People)
	assert.Equal(t, "mock-embedding", manifest.Model)
	assert.False(t, manifest.CompletedAt.IsZero())
}

func TestPipeline_RunReplacesPreviousData(t *testing.T) {
	ctx := context.Background()
	stores := setupTestStores(t)
	pipeline := newTestPipeline(t, stores, newProvider())

	first := []core.Connection{
		{FullName: "Old Contact", Company: "Initech", ProfileURL: "https://www.linkedin.com/in/old"},
		{FullName: "Kept Contact", Company: "Acme", ProfileURL: "https://www.linkedin.com/in/kept"},
	}
	_, err := pipeline.Run(ctx, "first.csv", first)
	require.NoError(t, err)

	second := []core.Connection{
		{FullName: "Kept Contact", Company: "Acme", ProfileURL: "https://www.linkedin.com/in/kept"},
	}
	result, err := pipeline.Run(ctx, "second.csv", second)
	require.NoError(t, err)
	assert.Equal(t, 1, result.People)

	total, err := stores.Graph.CountPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	companies, err := stores.Graph.CountCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, companies)

	count, err := stores.Vector.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPipeline_RunValidatesConnections(t *testing.T) {
	ctx := context.Background()
	stores := setupTestStores(t)
	pipeline := newTestPipeline(t, stores, newProvider())

	rows := []core.Connection{
		{FullName: "Future Friend", ProfileURL: "https://www.linkedin.com/in/future", ConnectedOn: time.Now().Add(48 * time.Hour)},
		{FullName: "Valid Friend", ProfileURL: "https://www.linkedin.com/in/valid"},
	}
	result, err := pipeline.Run(ctx, "inline", rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.People)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Line)
	assert.ErrorIs(t, result.Errors[0], core.ErrInvalidTimestamp)
}

func TestPipeline_RunKeepsSourceLines(t *testing.T) {
	ctx := context.Background()
	stores := setupTestStores(t)
	pipeline := newTestPipeline(t, stores, newProvider())

	rows := []core.Connection{
		{FullName: "Valid Friend", ProfileURL: "https://www.linkedin.com/in/valid", Line: 4},
		{FullName: "Future Friend", ProfileURL: "https://www.linkedin.com/in/future", ConnectedOn: time.Now().Add(48 * time.Hour), Line: 7},
	}
	result, err := pipeline.Run(ctx, "inline", rows)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 7, result.Errors[0].Line)
	assert.EqualError(t, result.Errors[0], "row 7: "+result.Errors[0].Err.Error())
}

func TestPipeline_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	stores := setupTestStores(t)

	embedder := mock.NewMockEmbedder()
	var calls atomic.Int64
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls.Add(1)
		return nil, errors.New("embedding service unavailable")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockSummarizer(), mock.NewMockFilterExtractor()).(*mock.MockProvider)
	pipeline := newTestPipeline(t, stores, provider, WithPoolSize(1))

	_, err := pipeline.IngestReader(ctx, "connections.csv", strings.NewReader(sampleExport))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service unavailable")
	assert.GreaterOrEqual(t, calls.Load(), int64(2), "embedding calls are retried")

	manifest, err := stores.Manifest.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, manifest, "a failed run does not record a manifest")
}

func TestPipeline_ContextCanceled(t *testing.T) {
	stores := setupTestStores(t)
	pipeline := newTestPipeline(t, stores, newProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.IngestReader(ctx, "connections.csv", strings.NewReader(sampleExport))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_IngestFile(t *testing.T) {
	stores := setupTestStores(t)
	pipeline := newTestPipeline(t, stores, newProvider())

	path := filepath.Join(t.TempDir(), "Connections.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o600))

	result, err := pipeline.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Source)
	assert.Equal(t, 4, result.People)

	_, err = pipeline.IngestFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
