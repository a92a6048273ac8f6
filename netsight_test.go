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


package netsight

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/netsight/ai/mock"
	"github.com/poiesic/netsight/config"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `Notes:
"When exporting your connection data, you may notice that some of the email addresses are missing."

First Name,Last Name,URL,Email Address,Company,Position,Connected On
Ada,Lovelace,https://www.linkedin.com/in/ada,ada@example.com,Acme,CTO,10 Jan 2023
Alan,Turing,https://www.linkedin.com/in/alan,,ACME ,Researcher,01 May 2021
Grace,Hopper,https://www.linkedin.com/in/grace,,Globex,Rear Admiral,02 Mar 2022
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "db")
	cfg.Ingestion.RetryDelay = 0
	return cfg
}

func newTestAnalyzer(t *testing.T) (*Analyzer, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	a, err := NewAnalyzer(testConfig(t), WithAIProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, provider
}

func ingest(t *testing.T, a *Analyzer) {
	t.Helper()
	pipeline, err := a.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	result, err := pipeline.IngestReader(context.Background(), "Connections.csv", strings.NewReader(export))
	require.NoError(t, err)
	require.Equal(t, 3, result.People)
}

func TestNewAnalyzer(t *testing.T) {
	t.Run("opens badger stores", func(t *testing.T) {
		a, _ := newTestAnalyzer(t)
		assert.NotNil(t, a.GraphStore())
		assert.NotNil(t, a.VectorStore())
		assert.NotNil(t, a.backend)
		assert.NotNil(t, a.logger)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Search.TopK = 0
		a, err := NewAnalyzer(cfg, WithAIProvider(mock.NewMockProvider()))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Nil(t, a)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

		cfg := testConfig(t)
		cfg.Storage.Path = tmpFile
		a, err := NewAnalyzer(cfg, WithAIProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, a)
	})
}

func TestAnalyzer_Close(t *testing.T) {
	a, err := NewAnalyzer(testConfig(t), WithAIProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestAnalyzer_StatusBeforeIngestion(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	status, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status.People)
	assert.Zero(t, status.Embeddings)
	assert.Nil(t, status.Manifest)
}

func TestAnalyzer_IngestAndQuery(t *testing.T) {
	a, provider := newTestAnalyzer(t)
	ctx := context.Background()
	ingest(t, a)

	status, err := a.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, status.People)
	assert.Equal(t, 2, status.Companies)
	assert.Equal(t, 3, status.Embeddings)
	require.NotNil(t, status.Manifest)
	assert.Equal(t, "Connections.csv", status.Manifest.Source)
	assert.Equal(t, provider.EmbeddingModel(), status.Manifest.Model)

	orchestrator, err := a.NewOrchestrator()
	require.NoError(t, err)

	adaID := (&core.Connection{ProfileURL: "https://www.linkedin.com/in/ada"}).ID()
	ada, err := a.GraphStore().GetPerson(ctx, adaID)
	require.NoError(t, err)

	t.Run("filter only", func(t *testing.T) {
		resp, err := orchestrator.Query(ctx, search.Request{Filter: search.Filter{Company: "acme"}})
		require.NoError(t, err)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "Ada Lovelace", resp.Items[0].Person.Name)
		assert.Equal(t, "Alan Turing", resp.Items[1].Person.Name)
		for _, item := range resp.Items {
			assert.Nil(t, item.SemanticScore)
		}
	})

	t.Run("hybrid with summary", func(t *testing.T) {
		resp, err := orchestrator.Query(ctx, search.Request{
			Text:      core.ProfileBlurb(ada),
			Filter:    search.Filter{Company: "Acme"},
			Summarize: true,
		})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Items)
		assert.Equal(t, adaID, resp.Items[0].ID)
		assert.Equal(t, search.TierBoth, resp.Items[0].Tier)
		assert.NotEmpty(t, resp.Summary)
		assert.Empty(t, resp.Warnings)
	})

	t.Run("details", func(t *testing.T) {
		details, err := orchestrator.Details(ctx, "grace hopper")
		require.NoError(t, err)
		assert.Equal(t, "Grace Hopper", details.Person.Name)
		require.NotNil(t, details.Company)
		assert.Equal(t, "Globex", details.Company.Name)
	})
}

func TestAnalyzer_Reembed(t *testing.T) {
	a, provider := newTestAnalyzer(t)
	ctx := context.Background()
	ingest(t, a)

	embedder := provider.GetMockEmbedder()
	embedder.Reset()

	var progress bytes.Buffer
	reembedder, err := a.NewReembedder(&progress)
	require.NoError(t, err)

	result, err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.People)
	assert.Equal(t, 3, result.Embeddings)
	assert.Positive(t, embedder.CallCount())
	assert.Contains(t, progress.String(), "Reembedding complete")

	count, err := a.VectorStore().CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestAnalyzer_NilProgress(t *testing.T) {
	a, _ := newTestAnalyzer(t)
	ingest(t, a)

	reembedder, err := a.NewReembedder(nil)
	require.NoError(t, err)
	_, err = reembedder.Run(context.Background())
	assert.NoError(t, err)
}
