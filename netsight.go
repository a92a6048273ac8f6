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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/netsight/ai"
	"github.com/poiesic/netsight/ai/openai"
	"github.com/poiesic/netsight/config"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/ingestion"
	"github.com/poiesic/netsight/reembed"
	"github.com/poiesic/netsight/search"
	"github.com/poiesic/netsight/storage"
	"github.com/poiesic/netsight/storage/badger"
	"github.com/poiesic/netsight/storage/neo4j"
	"github.com/poiesic/netsight/storage/pgvector"
)

// connectTimeout bounds connecting to external storage services.
const connectTimeout = 30 * time.Second

// Analyzer wires the configured stores and AI provider together and hands out
// ingestion pipelines, query orchestrators and reembedders that share them.
type Analyzer struct {
	graph     storage.GraphStore
	vector    storage.VectorStore
	manifests storage.ManifestRepository
	backend   *badger.Backend // nil when no badger store is configured
	provider  ai.AIProvider
	config    *config.Config
	logger    *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerOptions)

type analyzerOptions struct {
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithAIProvider replaces the OpenAI-compatible provider built from the configuration.
// The Analyzer takes ownership and closes it.
func WithAIProvider(provider ai.AIProvider) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.logger = logger
	}
}

// NewAnalyzer opens the graph and vector backends named by cfg and the AI provider.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &analyzerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	a := &Analyzer{
		config: cfg,
		logger: options.logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := a.openStores(ctx); err != nil {
		a.closeStores()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(aiConfig(cfg.AI))
		if err != nil {
			a.closeStores()
			return nil, err
		}
	}
	a.provider = provider

	return a, nil
}

func (a *Analyzer) openStores(ctx context.Context) error {
	sc := a.config.Storage

	if sc.Graph == config.BackendBadger || sc.Vector == config.BackendBadger {
		backend, err := badger.OpenBackendWithLogger(sc.Path, false, a.logger)
		if err != nil {
			return fmt.Errorf("opening badger at %s: %w", sc.Path, err)
		}
		a.backend = backend
	}

	switch sc.Graph {
	case config.BackendNeo4j:
		graph, err := neo4j.NewGraphStore(ctx, neo4j.Config{
			URI:      sc.Neo4j.URI,
			Username: sc.Neo4j.Username,
			Password: sc.Neo4j.Password,
			Database: sc.Neo4j.Database,
		}, neo4j.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.graph = graph
		manifests, err := neo4j.NewManifestRepository(graph)
		if err != nil {
			return err
		}
		a.manifests = manifests
	default:
		a.graph = badger.NewGraphStore(a.backend)
		a.manifests = badger.NewManifestRepository(a.backend)
	}

	switch sc.Vector {
	case config.BackendPgvector:
		vector, err := pgvector.NewVectorStore(ctx, pgvector.Config{
			DSN:       sc.Postgres.DSN,
			Table:     sc.Postgres.Table,
			Dimension: sc.Postgres.Dimension,
		}, pgvector.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.vector = vector
	default:
		a.vector = badger.NewVectorStore(a.backend)
	}
	return nil
}

func aiConfig(c config.AIConfig) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithChatHost(c.ChatHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithChatModel(c.ChatModel),
		ai.WithAPIKey(c.APIKey),
		ai.WithSummaryMaxTokens(c.SummaryMaxTokens),
	)
}

// Close releases the AI provider and every store.
func (a *Analyzer) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	return a.closeStores()
}

func (a *Analyzer) closeStores() error {
	var errs []error
	if a.vector != nil {
		if err := a.vector.Close(); err != nil {
			a.logger.Error("error closing vector store", "err", err)
			errs = append(errs, err)
		}
	}
	if a.graph != nil {
		if err := a.graph.Close(); err != nil {
			a.logger.Error("error closing graph store", "err", err)
			errs = append(errs, err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config returns the configuration the Analyzer was built from.
func (a *Analyzer) Config() *config.Config {
	return a.config
}

// GraphStore returns the contacts graph.
func (a *Analyzer) GraphStore() storage.GraphStore {
	return a.graph
}

// VectorStore returns the embedding store.
func (a *Analyzer) VectorStore() storage.VectorStore {
	return a.vector
}

// NewPipeline builds an ingestion pipeline from the ingestion settings.
// Extra options are applied after the configured ones. Call Release when done.
func (a *Analyzer) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ic := a.config.Ingestion
	base := []ingestion.Option{
		ingestion.WithLogger(a.logger),
		ingestion.WithPoolSize(ic.Workers),
		ingestion.WithBatchSize(ic.BatchSize),
		ingestion.WithRetry(ic.MaxRetries, ic.RetryDelay),
	}
	if ic.RequestsPerSecond > 0 {
		base = append(base, ingestion.WithRateLimit(ic.RequestsPerSecond, ic.Burst))
	}
	return ingestion.NewPipeline(a.graph, a.vector, a.manifests, a.provider, append(base, opts...)...)
}

// NewOrchestrator builds a query orchestrator from the search settings.
func (a *Analyzer) NewOrchestrator(opts ...search.Option) (*search.Orchestrator, error) {
	sc := a.config.Search

	graph, err := search.NewGraphClient(a.graph)
	if err != nil {
		return nil, err
	}
	vector, err := search.NewVectorClient(a.provider.Embedder(), a.vector, sc.MinSimilarity, sc.CacheSize)
	if err != nil {
		return nil, err
	}

	base := []search.Option{
		search.WithLogger(a.logger),
		search.WithConfig(search.Config{
			TopK:                  sc.TopK,
			SummaryCandidateCount: sc.SummaryCandidateCount,
			SummarizerTimeout:     sc.SummarizerTimeout,
			BreakerFailures:       sc.BreakerFailures,
			BreakerCooldown:       sc.BreakerCooldown,
		}),
		search.WithSummarizer(a.provider.Summarizer()),
	}
	if a.config.AI.ExtractFilters {
		base = append(base, search.WithFilterExtractor(a.provider.FilterExtractor()))
	}
	return search.NewOrchestrator(graph, vector, append(base, opts...)...)
}

// NewReembedder builds a reembedder that writes progress to w (nil for none)
// and records the provider's embedding model in the manifest.
func (a *Analyzer) NewReembedder(w io.Writer) (*reembed.Reembedder, error) {
	ic := a.config.Ingestion
	rc := reembed.DefaultConfig()
	rc.BatchSize = ic.BatchSize
	rc.MaxRetries = ic.MaxRetries
	rc.RetryDelay = ic.RetryDelay

	return reembed.NewReembedder(a.graph, a.vector, a.provider.Embedder(), rc,
		reembed.WithProgress(w),
		reembed.WithManifest(a.manifests, a.provider.EmbeddingModel()),
		reembed.WithLogger(a.logger),
	)
}

// Manifest returns the description of the last completed ingestion, or nil if none.
func (a *Analyzer) Manifest(ctx context.Context) (*core.Manifest, error) {
	return a.manifests.LoadManifest(ctx)
}

// Status summarizes what is currently stored.
type Status struct {
	People     int
	Companies  int
	Embeddings int
	Manifest   *core.Manifest // nil before the first ingestion
}

// Status counts the stored people, companies and embeddings.
func (a *Analyzer) Status(ctx context.Context) (*Status, error) {
	people, err := a.graph.CountPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting people: %w", err)
	}
	companies, err := a.graph.CountCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting companies: %w", err)
	}
	embeddings, err := a.vector.CountEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting embeddings: %w", err)
	}
	manifest, err := a.Manifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	return &Status{
		People:     people,
		Companies:  companies,
		Embeddings: embeddings,
		Manifest:   manifest,
	}, nil
}
