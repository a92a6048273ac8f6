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


package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/netsight/ai"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/reembed"
	"github.com/poiesic/netsight/storage"
	"golang.org/x/time/rate"
)

// Result summarizes one ingestion run.
type Result struct {
	Source     string
	Rows       int // rows read, including skipped ones
	People     int
	Companies  int
	Embeddings int
	Skipped    int // invalid rows
	Duplicates int // rows whose person was already seen
	Errors     []RowError
	Elapsed    time.Duration
}

// Pipeline rebuilds the contacts graph and its embedding index from a
// contacts export. Each run replaces everything previously ingested.
type Pipeline struct {
	graph         storage.GraphStore
	vector        storage.VectorStore
	manifests     storage.ManifestRepository
	embedder      ai.Embedder
	model         string
	embeddingPool *ants.Pool
	embeddingProc processor
	limiter       *rate.Limiter
	batchSize     int
	maxRetries    int
	retryDelay    time.Duration
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithBatchSize sets how many people are written or embedded per call.
// Default is 64.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithRateLimit caps embedding requests per second. A value <= 0 disables the limit.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(p *Pipeline) error {
		if requestsPerSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		return nil
	}
}

// WithRetry sets the attempts and base backoff delay for embedding calls.
// Default is 3 attempts starting at one second.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return reembed.ErrInvalidMaxAttempts
		}
		p.maxRetries = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	graph storage.GraphStore,
	vector storage.VectorStore,
	manifests storage.ManifestRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vector == nil {
		return nil, ErrVectorStoreRequired
	}
	if manifests == nil {
		return nil, ErrManifestRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		graph:         graph,
		vector:        vector,
		manifests:     manifests,
		embedder:      provider.Embedder(),
		model:         provider.EmbeddingModel(),
		embeddingPool: pool,
		limiter:       rate.NewLimiter(rate.Inf, 1),
		batchSize:     64,
		maxRetries:    3,
		retryDelay:    time.Second,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	// Processors are built after options so they see the final config
	batch := reembed.NewBatchProcessor(vector, p.embedder, p.maxRetries, p.retryDelay)
	embeddingProc, err := newEmbeddingProcessor(batch, p.limiter, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// IngestFile reads a contacts export from path and ingests it.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Result, error) {
	connections, rowErrors, err := ReadConnectionsFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.run(ctx, path, connections, rowErrors)
}

// IngestReader reads a contacts export from r and ingests it under the given source name.
func (p *Pipeline) IngestReader(ctx context.Context, source string, r io.Reader) (*Result, error) {
	connections, rowErrors, err := ReadConnections(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return p.run(ctx, source, connections, rowErrors)
}

// Run replaces the graph and embedding index with the given connections.
//
// Invalid connections are skipped and reported in Result.Errors. Connections
// that resolve to an already seen person are counted as duplicates; the first
// occurrence wins. Run is not resumable: a failed run leaves partial data
// that the next run replaces.
func (p *Pipeline) Run(ctx context.Context, source string, rows []core.Connection) (*Result, error) {
	return p.run(ctx, source, rows, nil)
}

func (p *Pipeline) run(ctx context.Context, source string, rows []core.Connection, readErrors []RowError) (*Result, error) {
	start := time.Now()
	logger := p.logger.With("source", source)

	result := &Result{
		Source:  source,
		Rows:    len(rows) + len(readErrors),
		Skipped: len(readErrors),
		Errors:  append([]RowError(nil), readErrors...),
	}

	people := p.collectPeople(rows, result)
	logger.Info("ingestion started",
		"rows", result.Rows,
		"people", len(people),
		"skipped", result.Skipped,
		"duplicates", result.Duplicates)

	if err := p.graph.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset graph: %w", err)
	}
	if err := p.vector.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset vector store: %w", err)
	}

	written, err := p.writeGraph(ctx, people)
	if err != nil {
		return nil, err
	}
	result.People = len(written)

	embedded, err := p.embed(ctx, written)
	result.Embeddings = embedded
	if err != nil {
		logger.Error("embedding failed", "embedded", embedded, "err", err)
		return nil, err
	}

	companies, err := p.graph.CountCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	result.Companies = companies

	manifest := &core.Manifest{
		Source:      source,
		Rows:        result.Rows,
		People:      result.People,
		Companies:   result.Companies,
		Embeddings:  result.Embeddings,
		Skipped:     result.Skipped,
		Model:       p.model,
		CompletedAt: time.Now().UTC(),
	}
	if err := p.manifests.SaveManifest(ctx, manifest); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	result.Elapsed = time.Since(start)
	logger.Info("ingestion complete",
		"people", result.People,
		"companies", result.Companies,
		"embeddings", result.Embeddings,
		"elapsed", result.Elapsed)

	return result, nil
}

// collectPeople validates and dedupes connections in input order.
func (p *Pipeline) collectPeople(rows []core.Connection, result *Result) []*core.Person {
	people := make([]*core.Person, 0, len(rows))
	seen := make(map[core.ID]int, len(rows))

	for i := range rows {
		conn := &rows[i]
		line := conn.Line
		if line == 0 {
			line = i + 1
		}
		if err := core.ValidateConnection(conn); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: line, Err: err})
			continue
		}

		person := conn.Person()
		if first, dup := seen[person.Id]; dup {
			result.Duplicates++
			p.logger.Debug("duplicate connection", "name", conn.FullName, "first_line", first)
			continue
		}
		seen[person.Id] = line
		people = append(people, person)
	}
	return people
}

// writeGraph adds people to the graph in batches.
func (p *Pipeline) writeGraph(ctx context.Context, people []*core.Person) ([]*core.Person, error) {
	written := make([]*core.Person, 0, len(people))
	for batch := range slices.Chunk(people, p.batchSize) {
		added, err := p.graph.AddPeople(ctx, batch...)
		if err != nil {
			return nil, fmt.Errorf("failed to write people: %w", err)
		}
		written = append(written, added...)
	}
	return written, nil
}

// embed fans batches out to the worker pool and waits for all of them.
// The first failure cancels the remaining batches.
func (p *Pipeline) embed(ctx context.Context, people []*core.Person) (int, error) {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		embedded atomic.Int64
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for batch := range slices.Chunk(people, p.batchSize) {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := p.embeddingPool.Submit(func() {
			defer wg.Done()
			n, err := p.embeddingProc.process(ctx, batch)
			if err != nil {
				fail(err)
				return
			}
			embedded.Add(int64(n))
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to schedule embedding batch: %w", err))
		}
	}
	wg.Wait()

	if firstErr == nil {
		firstErr = parent.Err()
	}
	if firstErr != nil {
		return int(embedded.Load()), fmt.Errorf("failed to embed people: %w", firstErr)
	}
	return int(embedded.Load()), nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
