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
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/netsight/ai"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of people to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of people)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Result summarizes a reembedding run.
type Result struct {
	People     int
	Embeddings int
	Elapsed    time.Duration
}

// Reembedder rebuilds every person's embedding, typically after the
// embedding model changes.
type Reembedder struct {
	graph     storage.GraphStore
	vector    storage.VectorStore
	manifests storage.ManifestRepository
	model     string
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *PersonIterator
	logger    *slog.Logger
}

// Option configures a Reembedder.
type Option func(*Reembedder)

// WithProgress sets where progress output is written (typically os.Stderr).
// A nil writer discards progress.
func WithProgress(w io.Writer) Option {
	return func(r *Reembedder) {
		if w == nil {
			w = io.Discard
		}
		r.progress = w
	}
}

// WithManifest records the new model and embedding count in the ingestion manifest.
func WithManifest(manifests storage.ManifestRepository, model string) Option {
	return func(r *Reembedder) {
		r.manifests = manifests
		r.model = model
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewReembedder creates a new reembedder.
func NewReembedder(graph storage.GraphStore, vector storage.VectorStore, embedder ai.Embedder, config *Config, opts ...Option) (*Reembedder, error) {
	if graph == nil {
		return nil, ErrGraphStoreRequired
	}
	if vector == nil {
		return nil, ErrVectorStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	r := &Reembedder{
		graph:     graph,
		vector:    vector,
		config:    config,
		progress:  io.Discard,
		processor: NewBatchProcessor(vector, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewPersonIterator(graph, config.BatchSize),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reembedder")

	return r, nil
}

// Run clears the vector index and embeds every person in the graph again.
// Vectors from different models are not comparable, so the index is rebuilt
// from scratch; a failed run leaves a partial index.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	total, err := r.graph.CountPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count people: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No people found in database (0 records)\n")
		return &Result{}, nil
	}

	if err := r.vector.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset vector store: %w", err)
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d people (batch size: %d)\n",
		total, r.config.BatchSize)
	r.logger.Info("reembedding started", "people", total, "batch_size", r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	result := &Result{}
	err = r.iterator.ForEach(ctx, func(people []*core.Person) error {
		n, err := r.processor.Process(ctx, people)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		result.People += len(people)
		result.Embeddings += n
		tracker.Update(result.People)
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding failed", "processed", result.People, "err", err)
		return result, err
	}

	tracker.Finish()
	result.Elapsed = tracker.Elapsed()

	if err := r.updateManifest(ctx, result.Embeddings); err != nil {
		return result, err
	}

	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d people in %v (%.1f people/sec)\n",
		result.People, result.Elapsed.Round(time.Second), float64(result.People)/result.Elapsed.Seconds())
	r.logger.Info("reembedding complete", "people", result.People, "elapsed", result.Elapsed)

	return result, nil
}

func (r *Reembedder) updateManifest(ctx context.Context, embeddings int) error {
	if r.manifests == nil {
		return nil
	}
	manifest, err := r.manifests.LoadManifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if manifest == nil {
		manifest = &core.Manifest{}
	}
	manifest.Embeddings = embeddings
	if r.model != "" {
		manifest.Model = r.model
	}
	manifest.CompletedAt = time.Now().UTC()
	if err := r.manifests.SaveManifest(ctx, manifest); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}
