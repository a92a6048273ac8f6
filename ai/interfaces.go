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


package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer writes a short natural-language overview of ranked query results.
// Summaries are best effort; callers treat errors as non-fatal.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize describes the candidates in the light of the user's query.
	// Candidates are given in rank order.
	Summarize(ctx context.Context, query string, candidates []Candidate) (string, error)
}

// FilterExtractor derives a structured filter from a free-text query.
// Implementations must be thread-safe for concurrent use.
type FilterExtractor interface {
	// ExtractFilter returns the constraints explicitly stated in text.
	// Returns an empty ExtractedFilter when the text states none.
	ExtractFilter(ctx context.Context, text string) (ExtractedFilter, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the Embedder, Summarizer and FilterExtractor instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Summarizer returns the result summarization service.
	Summarizer() Summarizer

	// FilterExtractor returns the query filter extraction service.
	FilterExtractor() FilterExtractor

	// EmbeddingModel names the model behind Embedder, recorded in ingestion manifests.
	EmbeddingModel() string

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
