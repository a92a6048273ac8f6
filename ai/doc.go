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


// Package ai defines the model-backed services netsight depends on.
//
// Three services are involved in answering a contacts query:
//
//   - Embedder: turns profile blurbs and query text into vectors
//   - Summarizer: writes a short answer from the top-ranked candidates
//   - FilterExtractor: derives a company, name or date filter from free text
//
// AIProvider bundles them with the embedding model name, which ingestion
// records in the manifest.
//
// # Implementations
//
//   - ai/openai: OpenAI-compatible endpoints through langchaingo
//   - ai/mock: deterministic doubles for tests
//
// Production constructors return interfaces:
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())  // ai.AIProvider
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "staff engineer at Acme")
//	summary, err := provider.Summarizer().Summarize(ctx, query, candidates)
//
// Mock constructors return concrete types so tests can inject behavior
// and count calls.
package ai
