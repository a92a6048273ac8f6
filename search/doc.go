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


// Package search answers hybrid queries over the contacts graph.
//
// The Orchestrator combines two sources of matches:
//   - exact structured filters (company, name, connection date) from a GraphClient
//   - semantic similarity to free text from a VectorClient
//
// Both searches run concurrently. Their results are fused into a single
// deduplicated list ranked by tier (both sources, graph only, semantic only)
// and then by score or connection date. An optional Summarizer describes the
// top results in prose; a failed summary never fails the query.
package search
