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


// Package storage provides the storage abstraction layer for netsight.
//
// This package defines the store interfaces that decouple persistence from the
// ingestion and query logic, so that different backends can be used
// interchangeably:
//
//   - GraphStore: people, companies and WORKS_AT edges
//   - VectorStore: one profile embedding per person, with similarity search
//   - ManifestRepository: the description of the last completed ingestion
//
// Backends live in sub-packages. storage/badger is an embedded store used by
// default and in tests; storage/neo4j and storage/pgvector talk to external
// services.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to enforce the abstraction:
//
//	graph, err := neo4j.NewGraphStore(ctx, cfg)  // returns storage.GraphStore
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	stores, err := badger.NewMemoryStores()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stores.Close()
//
// # Thread Safety
//
// All store implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation
// and timeout support.
package storage
