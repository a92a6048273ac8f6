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


package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/netsight/core"
)

// Predicate is a structured, exact-match filter over people.
// Zero-valued fields do not constrain the result. All set fields must match.
type Predicate struct {
	// CompanyKey matches people whose normalized employer equals this key.
	CompanyKey string

	// NameContains matches people whose name contains this text, case-insensitively.
	NameContains string

	// ConnectedAfter and ConnectedBefore bound ConnectedOn, both inclusive.
	ConnectedAfter  time.Time
	ConnectedBefore time.Time
}

// IsEmpty reports whether the predicate has no constraints.
func (p Predicate) IsEmpty() bool {
	return p.CompanyKey == "" && p.NameContains == "" &&
		p.ConnectedAfter.IsZero() && p.ConnectedBefore.IsZero()
}

// Validate checks the predicate for contradictory bounds.
func (p Predicate) Validate() error {
	if !p.ConnectedAfter.IsZero() && !p.ConnectedBefore.IsZero() && p.ConnectedAfter.After(p.ConnectedBefore) {
		return fmt.Errorf("%w: connected-after %s is later than connected-before %s",
			ErrInvalidQuery, p.ConnectedAfter.Format(time.DateOnly), p.ConnectedBefore.Format(time.DateOnly))
	}
	return nil
}

// Matches reports whether a person satisfies every constraint of the predicate.
// People without a connection date never match a date bound.
// Backends that cannot express a constraint natively use it as a post-filter.
func (p Predicate) Matches(person *core.Person) bool {
	if person == nil {
		return false
	}
	if p.CompanyKey != "" && person.CompanyKey() != p.CompanyKey {
		return false
	}
	if p.NameContains != "" && !strings.Contains(strings.ToLower(person.Name), strings.ToLower(p.NameContains)) {
		return false
	}
	hasDateBound := !p.ConnectedAfter.IsZero() || !p.ConnectedBefore.IsZero()
	if hasDateBound && person.ConnectedOn.IsZero() {
		return false
	}
	if !p.ConnectedAfter.IsZero() && person.ConnectedOn.Before(core.Day(p.ConnectedAfter)) {
		return false
	}
	if !p.ConnectedBefore.IsZero() && person.ConnectedOn.After(core.Day(p.ConnectedBefore)) {
		return false
	}
	return true
}

// GraphStore persists the contacts graph: people, companies and WORKS_AT edges.
// Implementations must be thread-safe and support concurrent access.
type GraphStore interface {
	// AddPeople writes people, creating their Company nodes and WORKS_AT edges.
	// Existing people with the same ID are replaced.
	// Sets InsertedAt if not already set.
	AddPeople(ctx context.Context, people ...*core.Person) ([]*core.Person, error)

	// FindPeople returns every person matching the predicate, in no particular order.
	// Returns ErrInvalidQuery for an empty or contradictory predicate.
	FindPeople(ctx context.Context, pred Predicate) ([]*core.Person, error)

	// GetPerson retrieves a single person by ID.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id core.ID) (*core.Person, error)

	// GetPeople retrieves multiple people by their IDs.
	// Returns only the people that exist (no error for missing people).
	GetPeople(ctx context.Context, ids ...core.ID) ([]*core.Person, error)

	// ListPeople pages through people in ascending ID order, starting after afterID.
	// Pass 0 to start from the beginning.
	ListPeople(ctx context.Context, afterID core.ID, limit int) ([]*core.Person, error)

	// CountPeople returns the number of Person nodes.
	CountPeople(ctx context.Context) (int, error)

	// CountCompanies returns the number of Company nodes.
	CountCompanies(ctx context.Context) (int, error)

	// Reset removes every node and edge.
	Reset(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// VectorStore persists one embedding per person and answers similarity queries.
type VectorStore interface {
	// UpsertEmbeddings inserts or replaces embeddings keyed by person ID.
	UpsertEmbeddings(ctx context.Context, embeddings ...*core.Embedding) error

	// GetEmbedding returns the embedding of a person.
	// Returns ErrNotFound if the person has none.
	GetEmbedding(ctx context.Context, personID core.ID) (*core.Embedding, error)

	// FindSimilar finds people whose embedding is similar to the given vector.
	// Returns matches with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]core.SimilarityMatch, error)

	// CountEmbeddings returns the number of stored embeddings.
	CountEmbeddings(ctx context.Context) (int, error)

	// Reset removes every embedding.
	Reset(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// ManifestRepository stores the description of the last completed ingestion.
type ManifestRepository interface {
	// SaveManifest replaces the stored manifest.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// LoadManifest returns the stored manifest, or nil if no ingestion has completed.
	LoadManifest(ctx context.Context) (*core.Manifest, error)
}
