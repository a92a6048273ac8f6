package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// similarProfileCount is how many similar profiles Details returns.
const similarProfileCount = 5

// SimilarProfile is a person semantically close to another.
type SimilarProfile struct {
	Person *core.Person
	Score  float64
}

// ConnectionDetails is everything known about one contact.
type ConnectionDetails struct {
	Person  *core.Person
	Company *core.Company // nil when the person has no employer
	Similar []SimilarProfile

	// Warnings records a failed similarity lookup.
	Warnings []Warning
}

// Details looks up a contact by name and finds similar profiles.
//
// Names match exactly (case-insensitive) first, then by substring, then by
// all words in any order. Returns storage.ErrNotFound if nobody matches.
// A failed similarity lookup is a warning, not an error.
func (o *Orchestrator) Details(ctx context.Context, name string) (*ConnectionDetails, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", storage.ErrInvalidQuery)
	}
	logger := o.logger.With("name", name)

	person, err := o.findByName(ctx, name)
	if err != nil {
		return nil, err
	}

	details := &ConnectionDetails{
		Person:  person,
		Company: core.NewCompany(person.Company),
		Similar: []SimilarProfile{},
	}

	hits, err := o.similarTo(ctx, person)
	if err != nil {
		logger.Warn("similar profile search failed", "err", err)
		details.Warnings = append(details.Warnings, Warning{Code: WarningSemanticDegraded, Message: err.Error()})
		return details, nil
	}

	ids := make([]core.ID, 0, len(hits))
	scores := make(map[core.ID]float64, len(hits))
	for _, hit := range hits {
		if hit.ID == person.Id || len(ids) == similarProfileCount {
			continue
		}
		ids = append(ids, hit.ID)
		scores[hit.ID] = hit.Score
	}
	if len(ids) == 0 {
		return details, nil
	}

	people, err := o.graph.GetPeople(ctx, ids...)
	if err != nil {
		logger.Warn("failed to load similar profiles", "err", err)
		details.Warnings = append(details.Warnings, Warning{Code: WarningHydration, Message: err.Error()})
		return details, nil
	}
	byID := make(map[core.ID]*core.Person, len(people))
	for _, p := range people {
		byID[p.Id] = p
	}
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			details.Similar = append(details.Similar, SimilarProfile{Person: p, Score: scores[id]})
		}
	}

	return details, nil
}

// similarTo searches near the person's stored embedding, or near a
// description of them when they have none.
func (o *Orchestrator) similarTo(ctx context.Context, person *core.Person) ([]Hit, error) {
	hits, err := o.vector.SearchSimilar(ctx, person.Id, similarProfileCount+1)
	if !errors.Is(err, storage.ErrNotFound) {
		return hits, err
	}
	o.logger.Debug("no stored embedding, searching by name", "person", person.Id)
	return o.vector.Search(ctx, "Find professionals similar to "+person.Name, similarProfileCount+1)
}

func (o *Orchestrator) findByName(ctx context.Context, name string) (*core.Person, error) {
	people, err := o.graph.FindPeople(ctx, Filter{NameContains: name})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFilterUnavailable, err)
	}
	if person := bestNameMatch(people, name); person != nil {
		return person, nil
	}

	// Word order may differ from the stored name, so widen to the first word.
	words := tokenizeName(name)
	if len(words) > 1 {
		people, err = o.graph.FindPeople(ctx, Filter{NameContains: words[0]})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFilterUnavailable, err)
		}
		if person := bestNameMatch(people, name); person != nil {
			return person, nil
		}
	}

	return nil, fmt.Errorf("%w: no contact named %q", storage.ErrNotFound, name)
}
