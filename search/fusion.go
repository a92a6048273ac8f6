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


package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/poiesic/netsight/core"
)

// Tier bases are spaced wider than the [0,1] semantic score so that tier
// always dominates the within-tier ordering.
const (
	bothTierBase         = 4.0
	graphOnlyTierBase    = 2.0
	semanticOnlyTierBase = 0.0
)

// fuse unions graph matches and semantic hits into one ranked, deduplicated list.
//
// Ordering:
//   - both: semantic score desc, then connection date desc
//   - graph only: connection date desc, then name, then ID
//   - semantic only: semantic score desc, then ID
//
// Semantic-only items carry no Person; the caller hydrates them.
func fuse(graph []*core.Person, hits []Hit) []ResultItem {
	items := make([]ResultItem, 0, len(graph)+len(hits))
	index := make(map[core.ID]int, len(graph)+len(hits))

	for _, person := range graph {
		if person == nil {
			continue
		}
		if _, seen := index[person.Id]; seen {
			continue
		}
		index[person.Id] = len(items)
		items = append(items, ResultItem{
			ID:         person.Id,
			Person:     person,
			GraphMatch: true,
		})
	}

	for _, hit := range hits {
		score := clampScore(hit.Score)
		if i, seen := index[hit.ID]; seen {
			// Keep the best score if a client ever returns duplicates
			if items[i].SemanticScore == nil || *items[i].SemanticScore < score {
				items[i].SemanticScore = &score
			}
			continue
		}
		index[hit.ID] = len(items)
		items = append(items, ResultItem{
			ID:            hit.ID,
			SemanticScore: &score,
		})
	}

	for i := range items {
		items[i].Tier, items[i].CombinedScore = scoreItem(&items[i])
	}

	slices.SortStableFunc(items, compareItems)
	return items
}

// scoreItem returns the tier and combined score of an item.
func scoreItem(item *ResultItem) (Tier, float64) {
	switch {
	case item.GraphMatch && item.SemanticScore != nil:
		return TierBoth, bothTierBase + *item.SemanticScore
	case item.GraphMatch:
		return TierGraphOnly, graphOnlyTierBase
	default:
		return TierSemanticOnly, semanticOnlyTierBase + *item.SemanticScore
	}
}

// compareItems orders items by tier, then by the tier's secondary keys.
func compareItems(a, b ResultItem) int {
	if c := cmp.Compare(b.Tier, a.Tier); c != 0 {
		return c
	}
	switch a.Tier {
	case TierBoth:
		if c := cmp.Compare(*b.SemanticScore, *a.SemanticScore); c != 0 {
			return c
		}
		if c := compareConnectedDesc(a.Person, b.Person); c != 0 {
			return c
		}
	case TierGraphOnly:
		if c := compareConnectedDesc(a.Person, b.Person); c != 0 {
			return c
		}
		if c := strings.Compare(strings.ToLower(a.Person.Name), strings.ToLower(b.Person.Name)); c != 0 {
			return c
		}
	case TierSemanticOnly:
		if c := cmp.Compare(*b.SemanticScore, *a.SemanticScore); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareConnectedDesc orders the most recent connection first.
func compareConnectedDesc(a, b *core.Person) int {
	return b.ConnectedOn.Compare(a.ConnectedOn)
}
