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

	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

const (
	// DefaultBatchSize is the default number of people to fetch in each batch
	DefaultBatchSize = 100
)

// PersonIterator pages through every person in a graph store in ID order.
type PersonIterator struct {
	store     storage.GraphStore
	batchSize int
}

// NewPersonIterator creates a new person iterator.
// batchSize: number of people to fetch in each page (defaults when <= 0)
func NewPersonIterator(store storage.GraphStore, batchSize int) *PersonIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &PersonIterator{
		store:     store,
		batchSize: batchSize,
	}
}

// ForEach calls fn with each page of people.
// Iteration stops on the first error from fn or the store.
// Context cancellation is checked between pages.
func (it *PersonIterator) ForEach(ctx context.Context, fn func([]*core.Person) error) error {
	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := it.store.ListPeople(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		if err := fn(page); err != nil {
			return err
		}

		if len(page) < it.batchSize {
			return nil
		}
		after = page[len(page)-1].Id
	}
}
