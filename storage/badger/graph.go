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


package badger

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// GraphStore implements storage.GraphStore for BadgerDB.
//
// People are stored under their ID, companies under theirs, and the WORKS_AT
// edge and connection date are kept as secondary indices used by FindPeople.
type GraphStore struct {
	backend *Backend
}

var _ storage.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a new GraphStore.
func NewGraphStore(backend *Backend) *GraphStore {
	return &GraphStore{
		backend: backend,
	}
}

// Close is a no-op; the backend is owned by the caller.
func (g *GraphStore) Close() error {
	return nil
}

// AddPeople writes people along with their Company nodes and WORKS_AT edges.
func (g *GraphStore) AddPeople(ctx context.Context, people ...*core.Person) ([]*core.Person, error) {
	if len(people) == 0 {
		return people, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := g.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, person := range people {
			if err := core.ValidatePerson(person); err != nil {
				return err
			}
			if person.InsertedAt.IsZero() {
				person.InsertedAt = now
			}

			// Clear indices of the record being replaced
			key := makePersonKey(person.Id)
			old, err := readPerson(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := deletePersonIndices(tx, old); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalPerson(person)); err != nil {
				return err
			}

			if company := core.NewCompany(person.Company); company != nil {
				if err := mergeCompany(tx, company); err != nil {
					return err
				}
				edgeKey := makeWorksAtKey(company.Id, person.Id)
				if err := tx.Set(edgeKey, storage.MarshalID(person.Id)); err != nil {
					return err
				}
			}

			if indexableDate(person.ConnectedOn) {
				dateKey := makePersonDateKey(person.ConnectedOn, person.Id)
				if err := tx.Set(dateKey, storage.MarshalID(person.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return people, nil
}

// FindPeople returns every person matching pred.
// The most selective index is scanned and the remaining constraints applied as a post-filter.
func (g *GraphStore) FindPeople(ctx context.Context, pred storage.Predicate) ([]*core.Person, error) {
	if pred.IsEmpty() {
		return nil, storage.ErrInvalidQuery
	}
	if err := pred.Validate(); err != nil {
		return nil, err
	}

	var results []*core.Person
	collect := func(person *core.Person) {
		if pred.Matches(person) {
			results = append(results, person)
		}
	}

	err := g.backend.WithTx(func(tx *badger.Txn) error {
		switch {
		case pred.CompanyKey != "":
			prefix := makePartialWorksAtKey(core.CompanyIDFromKey(pred.CompanyKey))
			return scanIndex(ctx, tx, prefix, collect)
		case !pred.ConnectedAfter.IsZero() || !pred.ConnectedBefore.IsZero():
			start := makePartialPersonDateKey(time.Unix(0, 0))
			if indexableDate(pred.ConnectedAfter) {
				start = makePartialPersonDateKey(core.Day(pred.ConnectedAfter))
			}
			var end []byte
			if !pred.ConnectedBefore.IsZero() {
				// Inclusive of the whole upper-bound day
				end = makePartialPersonDateKey(core.Day(pred.ConnectedBefore).Add(24*time.Hour - time.Microsecond))
			}
			return scanDateIndex(ctx, tx, start, end, collect)
		default:
			return scanPeople(ctx, tx, nil, 0, collect)
		}
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetPerson retrieves a single person by ID.
func (g *GraphStore) GetPerson(ctx context.Context, id core.ID) (*core.Person, error) {
	var result *core.Person
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPerson(tx, makePersonKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetPeople retrieves multiple people by their IDs, skipping missing ones.
func (g *GraphStore) GetPeople(ctx context.Context, ids ...core.ID) ([]*core.Person, error) {
	var result []*core.Person
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			person, err := readPerson(tx, makePersonKey(id))
			if err != nil {
				return err
			}
			if person != nil {
				result = append(result, person)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListPeople pages through people in ascending ID order.
func (g *GraphStore) ListPeople(ctx context.Context, afterID core.ID, limit int) ([]*core.Person, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	var results []*core.Person
	err := g.backend.WithTx(func(tx *badger.Txn) error {
		var start []byte
		if afterID != 0 {
			start = makePersonKey(afterID)
		}
		return scanPeople(ctx, tx, start, limit, func(p *core.Person) {
			if p.Id != afterID {
				results = append(results, p)
			}
		})
	}, false)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, err
}

// CountPeople returns the number of Person nodes.
func (g *GraphStore) CountPeople(ctx context.Context) (int, error) {
	return g.backend.countPrefix(ctx, personPrefix)
}

// CountCompanies returns the number of Company nodes.
func (g *GraphStore) CountCompanies(ctx context.Context) (int, error) {
	return g.backend.countPrefix(ctx, companyPrefix)
}

// Reset removes every person, company and index entry.
func (g *GraphStore) Reset(ctx context.Context) error {
	return g.backend.DropPrefixes(ctx, graphPrefixes...)
}

// Helper methods

// indexableDate reports whether a date can be placed in the big-endian date index.
func indexableDate(ts time.Time) bool {
	return !ts.IsZero() && ts.UnixMicro() >= 0
}

// mergeCompany writes a company node unless one with the same key already exists.
func mergeCompany(tx *badger.Txn, company *core.Company) error {
	key := makeCompanyKey(company.Id)
	_, err := tx.Get(key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return tx.Set(key, storage.MarshalCompany(company))
}

// deletePersonIndices removes the WORKS_AT edge and date index entries of a stored person.
func deletePersonIndices(tx *badger.Txn, person *core.Person) error {
	if companyID := person.CompanyID(); companyID != 0 {
		if err := tx.Delete(makeWorksAtKey(companyID, person.Id)); err != nil {
			return err
		}
	}
	if indexableDate(person.ConnectedOn) {
		if err := tx.Delete(makePersonDateKey(person.ConnectedOn, person.Id)); err != nil {
			return err
		}
	}
	return nil
}

// readPerson reads a person from the transaction.
// Returns nil, nil if the key doesn't exist.
func readPerson(tx *badger.Txn, key []byte) (*core.Person, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var person *core.Person
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		person, unmarshalErr = storage.UnmarshalPerson(val)
		return unmarshalErr
	})
	return person, err
}

// scanPeople iterates person records in ID order starting at start (or the beginning).
// A limit of 0 means no limit; one extra record is visited so callers can skip the cursor.
func scanPeople(ctx context.Context, tx *badger.Txn, start []byte, limit int, fn func(*core.Person)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(personPrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	if start == nil {
		start = []byte(personPrefix)
	}

	visited := 0
	for iter.Seek(start); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if limit > 0 && visited > limit {
			break
		}
		var person *core.Person
		err := iter.Item().Value(func(val []byte) error {
			var err error
			person, err = storage.UnmarshalPerson(val)
			return err
		})
		if err != nil {
			return err
		}
		fn(person)
		visited++
	}
	return nil
}

// scanIndex follows every ID-valued index entry under prefix.
func scanIndex(ctx context.Context, tx *badger.Txn, prefix []byte, fn func(*core.Person)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := followIndex(tx, iter.Item(), fn); err != nil {
			return err
		}
	}
	return nil
}

// scanDateIndex walks the connection-date index from start up to end (inclusive, nil for open).
func scanDateIndex(ctx context.Context, tx *badger.Txn, start, end []byte, fn func(*core.Person)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(personDatePrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Seek(start); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := iter.Item().Key()
		// Compare only the timestamp portion so every ID on the last day is included
		if end != nil && bytes.Compare(key[:len(end)], end) > 0 {
			break
		}
		if err := followIndex(tx, iter.Item(), fn); err != nil {
			return err
		}
	}
	return nil
}

func followIndex(tx *badger.Txn, item *badger.Item, fn func(*core.Person)) error {
	var personID core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		personID, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return err
	}

	person, err := readPerson(tx, makePersonKey(personID))
	if err != nil {
		return err
	}
	if person != nil {
		fn(person)
	}
	return nil
}
