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


package neo4j

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	neo "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// Config holds connection settings for a Neo4j server.
type Config struct {
	URI      string
	Username string
	Password string
	Database string // empty selects the server default
}

// GraphStore implements storage.GraphStore on Neo4j.
//
// People and companies are nodes keyed by id and normalized key; the current
// employer is a WORKS_AT relationship.
type GraphStore struct {
	driver   neo.DriverWithContext
	database string
	closed   atomic.Bool
	logger   *slog.Logger
}

var _ storage.GraphStore = (*GraphStore)(nil)

// Option configures a GraphStore.
type Option func(*GraphStore)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *GraphStore) {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
	}
}

// NewGraphStore connects to Neo4j, verifies connectivity and ensures the schema.
func NewGraphStore(ctx context.Context, config Config, opts ...Option) (storage.GraphStore, error) {
	return newGraphStore(ctx, config, opts...)
}

func newGraphStore(ctx context.Context, config Config, opts ...Option) (*GraphStore, error) {
	if config.URI == "" {
		return nil, errors.New("neo4j: URI is required")
	}
	driver, err := neo.NewDriverWithContext(config.URI, neo.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	g := &GraphStore{
		driver:   driver,
		database: config.Database,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "neo4j")

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j at %s: %w", config.URI, err)
	}
	if err := g.ensureSchema(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return g, nil
}

func (g *GraphStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := g.write(ctx, stmt, nil); err != nil {
			return fmt.Errorf("creating neo4j schema: %w", err)
		}
	}
	return nil
}

// Close releases the driver and its connections.
func (g *GraphStore) Close() error {
	if g.closed.Swap(true) {
		return nil
	}
	return g.driver.Close(context.Background())
}

// AddPeople writes people along with their Company nodes and WORKS_AT edges.
func (g *GraphStore) AddPeople(ctx context.Context, people ...*core.Person) ([]*core.Person, error) {
	if len(people) == 0 {
		return people, nil
	}
	now := time.Now().UTC()
	rows := make([]any, 0, len(people))
	for _, person := range people {
		if err := core.ValidatePerson(person); err != nil {
			return nil, err
		}
		if person.InsertedAt.IsZero() {
			person.InsertedAt = now
		}
		rows = append(rows, personRow(person))
	}
	if _, err := g.write(ctx, addPeopleQuery, map[string]any{"rows": rows}); err != nil {
		return nil, err
	}
	return people, nil
}

// FindPeople returns every person matching pred.
func (g *GraphStore) FindPeople(ctx context.Context, pred storage.Predicate) ([]*core.Person, error) {
	query, params, err := buildFindQuery(pred)
	if err != nil {
		return nil, err
	}
	return g.readPeople(ctx, query, params)
}

// GetPerson retrieves a single person by ID.
func (g *GraphStore) GetPerson(ctx context.Context, id core.ID) (*core.Person, error) {
	people, err := g.readPeople(ctx, getPersonQuery, map[string]any{"id": nodeID(id)})
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, storage.ErrNotFound
	}
	return people[0], nil
}

// GetPeople retrieves multiple people by their IDs, skipping missing ones.
func (g *GraphStore) GetPeople(ctx context.Context, ids ...core.ID) ([]*core.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := make([]int64, len(ids))
	for i, id := range ids {
		params[i] = nodeID(id)
	}
	return g.readPeople(ctx, getPeopleQuery, map[string]any{"ids": params})
}

// ListPeople pages through people in ascending ID order.
func (g *GraphStore) ListPeople(ctx context.Context, afterID core.ID, limit int) ([]*core.Person, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	return g.readPeople(ctx, listPeopleQuery, map[string]any{
		"after": afterSeq(afterID),
		"limit": int64(limit),
	})
}

// CountPeople returns the number of Person nodes.
func (g *GraphStore) CountPeople(ctx context.Context) (int, error) {
	return g.count(ctx, countPeopleQuery)
}

// CountCompanies returns the number of Company nodes.
func (g *GraphStore) CountCompanies(ctx context.Context) (int, error) {
	return g.count(ctx, countCompaniesQuery)
}

// Reset removes every person, company and WORKS_AT edge.
func (g *GraphStore) Reset(ctx context.Context) error {
	_, err := g.write(ctx, resetQuery, nil)
	return err
}

// Helper methods

func (g *GraphStore) session(ctx context.Context, mode neo.AccessMode) neo.SessionWithContext {
	return g.driver.NewSession(ctx, neo.SessionConfig{AccessMode: mode, DatabaseName: g.database})
}

func (g *GraphStore) read(ctx context.Context, query string, params map[string]any) ([]*neo.Record, error) {
	return g.run(ctx, neo.AccessModeRead, query, params)
}

func (g *GraphStore) write(ctx context.Context, query string, params map[string]any) ([]*neo.Record, error) {
	return g.run(ctx, neo.AccessModeWrite, query, params)
}

// run executes query in a managed transaction, which the driver retries on transient errors.
func (g *GraphStore) run(ctx context.Context, mode neo.AccessMode, query string, params map[string]any) ([]*neo.Record, error) {
	if g.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	session := g.session(ctx, mode)
	defer func() {
		if err := session.Close(ctx); err != nil {
			g.logger.Warn("error closing session", "err", err)
		}
	}()

	work := func(tx neo.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	}

	var (
		out any
		err error
	)
	if mode == neo.AccessModeWrite {
		out, err = session.ExecuteWrite(ctx, work)
	} else {
		out, err = session.ExecuteRead(ctx, work)
	}
	if err != nil {
		return nil, err
	}
	records, _ := out.([]*neo.Record)
	return records, nil
}

func (g *GraphStore) readPeople(ctx context.Context, query string, params map[string]any) ([]*core.Person, error) {
	records, err := g.read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	people := make([]*core.Person, 0, len(records))
	for _, record := range records {
		node, _, err := neo.GetRecordValue[neo.Node](record, "p")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
		}
		person, err := personFromProps(node.Props)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	return people, nil
}

func (g *GraphStore) count(ctx context.Context, query string) (int, error) {
	records, err := g.read(ctx, query, nil)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	n, _, err := neo.GetRecordValue[int64](records[0], "n")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return int(n), nil
}
