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


package pgvector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// Config holds connection and schema settings for the Postgres vector store.
type Config struct {
	DSN       string
	Table     string // defaults to DefaultTable
	Dimension int    // embedding width; 0 leaves the column untyped
}

// VectorStore implements storage.VectorStore on Postgres with the pgvector extension.
type VectorStore struct {
	pool      *pgxpool.Pool
	queries   queries
	dimension int
	logger    *slog.Logger
}

var _ storage.VectorStore = (*VectorStore)(nil)

// Option configures a VectorStore.
type Option func(*VectorStore)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *VectorStore) {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
	}
}

// NewVectorStore connects to Postgres, registers the vector type and ensures the table exists.
func NewVectorStore(ctx context.Context, config Config, opts ...Option) (storage.VectorStore, error) {
	if config.DSN == "" {
		return nil, errors.New("pgvector: DSN is required")
	}
	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres DSN: %w", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	v := &VectorStore{
		queries:   newQueries(config.Table, config.Dimension),
		dimension: config.Dimension,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "pgvector")

	// The extension must exist before AfterConnect can register its type
	if err := createExtension(ctx, config.DSN, v.queries.createExtension); err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, v.queries.createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating embeddings table: %w", err)
	}
	v.pool = pool
	return v, nil
}

func createExtension(ctx context.Context, dsn, stmt string) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (v *VectorStore) Close() error {
	v.pool.Close()
	return nil
}

// UpsertEmbeddings inserts or replaces embeddings keyed by person ID in one batch.
func (v *VectorStore) UpsertEmbeddings(ctx context.Context, embeddings ...*core.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, embedding := range embeddings {
		if err := v.checkDimension(embedding.Vector); err != nil {
			return fmt.Errorf("person %d: %w", embedding.PersonId, err)
		}
		batch.Queue(v.queries.upsert, int64(embedding.PersonId), pgv.NewVector(embedding.Vector), embedding.SourceText)
	}
	if err := v.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting embeddings: %w", err)
	}
	return nil
}

// GetEmbedding returns the embedding of a person.
func (v *VectorStore) GetEmbedding(ctx context.Context, personID core.ID) (*core.Embedding, error) {
	var (
		vec  pgv.Vector
		text string
	)
	err := v.pool.QueryRow(ctx, v.queries.get, int64(personID)).Scan(&vec, &text)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: embedding for person %d", storage.ErrNotFound, personID)
	}
	if err != nil {
		return nil, err
	}
	return &core.Embedding{PersonId: personID, Vector: vec.Slice(), SourceText: text}, nil
}

// FindSimilar returns people whose cosine similarity with vector is at least minSimilarity.
func (v *VectorStore) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]core.SimilarityMatch, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	if err := v.checkDimension(vector); err != nil {
		return nil, err
	}

	rows, err := v.pool.Query(ctx, v.queries.findSimilar, pgv.NewVector(vector), float64(minSimilarity), limit)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.SimilarityMatch, error) {
		var (
			id    int64
			score float64
		)
		if err := row.Scan(&id, &score); err != nil {
			return core.SimilarityMatch{}, err
		}
		return core.SimilarityMatch{PersonId: core.ID(id), Score: float32(score)}, nil
	})
}

// CountEmbeddings returns the number of stored embeddings.
func (v *VectorStore) CountEmbeddings(ctx context.Context) (int, error) {
	var n int64
	if err := v.pool.QueryRow(ctx, v.queries.count).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// Reset removes every embedding.
func (v *VectorStore) Reset(ctx context.Context) error {
	_, err := v.pool.Exec(ctx, v.queries.reset)
	return err
}

func (v *VectorStore) checkDimension(vector []float32) error {
	return checkDimension(v.dimension, vector)
}

func checkDimension(dimension int, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", storage.ErrDimensionMismatch)
	}
	if dimension > 0 && len(vector) != dimension {
		return fmt.Errorf("%w: got %d dimensions, table stores %d",
			storage.ErrDimensionMismatch, len(vector), dimension)
	}
	return nil
}
