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
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/netsight/ai"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

// Orchestrator answers hybrid queries by combining exact graph filters with
// semantic similarity, and optionally summarizes the ranked result.
//
// An Orchestrator holds no per-query state and is safe for concurrent use.
type Orchestrator struct {
	graph      GraphClient
	vector     VectorClient
	summarizer ai.Summarizer
	extractor  ai.FilterExtractor
	breaker    *gobreaker.CircuitBreaker
	monitor    QueryMonitor
	config     Config
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithConfig replaces the default settings.
func WithConfig(config Config) Option {
	return func(o *Orchestrator) error {
		if err := config.Validate(); err != nil {
			return err
		}
		o.config = config
		return nil
	}
}

// WithSummarizer enables result summaries.
func WithSummarizer(summarizer ai.Summarizer) Option {
	return func(o *Orchestrator) error {
		o.summarizer = summarizer
		return nil
	}
}

// WithFilterExtractor lets the orchestrator derive a filter from text-only queries.
func WithFilterExtractor(extractor ai.FilterExtractor) Option {
	return func(o *Orchestrator) error {
		o.extractor = extractor
		return nil
	}
}

// WithMonitor sets hooks that observe every query.
func WithMonitor(monitor QueryMonitor) Option {
	return func(o *Orchestrator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		o.monitor = monitor
		return nil
	}
}

// NewOrchestrator creates a new orchestrator over the given clients.
func NewOrchestrator(graph GraphClient, vector VectorClient, opts ...Option) (*Orchestrator, error) {
	if graph == nil {
		return nil, ErrGraphClientRequired
	}
	if vector == nil {
		return nil, ErrVectorClientRequired
	}

	o := &Orchestrator{
		graph:   graph,
		vector:  vector,
		monitor: &noopMonitor{},
		config:  DefaultConfig(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "orchestrator")
	o.breaker = newSummaryBreaker(o.config, o.logger)

	return o, nil
}

// Query runs one hybrid query.
//
// The graph and vector searches run concurrently and are joined before fusion.
// A failed graph search with an explicit filter returns ErrFilterUnavailable.
// A failed vector search returns ErrSemanticSearchUnavailable when no explicit
// filter was given; otherwise the graph results are returned in degraded mode.
// Summaries never fail a query.
func (o *Orchestrator) Query(ctx context.Context, req Request) (*Response, error) {
	text := strings.TrimSpace(req.Text)
	resp := &Response{
		RequestID: uuid.New(),
		Query:     text,
		Filter:    req.Filter,
		Items:     []ResultItem{},
	}
	logger := o.logger.With("request_id", resp.RequestID)
	o.monitor.Start(req)

	explicit := !req.Filter.IsEmpty()
	if explicit {
		if err := req.Filter.Predicate().Validate(); err != nil {
			o.monitor.Finish(nil, err)
			return nil, err
		}
	}

	filter := req.Filter
	if !explicit && text != "" && o.extractor != nil {
		filter = o.deriveFilter(ctx, logger, resp, text)
	}

	if filter.IsEmpty() && text == "" {
		logger.Debug("empty query")
		o.monitor.Finish(resp, nil)
		return resp, nil
	}

	var (
		people    []*core.Person
		hits      []Hit
		graphErr  error
		vectorErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	if !filter.IsEmpty() {
		g.Go(func() error {
			found, err := o.graph.FindPeople(gctx, filter)
			o.monitor.AfterGraphSearch(len(found), err)
			if err != nil {
				graphErr = err
				if explicit {
					return fmt.Errorf("%w: %w", ErrFilterUnavailable, err)
				}
				return nil
			}
			people = found
			return nil
		})
	}
	if text != "" {
		g.Go(func() error {
			found, err := o.vector.Search(gctx, text, o.config.TopK)
			o.monitor.AfterSemanticSearch(found, err)
			if err != nil {
				vectorErr = err
				if !explicit {
					return fmt.Errorf("%w: %w", ErrSemanticSearchUnavailable, err)
				}
				return nil
			}
			hits = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("query failed", "err", err)
		o.monitor.Finish(nil, err)
		return nil, err
	}

	if graphErr != nil {
		logger.Warn("derived filter could not be applied", "err", graphErr)
		resp.warn(WarningDerivedFilterFailed, graphErr)
		resp.Degraded = true
	}
	if vectorErr != nil {
		logger.Warn("semantic search failed, returning filter matches only", "err", vectorErr)
		resp.warn(WarningSemanticDegraded, vectorErr)
		resp.Degraded = true
	}

	items := fuse(people, hits)
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}
	o.hydrate(ctx, logger, resp, items)
	o.monitor.Fused(items)
	resp.Items = items

	logger.Debug("query fused",
		"graph", len(people),
		"semantic", len(hits),
		"results", len(items))

	if req.Summarize {
		o.summarize(ctx, logger, resp)
	}

	o.monitor.Finish(resp, nil)
	return resp, nil
}

// deriveFilter asks the extractor for a filter. Failures become warnings.
func (o *Orchestrator) deriveFilter(ctx context.Context, logger *slog.Logger, resp *Response, text string) Filter {
	extracted, err := o.extractor.ExtractFilter(ctx, text)
	if err != nil {
		logger.Warn("filter extraction failed", "err", err)
		resp.warn(WarningFilterExtraction, err)
		return Filter{}
	}
	derived := Filter{
		Company:         extracted.Company,
		NameContains:    extracted.NameContains,
		ConnectedAfter:  extracted.ConnectedAfter,
		ConnectedBefore: extracted.ConnectedBefore,
	}
	if derived.IsEmpty() {
		return Filter{}
	}
	if err := derived.Predicate().Validate(); err != nil {
		resp.warn(WarningFilterExtraction, err)
		return Filter{}
	}
	logger.Debug("derived filter", "company", derived.Company, "name", derived.NameContains)
	resp.Filter = derived
	resp.FilterDerived = true
	return derived
}

// hydrate loads the people behind semantic-only items.
func (o *Orchestrator) hydrate(ctx context.Context, logger *slog.Logger, resp *Response, items []ResultItem) {
	var ids []core.ID
	for _, item := range items {
		if item.Person == nil {
			ids = append(ids, item.ID)
		}
	}
	if len(ids) == 0 {
		return
	}

	people, err := o.graph.GetPeople(ctx, ids...)
	if err != nil {
		logger.Warn("failed to load semantic matches", "count", len(ids), "err", err)
		resp.warn(WarningHydration, err)
		return
	}

	byID := make(map[core.ID]*core.Person, len(people))
	for _, p := range people {
		byID[p.Id] = p
	}
	for i := range items {
		if items[i].Person == nil {
			items[i].Person = byID[items[i].ID]
		}
	}
	if missing := len(ids) - len(people); missing > 0 {
		logger.Warn("semantic matches missing from graph", "count", missing)
		resp.warn(WarningHydration, fmt.Errorf("%d semantic matches not found in graph: %w", missing, storage.ErrNotFound))
	}
}
