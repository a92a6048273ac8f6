package neo4j

import (
	"context"
	"fmt"
	"time"

	neo "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

const (
	saveManifestQuery = `
MERGE (m:IngestionManifest {name: 'latest'})
SET m += $manifest`

	loadManifestQuery = "MATCH (m:IngestionManifest {name: 'latest'}) RETURN m"
)

// ManifestRepository stores the ingestion manifest as a singleton node.
// The node is not a Person or Company, so GraphStore.Reset leaves it in place.
type ManifestRepository struct {
	graph *GraphStore
}

var _ storage.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository returns a manifest repository sharing the store's driver.
func NewManifestRepository(graph storage.GraphStore) (storage.ManifestRepository, error) {
	g, ok := graph.(*GraphStore)
	if !ok {
		return nil, fmt.Errorf("neo4j: manifest repository needs a neo4j graph store, got %T", graph)
	}
	return &ManifestRepository{graph: g}, nil
}

// SaveManifest replaces the stored manifest.
func (r *ManifestRepository) SaveManifest(ctx context.Context, manifest *core.Manifest) error {
	if manifest.CompletedAt.IsZero() {
		manifest.CompletedAt = time.Now().UTC()
	}
	_, err := r.graph.write(ctx, saveManifestQuery, map[string]any{"manifest": manifestProps(manifest)})
	return err
}

// LoadManifest returns the stored manifest, or nil if none was saved.
func (r *ManifestRepository) LoadManifest(ctx context.Context) (*core.Manifest, error) {
	records, err := r.graph.read(ctx, loadManifestQuery, nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	node, _, err := neo.GetRecordValue[neo.Node](records[0], "m")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return manifestFromProps(node.Props)
}

func manifestProps(m *core.Manifest) map[string]any {
	return map[string]any{
		"source":       m.Source,
		"rows":         int64(m.Rows),
		"people":       int64(m.People),
		"companies":    int64(m.Companies),
		"embeddings":   int64(m.Embeddings),
		"skipped":      int64(m.Skipped),
		"model":        m.Model,
		"completed_at": m.CompletedAt.UTC().Format(time.RFC3339Nano),
	}
}

func manifestFromProps(props map[string]any) (*core.Manifest, error) {
	m := &core.Manifest{
		Source:     stringProp(props, "source"),
		Rows:       intProp(props, "rows"),
		People:     intProp(props, "people"),
		Companies:  intProp(props, "companies"),
		Embeddings: intProp(props, "embeddings"),
		Skipped:    intProp(props, "skipped"),
		Model:      stringProp(props, "model"),
	}
	if s := stringProp(props, "completed_at"); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: completed_at %q: %w", storage.ErrSerializationFailed, s, err)
		}
		m.CompletedAt = t
	}
	return m, nil
}

func intProp(props map[string]any, key string) int {
	n, _ := props[key].(int64)
	return int(n)
}
