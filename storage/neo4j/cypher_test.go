package neo4j

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildFindQuery(t *testing.T) {
	tests := []struct {
		name      string
		pred      storage.Predicate
		query     string
		params    map[string]any
		expectErr error
	}{
		{
			name:      "empty predicate",
			pred:      storage.Predicate{},
			expectErr: storage.ErrInvalidQuery,
		},
		{
			name:      "contradictory dates",
			pred:      storage.Predicate{ConnectedAfter: day(2024, 1, 2), ConnectedBefore: day(2024, 1, 1)},
			expectErr: storage.ErrInvalidQuery,
		},
		{
			name:   "company only",
			pred:   storage.Predicate{CompanyKey: "acme"},
			query:  "MATCH (p:Person)-[:WORKS_AT]->(c:Company {key: $company_key}) RETURN p",
			params: map[string]any{"company_key": "acme"},
		},
		{
			name:   "name is lowercased",
			pred:   storage.Predicate{NameContains: " Ada "},
			query:  "MATCH (p:Person) WHERE p.name_lower CONTAINS $name RETURN p",
			params: map[string]any{"name": "ada"},
		},
		{
			name: "all constraints",
			pred: storage.Predicate{
				CompanyKey:      "acme",
				NameContains:    "Ada",
				ConnectedAfter:  day(2023, 1, 1),
				ConnectedBefore: time.Date(2023, 12, 31, 15, 4, 5, 0, time.UTC),
			},
			query: "MATCH (p:Person)-[:WORKS_AT]->(c:Company {key: $company_key}) WHERE p.name_lower CONTAINS $name" +
				" AND p.connected_on <> '' AND p.connected_on >= $after AND p.connected_on <= $before RETURN p",
			params: map[string]any{
				"company_key": "acme",
				"name":        "ada",
				"after":       "2023-01-01",
				"before":      "2023-12-31",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, params, err := buildFindQuery(tt.pred)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestBuildFindQuery_NeverInterpolatesValues(t *testing.T) {
	query, params, err := buildFindQuery(storage.Predicate{NameContains: "x' OR 1=1 //"})
	require.NoError(t, err)
	assert.NotContains(t, query, "1=1")
	assert.Equal(t, "x' or 1=1 //", params["name"])
}

func TestSeqOf_PreservesUnsignedOrder(t *testing.T) {
	ids := []core.ID{1, 42, 1 << 62, 1<<63 - 1, 1 << 63, math.MaxUint64}
	seqs := make([]int64, len(ids))
	for i, id := range ids {
		seqs[i] = seqOf(id)
	}
	assert.True(t, slices.IsSorted(seqs))
	assert.Equal(t, int64(math.MinInt64), afterSeq(0))
	assert.Less(t, afterSeq(0), seqOf(1))
}

func TestPersonRowRoundTrip(t *testing.T) {
	person := &core.Person{
		Id:          core.ID(math.MaxUint64 - 7),
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		LinkedInURL: "https://www.linkedin.com/in/ada",
		Position:    "Analyst",
		Company:     "  Acme  Corp ",
		ConnectedOn: day(2023, 1, 10),
		InsertedAt:  time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC),
	}

	row := personRow(person)
	assert.Equal(t, "ada lovelace", row["name_lower"])
	assert.Equal(t, "2023-01-10", row["connected_on"])
	assert.Equal(t, "acme corp", row["company_key"])
	assert.Equal(t, nodeID(core.CompanyIDFromKey("acme corp")), row["company_id"])

	got, err := personFromProps(row)
	require.NoError(t, err)
	assert.Equal(t, person.Id, got.Id)
	assert.Equal(t, person.Name, got.Name)
	assert.Equal(t, person.Company, got.Company)
	assert.True(t, person.ConnectedOn.Equal(got.ConnectedOn))
	assert.True(t, person.InsertedAt.Equal(got.InsertedAt))
}

func TestPersonRow_NoCompanyOrDate(t *testing.T) {
	row := personRow(&core.Person{Id: 7, Name: "Grace"})
	assert.Equal(t, "", row["company_key"])
	assert.Equal(t, "", row["connected_on"])

	got, err := personFromProps(row)
	require.NoError(t, err)
	assert.True(t, got.ConnectedOn.IsZero())
}

func TestPersonFromProps_Errors(t *testing.T) {
	_, err := personFromProps(map[string]any{"name": "no id"})
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)

	_, err = personFromProps(map[string]any{"id": int64(1), "connected_on": "yesterday"})
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}

func TestManifestProps(t *testing.T) {
	manifest := &core.Manifest{
		Source:      "Connections.csv",
		Rows:        10,
		People:      8,
		Companies:   3,
		Embeddings:  8,
		Skipped:     2,
		Model:       "embeddinggemma",
		CompletedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	got, err := manifestFromProps(manifestProps(manifest))
	require.NoError(t, err)
	assert.Equal(t, manifest, got)
}
