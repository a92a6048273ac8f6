package storage

import (
	"testing"
	"time"

	"github.com/poiesic/netsight/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("person:jane doe|acme")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalPerson(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name   string
		person *core.Person
	}{
		{
			name: "full person",
			person: &core.Person{
				Id:          core.IDFromContent("person:https://www.linkedin.com/in/jdoe"),
				Name:        "Jane Doe",
				Email:       "jane@example.com",
				LinkedInURL: "https://www.linkedin.com/in/jdoe",
				Position:    "Staff Engineer",
				Company:     "Acme",
				ConnectedOn: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
				InsertedAt:  now,
			},
		},
		{
			name:   "minimal person with zero times",
			person: &core.Person{Id: 1, Name: "X"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalPerson(MarshalPerson(tt.person))
			require.NoError(t, err)
			assert.Equal(t, tt.person.Id, decoded.Id)
			assert.Equal(t, tt.person.Name, decoded.Name)
			assert.Equal(t, tt.person.Email, decoded.Email)
			assert.Equal(t, tt.person.LinkedInURL, decoded.LinkedInURL)
			assert.Equal(t, tt.person.Position, decoded.Position)
			assert.Equal(t, tt.person.Company, decoded.Company)
			assert.True(t, tt.person.ConnectedOn.Equal(decoded.ConnectedOn))
			assert.True(t, tt.person.InsertedAt.Equal(decoded.InsertedAt))
			assert.Equal(t, tt.person.ConnectedOn.IsZero(), decoded.ConnectedOn.IsZero())
		})
	}
}

func TestMarshalUnmarshalEmbedding(t *testing.T) {
	embedding := &core.Embedding{
		PersonId:   42,
		Vector:     []float32{0.1, -0.5, 0.25, 1},
		SourceText: "Jane Doe works at Acme.",
	}

	decoded, err := UnmarshalEmbedding(MarshalEmbedding(embedding))
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestUnmarshalPerson_Truncated(t *testing.T) {
	data := MarshalPerson(&core.Person{Id: 9, Name: "Jane Doe", Company: "Acme"})
	_, err := UnmarshalPerson(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	manifest := &core.Manifest{
		Source:      "Connections.csv",
		Rows:        120,
		People:      118,
		Companies:   64,
		Embeddings:  118,
		Skipped:     2,
		Model:       "embeddinggemma",
		CompletedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalManifest(MarshalManifest(manifest))
	require.NoError(t, err)
	assert.Equal(t, manifest.Source, decoded.Source)
	assert.Equal(t, manifest.Rows, decoded.Rows)
	assert.Equal(t, manifest.People, decoded.People)
	assert.Equal(t, manifest.Companies, decoded.Companies)
	assert.Equal(t, manifest.Embeddings, decoded.Embeddings)
	assert.Equal(t, manifest.Skipped, decoded.Skipped)
	assert.Equal(t, manifest.Model, decoded.Model)
	assert.True(t, manifest.CompletedAt.Equal(decoded.CompletedAt))
}

func TestMarshalUnmarshalCompany(t *testing.T) {
	company := core.NewCompany("Acme Corp")
	decoded, err := UnmarshalCompany(MarshalCompany(company))
	require.NoError(t, err)
	assert.Equal(t, company, decoded)
}
