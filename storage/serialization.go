package storage

import (
	"fmt"

	"github.com/poiesic/netsight/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalPerson serializes a Person to bytes.
func MarshalPerson(person *core.Person) []byte {
	buf := make([]byte, core.PersonMUS.Size(*person))
	core.PersonMUS.Marshal(*person, buf)
	return buf
}

// UnmarshalPerson deserializes a Person from bytes.
func UnmarshalPerson(data []byte) (*core.Person, error) {
	person, _, err := core.PersonMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: person: %w", ErrSerializationFailed, err)
	}
	return &person, nil
}

// MarshalCompany serializes a Company to bytes.
func MarshalCompany(company *core.Company) []byte {
	buf := make([]byte, core.CompanyMUS.Size(*company))
	core.CompanyMUS.Marshal(*company, buf)
	return buf
}

// UnmarshalCompany deserializes a Company from bytes.
func UnmarshalCompany(data []byte) (*core.Company, error) {
	company, _, err := core.CompanyMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: company: %w", ErrSerializationFailed, err)
	}
	return &company, nil
}

// MarshalEmbedding serializes an Embedding to bytes.
func MarshalEmbedding(embedding *core.Embedding) []byte {
	buf := make([]byte, core.EmbeddingMUS.Size(*embedding))
	core.EmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalEmbedding deserializes an Embedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.Embedding, error) {
	embedding, _, err := core.EmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %w", ErrSerializationFailed, err)
	}
	return &embedding, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest *core.Manifest) []byte {
	buf := make([]byte, core.ManifestMUS.Size(*manifest))
	core.ManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	manifest, _, err := core.ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrSerializationFailed, err)
	}
	return &manifest, nil
}
