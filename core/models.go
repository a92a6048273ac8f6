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


package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing of the entity's identity key.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Connection is a single row of an exported contacts CSV.
// Connections are immutable once read; one Connection exists per source row.
type Connection struct {
	FirstName   string
	LastName    string
	FullName    string
	Company     string    // Optional
	Position    string    // Optional
	Email       string    // Optional
	ProfileURL  string    // Optional, but preferred as identity
	ConnectedOn time.Time // Date the connection was made (UTC midnight)
	Line        int       // Source line in the export, 0 when not read from a file
}

// IdentityKey returns the key that identifies the person behind a connection.
// The profile URL is used when present, otherwise the lowercased full name
// joined with the normalized company name.
func (c *Connection) IdentityKey() string {
	if url := strings.TrimSpace(c.ProfileURL); url != "" {
		return strings.ToLower(strings.TrimSuffix(url, "/"))
	}
	name := strings.ToLower(strings.TrimSpace(c.FullName))
	if name == "" {
		return ""
	}
	return name + "|" + NormalizeCompanyName(c.Company)
}

// ID returns the content-derived ID of the person behind this connection.
func (c *Connection) ID() ID {
	return IDFromContent("person:" + c.IdentityKey())
}

// Person returns the graph node materialized from this connection.
func (c *Connection) Person() *Person {
	return &Person{
		Id:          c.ID(),
		Name:        c.FullName,
		Email:       c.Email,
		LinkedInURL: c.ProfileURL,
		Position:    c.Position,
		Company:     strings.TrimSpace(c.Company),
		ConnectedOn: c.ConnectedOn,
	}
}

// Person is a graph node for a single contact.
// A person has at most one current WORKS_AT edge, expressed by Company.
type Person struct {
	Id          ID
	Name        string
	Email       string
	LinkedInURL string
	Position    string
	Company     string    // Display name of the employer, empty when unknown
	ConnectedOn time.Time // When the connection was made
	InsertedAt  time.Time // When the node was written
}

// CompanyKey returns the normalized key of the person's employer.
func (p *Person) CompanyKey() string {
	return NormalizeCompanyName(p.Company)
}

// CompanyID returns the ID of the person's employer, or 0 if unknown.
func (p *Person) CompanyID() ID {
	key := p.CompanyKey()
	if key == "" {
		return 0
	}
	return CompanyIDFromKey(key)
}

// Company is a graph node for an employer.
// Companies are unique by their normalized Key.
type Company struct {
	Id   ID
	Name string // Display name as first seen
	Key  string // NormalizeCompanyName(Name)
}

// NewCompany builds a Company node from a display name.
// Returns nil if the name is blank.
func NewCompany(name string) *Company {
	key := NormalizeCompanyName(name)
	if key == "" {
		return nil
	}
	return &Company{
		Id:   CompanyIDFromKey(key),
		Name: strings.TrimSpace(name),
		Key:  key,
	}
}

// CompanyIDFromKey derives a company ID from its normalized key.
func CompanyIDFromKey(key string) ID {
	return IDFromContent("company:" + key)
}

// NormalizeCompanyName trims, collapses inner whitespace and lowercases a company name.
func NormalizeCompanyName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Embedding is the semantic vector of a person's profile blurb.
type Embedding struct {
	PersonId   ID
	Vector     []float32
	SourceText string
}

// SimilarityMatch represents a person match from vector similarity search.
type SimilarityMatch struct {
	PersonId ID
	Score    float32
}

// Manifest describes the most recent full ingestion.
type Manifest struct {
	Source      string // Path or name of the ingested CSV
	Rows        int
	People      int
	Companies   int
	Embeddings  int
	Skipped     int
	Model       string // Embedding model used
	CompletedAt time.Time
}

// ProfileBlurb renders the natural-language text embedded for a person.
func ProfileBlurb(p *Person) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	switch {
	case p.Position != "" && p.Company != "":
		sb.WriteString(" works as ")
		sb.WriteString(p.Position)
		sb.WriteString(" at ")
		sb.WriteString(p.Company)
	case p.Position != "":
		sb.WriteString(" works as ")
		sb.WriteString(p.Position)
	case p.Company != "":
		sb.WriteString(" works at ")
		sb.WriteString(p.Company)
	}
	sb.WriteString(".")
	if !p.ConnectedOn.IsZero() {
		sb.WriteString(" Connected on ")
		sb.WriteString(p.ConnectedOn.Format(time.DateOnly))
		sb.WriteString(".")
	}
	return sb.String()
}
