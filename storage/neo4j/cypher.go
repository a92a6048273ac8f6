package neo4j

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/poiesic/netsight/core"
	"github.com/poiesic/netsight/storage"
)

// schemaStatements create the constraints and indexes the store relies on.
var schemaStatements = []string{
	"CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE",
	"CREATE CONSTRAINT company_key IF NOT EXISTS FOR (c:Company) REQUIRE c.key IS UNIQUE",
	"CREATE INDEX person_seq IF NOT EXISTS FOR (p:Person) ON (p.seq)",
	"CREATE INDEX person_connected_on IF NOT EXISTS FOR (p:Person) ON (p.connected_on)",
}

const addPeopleQuery = `
UNWIND $rows AS row
MERGE (p:Person {id: row.id})
SET p.seq = row.seq,
    p.name = row.name,
    p.name_lower = row.name_lower,
    p.email = row.email,
    p.linkedin_url = row.linkedin_url,
    p.position = row.position,
    p.company = row.company,
    p.connected_on = row.connected_on,
    p.inserted_at = row.inserted_at
WITH p, row
OPTIONAL MATCH (p)-[old:WORKS_AT]->(:Company)
DELETE old
WITH DISTINCT p, row
WHERE row.company_key <> ''
MERGE (c:Company {key: row.company_key})
ON CREATE SET c.id = row.company_id, c.name = row.company
MERGE (p)-[:WORKS_AT]->(c)`

const (
	getPersonQuery      = "MATCH (p:Person {id: $id}) RETURN p"
	getPeopleQuery      = "UNWIND $ids AS id MATCH (p:Person {id: id}) RETURN p"
	listPeopleQuery     = "MATCH (p:Person) WHERE p.seq > $after RETURN p ORDER BY p.seq LIMIT $limit"
	countPeopleQuery    = "MATCH (p:Person) RETURN count(p) AS n"
	countCompaniesQuery = "MATCH (c:Company) RETURN count(c) AS n"
	resetQuery          = "MATCH (n) WHERE n:Person OR n:Company DETACH DELETE n"
)

// dateLayout stores connection dates as ISO strings so they compare lexically.
const dateLayout = time.DateOnly

// nodeID maps a core.ID onto the signed integers Neo4j stores.
func nodeID(id core.ID) int64 {
	return int64(id)
}

// seqOf maps an ID onto a signed integer that sorts in the same order as the unsigned ID.
func seqOf(id core.ID) int64 {
	return int64(uint64(id) ^ (1 << 63))
}

// buildFindQuery translates a predicate into parameterized Cypher.
// Values are always passed as parameters, never interpolated.
func buildFindQuery(pred storage.Predicate) (string, map[string]any, error) {
	if pred.IsEmpty() {
		return "", nil, storage.ErrInvalidQuery
	}
	if err := pred.Validate(); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	params := map[string]any{}
	var where []string

	if pred.CompanyKey != "" {
		sb.WriteString("MATCH (p:Person)-[:WORKS_AT]->(c:Company {key: $company_key})")
		params["company_key"] = pred.CompanyKey
	} else {
		sb.WriteString("MATCH (p:Person)")
	}

	if name := strings.TrimSpace(pred.NameContains); name != "" {
		where = append(where, "p.name_lower CONTAINS $name")
		params["name"] = strings.ToLower(name)
	}
	if !pred.ConnectedAfter.IsZero() || !pred.ConnectedBefore.IsZero() {
		where = append(where, "p.connected_on <> ''")
	}
	if !pred.ConnectedAfter.IsZero() {
		where = append(where, "p.connected_on >= $after")
		params["after"] = core.Day(pred.ConnectedAfter).Format(dateLayout)
	}
	if !pred.ConnectedBefore.IsZero() {
		where = append(where, "p.connected_on <= $before")
		params["before"] = core.Day(pred.ConnectedBefore).Format(dateLayout)
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" RETURN p")
	return sb.String(), params, nil
}

// personRow flattens a person into the parameters of addPeopleQuery.
func personRow(p *core.Person) map[string]any {
	var connectedOn string
	if !p.ConnectedOn.IsZero() {
		connectedOn = core.Day(p.ConnectedOn).Format(dateLayout)
	}
	row := map[string]any{
		"id":           nodeID(p.Id),
		"seq":          seqOf(p.Id),
		"name":         p.Name,
		"name_lower":   strings.ToLower(p.Name),
		"email":        p.Email,
		"linkedin_url": p.LinkedInURL,
		"position":     p.Position,
		"company":      p.Company,
		"connected_on": connectedOn,
		"inserted_at":  p.InsertedAt.UTC().Format(time.RFC3339Nano),
		"company_key":  "",
		"company_id":   int64(0),
	}
	if company := core.NewCompany(p.Company); company != nil {
		row["company_key"] = company.Key
		row["company_id"] = nodeID(company.Id)
	}
	return row
}

// personFromProps rebuilds a person from the properties of a Person node.
func personFromProps(props map[string]any) (*core.Person, error) {
	id, ok := props["id"].(int64)
	if !ok {
		return nil, fmt.Errorf("%w: person node without id", storage.ErrSerializationFailed)
	}
	person := &core.Person{
		Id:          core.ID(id),
		Name:        stringProp(props, "name"),
		Email:       stringProp(props, "email"),
		LinkedInURL: stringProp(props, "linkedin_url"),
		Position:    stringProp(props, "position"),
		Company:     stringProp(props, "company"),
	}
	if s := stringProp(props, "connected_on"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: connected_on %q: %w", storage.ErrSerializationFailed, s, err)
		}
		person.ConnectedOn = t
	}
	if s := stringProp(props, "inserted_at"); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: inserted_at %q: %w", storage.ErrSerializationFailed, s, err)
		}
		person.InsertedAt = t
	}
	return person, nil
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

// afterSeq returns the paging cursor for ListPeople.
func afterSeq(afterID core.ID) int64 {
	if afterID == 0 {
		return math.MinInt64
	}
	return seqOf(afterID)
}
