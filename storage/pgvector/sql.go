package pgvector

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DefaultTable is the embeddings table used when none is configured.
const DefaultTable = "person_embeddings"

// queries holds the SQL for one embeddings table.
// The table name is quoted as an identifier; every value is a bind parameter.
type queries struct {
	createExtension string
	createTable     string
	upsert          string
	get             string
	findSimilar     string
	count           string
	reset           string
}

func newQueries(table string, dimension int) queries {
	if table == "" {
		table = DefaultTable
	}
	ident := pgx.Identifier{table}.Sanitize()

	column := "vector"
	if dimension > 0 {
		column = fmt.Sprintf("vector(%d)", dimension)
	}

	return queries{
		createExtension: "CREATE EXTENSION IF NOT EXISTS vector",
		createTable: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	person_id BIGINT PRIMARY KEY,
	embedding %s NOT NULL,
	source_text TEXT NOT NULL DEFAULT ''
)`, ident, column),
		upsert: fmt.Sprintf(`INSERT INTO %s (person_id, embedding, source_text) VALUES ($1, $2, $3)
ON CONFLICT (person_id) DO UPDATE SET embedding = EXCLUDED.embedding, source_text = EXCLUDED.source_text`, ident),
		get: fmt.Sprintf("SELECT embedding, source_text FROM %s WHERE person_id = $1", ident),
		findSimilar: fmt.Sprintf(`SELECT person_id, 1 - (embedding <=> $1) AS score FROM %s
WHERE 1 - (embedding <=> $1) >= $2
ORDER BY embedding <=> $1, person_id
LIMIT $3`, ident),
		count: fmt.Sprintf("SELECT count(*) FROM %s", ident),
		reset: fmt.Sprintf("TRUNCATE %s", ident),
	}
}
