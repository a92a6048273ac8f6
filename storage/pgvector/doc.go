// Package pgvector stores profile embeddings in Postgres using the pgvector
// extension. Similarity is cosine distance (the <=> operator) converted to a
// score in [-1, 1], and upserts use ON CONFLICT on the person ID.
package pgvector
