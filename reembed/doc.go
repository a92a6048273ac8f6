// Package reembed rebuilds the embedding index of an existing contacts graph,
// typically after switching to a different embedding model.
//
// It also provides the building blocks shared with ingestion: batch
// embedding with retry and exponential backoff, vector normalization for
// cosine similarity, ID-ordered paging over the graph, and progress reporting.
package reembed
