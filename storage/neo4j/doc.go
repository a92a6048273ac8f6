// Package neo4j implements the contacts graph on a Neo4j server.
//
// Person and Company nodes are written with MERGE under uniqueness
// constraints on Person.id and Company.key, and every query passes its
// values as Cypher parameters. Connection dates are stored as ISO dates so
// range filters compare lexically.
package neo4j
