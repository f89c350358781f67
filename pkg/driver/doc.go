// Package driver provides external persistence for reasoning graph
// snapshots.
//
// Neo4jDriver stores a snapshot's nodes and edges in a Neo4j database;
// CircuitBreakerStore wraps any GraphStore with failure-rate tripping and
// alerting. Both implement the GraphStore interface.
package driver
