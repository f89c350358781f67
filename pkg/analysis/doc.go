// Package analysis provides read-only computations over reasoning graph
// snapshots: conflict clustering, connectivity structure, critical
// justification paths, and node metrics.
//
// Analyzers never produce new snapshots. All traversal orders are fixed,
// so repeated runs over the same snapshot return identical results.
package analysis
