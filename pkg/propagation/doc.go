// Package propagation derives confidence and activation values across
// reasoning graph snapshots.
//
// The epistemic propagator iterates support, contradiction, and dependency
// influence to a fixed point; the causal propagator runs a single
// topological pass over the causal DAG. Both are pure functions of a
// snapshot and a starting set: they return a new snapshot and never touch
// the input. Given the same input they produce identical output.
package propagation
