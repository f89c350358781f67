// Package cogito is a deterministic reasoning graph engine.
//
// It models reasoning as a typed graph of concepts, hypotheses, facts,
// constraints, and states connected by causal, epistemic, support,
// contradiction, dependency, and refinement edges. The engine validates a
// graph's structural and epistemic coherence, propagates confidence and
// activation along edges to a fixed point, and analyzes the graph for
// contradictions, connectivity structure, and critical justification
// paths.
//
// Graphs are immutable snapshots: every propagation produces a new
// snapshot and leaves the input untouched, so old snapshots remain valid
// for diffing and auditing. All traversal orders are fixed, so the same
// input always produces the same output.
//
// The Client type ties the pieces together and optionally persists the
// snapshot chain in an embedded history store or an external graph
// database.
package cogito
