// Package types defines the core data model for the cogito reasoning engine:
// typed nodes and edges, immutable graph snapshots, validation violations,
// and the document codec used to move snapshots across process boundaries.
//
// A Graph is a snapshot: once constructed it is never mutated. Every
// transformation (propagation, builder edits) produces a new snapshot with
// an incremented version, so earlier snapshots remain valid for diffing and
// auditing. All accessors return results in a deterministic order.
package types
