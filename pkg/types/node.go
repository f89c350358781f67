package types

import (
	"sort"
	"time"
)

// Node is the atomic unit of reasoning: a concept, hypothesis, fact,
// constraint, or state. Nodes are immutable once they are part of a
// snapshot; a "mutation" always goes through Graph.WithNodes or a Builder
// and yields a new snapshot.
type Node struct {
	ID   string   `json:"id" yaml:"id"`
	Kind NodeKind `json:"kind" yaml:"kind"`

	// Confidence is the node's current belief strength in [0, 1].
	// Nil means no prior: the node's confidence is unknown until
	// propagation derives one.
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Prior is maintained by epistemic propagation: it records the
	// confidence the node had before the first propagation touched it,
	// so re-propagating a derived snapshot recomputes from the same base
	// instead of compounding on its own output.
	Prior *float64 `json:"prior,omitempty" yaml:"prior,omitempty"`

	// Activation is the causal state in [0, 1]. Boolean activation maps
	// to 0 and 1.
	Activation float64 `json:"activation,omitempty" yaml:"activation,omitempty"`

	// Timestamp orders the node for temporal coherence checks. Nil means
	// the node is not temporally anchored.
	Timestamp *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`

	// EpistemicContext tags the belief frame the node's proposition
	// belongs to. Nodes are compared for mutual compatibility only
	// within the same context.
	EpistemicContext string `json:"epistemic_context,omitempty" yaml:"epistemic_context,omitempty"`

	// Source identifies where the proposition came from.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Perspective tags the viewpoint asserting the proposition.
	Perspective string `json:"perspective,omitempty" yaml:"perspective,omitempty"`

	// IncompatibleWith lists node ids whose propositions are mutually
	// exclusive with this one. The relation must be symmetric; the
	// epistemic validator flags asymmetry.
	IncompatibleWith []string `json:"incompatible_with,omitempty" yaml:"incompatible_with,omitempty"`

	// Meta is the residual open mapping for forward-compatible tags the
	// engine does not interpret.
	Meta map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Validate checks the node's own invariants.
func (n *Node) Validate() error {
	if n.ID == "" {
		return malformed(ErrEmptyNodeID, "")
	}
	if !n.Kind.Valid() {
		return malformed(ErrUnknownNodeKind, n.ID)
	}
	if n.Confidence != nil && (*n.Confidence < 0 || *n.Confidence > 1) {
		return malformed(ErrConfidenceDomain, n.ID)
	}
	if n.Prior != nil && (*n.Prior < 0 || *n.Prior > 1) {
		return malformed(ErrConfidenceDomain, n.ID)
	}
	return nil
}

// HasConfidence reports whether the node carries a confidence value.
func (n *Node) HasConfidence() bool { return n.Confidence != nil }

// ConfidenceOr returns the node's confidence, or def when unset.
func (n *Node) ConfidenceOr(def float64) float64 {
	if n.Confidence == nil {
		return def
	}
	return *n.Confidence
}

// PriorOr returns the recorded propagation base: Prior when set, otherwise
// the node's confidence, otherwise def.
func (n *Node) PriorOr(def float64) float64 {
	if n.Prior != nil {
		return *n.Prior
	}
	if n.Confidence != nil {
		return *n.Confidence
	}
	return def
}

// IncompatibleWithID reports whether other is listed as mutually exclusive.
func (n *Node) IncompatibleWithID(other string) bool {
	for _, id := range n.IncompatibleWith {
		if id == other {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a derived snapshot never aliases slices or
// maps of its parent.
func (n *Node) Clone() Node {
	out := *n
	if n.Confidence != nil {
		c := *n.Confidence
		out.Confidence = &c
	}
	if n.Prior != nil {
		p := *n.Prior
		out.Prior = &p
	}
	if n.Timestamp != nil {
		t := *n.Timestamp
		out.Timestamp = &t
	}
	if n.IncompatibleWith != nil {
		out.IncompatibleWith = append([]string(nil), n.IncompatibleWith...)
	}
	if n.Meta != nil {
		out.Meta = make(map[string]any, len(n.Meta))
		for k, v := range n.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

// Float64 returns a pointer to v, for setting optional confidence values.
func Float64(v float64) *float64 { return &v }

// SortIDs returns a copy of ids sorted ascending, the canonical ordering
// used everywhere determinism matters.
func SortIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
