package types

import "fmt"

// Edge is a typed, directed relation between two nodes. An edge's identity
// is the (Source, Target, Kind) triple; duplicate triples are rejected at
// snapshot assembly, never merged.
type Edge struct {
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Kind   EdgeKind `json:"kind" yaml:"kind"`

	// Weight scales the edge's influence in [0, 1]. Unset defaults to 1;
	// an explicit 0 means no influence.
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`

	// Polarity is the influence sign, meaningful for causal and epistemic
	// edges. Empty means positive.
	Polarity Polarity `json:"polarity,omitempty" yaml:"polarity,omitempty"`

	// Justification is an opaque text reference explaining the edge.
	Justification string `json:"justification,omitempty" yaml:"justification,omitempty"`
}

// ID renders the identity triple, used in violation reports.
func (e Edge) ID() string {
	return fmt.Sprintf("%s->%s#%s", e.Source, e.Target, e.Kind)
}

// Validate checks the edge's own invariants. Referential integrity against
// the node set is checked by NewGraph.
func (e Edge) Validate() error {
	if e.Source == "" || e.Target == "" {
		return malformed(ErrDanglingEdge, e.ID())
	}
	if e.Source == e.Target {
		return malformed(ErrSelfEdge, e.ID())
	}
	if !e.Kind.Valid() {
		return malformed(ErrUnknownEdgeKind, e.ID())
	}
	if e.Weight != nil && (*e.Weight < 0 || *e.Weight > 1) {
		return malformed(ErrWeightDomain, e.ID())
	}
	if !e.Polarity.Valid() {
		return malformed(ErrUnknownPolarity, e.ID())
	}
	return nil
}

// EffectiveWeight returns the weight with the unset default applied.
func (e Edge) EffectiveWeight() float64 {
	if e.Weight == nil {
		return 1
	}
	return *e.Weight
}

// edgeKey is the identity triple used for duplicate detection and lookup.
type edgeKey struct {
	source string
	target string
	kind   EdgeKind
}

func (e Edge) key() edgeKey {
	return edgeKey{source: e.Source, target: e.Target, kind: e.Kind}
}
