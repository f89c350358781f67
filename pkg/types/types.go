package types

import "errors"

// Validation errors surfaced while assembling a snapshot. They are wrapped
// in a *MalformedGraphError, so use errors.Is to match them.
var (
	ErrEmptyNodeID        = errors.New("node id cannot be empty")
	ErrDuplicateNode      = errors.New("duplicate node id")
	ErrDuplicateEdge      = errors.New("duplicate edge triple")
	ErrDanglingEdge       = errors.New("edge references unknown node")
	ErrSelfEdge           = errors.New("edge cannot connect a node to itself")
	ErrConfidenceDomain   = errors.New("confidence must be in [0, 1]")
	ErrWeightDomain       = errors.New("edge weight must be in [0, 1]")
	ErrUnknownNodeKind    = errors.New("unknown node kind")
	ErrUnknownEdgeKind    = errors.New("unknown edge kind")
	ErrUnknownPolarity    = errors.New("unknown edge polarity")
	ErrNodeNotFound       = errors.New("node not found")
	ErrEdgeNotFound       = errors.New("edge not found")
)

// MalformedGraphError reports structurally invalid input: dangling edge
// references, duplicate identities, or out-of-domain attribute values.
// It is fatal and never silently repaired; it is distinct from a Violation,
// which is data produced by a validator over a well-formed snapshot.
type MalformedGraphError struct {
	Reason  error  // one of the sentinel errors above
	Subject string // offending node id or edge id
}

func (e *MalformedGraphError) Error() string {
	if e.Subject == "" {
		return "malformed graph: " + e.Reason.Error()
	}
	return "malformed graph: " + e.Reason.Error() + ": " + e.Subject
}

func (e *MalformedGraphError) Unwrap() error { return e.Reason }

func malformed(reason error, subject string) error {
	return &MalformedGraphError{Reason: reason, Subject: subject}
}

// NodeKind classifies the proposition a node carries.
type NodeKind string

const (
	// ConceptNode is a general concept.
	ConceptNode NodeKind = "concept"
	// HypothesisNode is a proposition under evaluation.
	HypothesisNode NodeKind = "hypothesis"
	// FactNode is an established fact.
	FactNode NodeKind = "fact"
	// ConstraintNode is a condition the reasoning must respect.
	ConstraintNode NodeKind = "constraint"
	// StateNode is a system state used by causal propagation.
	StateNode NodeKind = "state"
)

// Valid reports whether the kind is one of the recognized node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case ConceptNode, HypothesisNode, FactNode, ConstraintNode, StateNode:
		return true
	}
	return false
}

// EdgeKind classifies the relation an edge expresses.
type EdgeKind string

const (
	// CausalEdge relates a cause to its effect.
	CausalEdge EdgeKind = "causal"
	// EpistemicEdge relates beliefs across a belief frame.
	EpistemicEdge EdgeKind = "epistemic"
	// SupportEdge strengthens the target's confidence.
	SupportEdge EdgeKind = "support"
	// ContradictionEdge weakens the target's confidence.
	ContradictionEdge EdgeKind = "contradiction"
	// DependencyEdge is a support gated on the source's confidence.
	DependencyEdge EdgeKind = "dependency"
	// RefinementEdge is a hierarchical part-of relation.
	RefinementEdge EdgeKind = "refinement"
)

// Valid reports whether the kind is one of the recognized edge kinds.
func (k EdgeKind) Valid() bool {
	switch k {
	case CausalEdge, EpistemicEdge, SupportEdge, ContradictionEdge, DependencyEdge, RefinementEdge:
		return true
	}
	return false
}

// EpistemicKinds are the edge kinds epistemic propagation traverses.
var EpistemicKinds = []EdgeKind{SupportEdge, ContradictionEdge, DependencyEdge}

// Polarity gives the sign of a causal or epistemic influence.
type Polarity string

const (
	// PositivePolarity means the source promotes the target.
	PositivePolarity Polarity = "positive"
	// NegativePolarity means the source inhibits the target.
	NegativePolarity Polarity = "negative"
)

// Valid reports whether the polarity is recognized. The empty polarity is
// valid and treated as positive.
func (p Polarity) Valid() bool {
	return p == "" || p == PositivePolarity || p == NegativePolarity
}

// Sign returns +1 for positive (or unset) polarity and -1 for negative.
func (p Polarity) Sign() float64 {
	if p == NegativePolarity {
		return -1
	}
	return 1
}
