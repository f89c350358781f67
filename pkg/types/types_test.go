package types

import (
	"errors"
	"testing"
	"time"
)

func TestNodeValidate(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{
			name:    "valid node",
			node:    Node{ID: "h1", Kind: HypothesisNode, Confidence: Float64(0.8)},
			wantErr: nil,
		},
		{
			name:    "valid node without confidence",
			node:    Node{ID: "c1", Kind: ConceptNode, Timestamp: &ts},
			wantErr: nil,
		},
		{
			name:    "empty id",
			node:    Node{Kind: FactNode},
			wantErr: ErrEmptyNodeID,
		},
		{
			name:    "unknown kind",
			node:    Node{ID: "n1", Kind: "belief"},
			wantErr: ErrUnknownNodeKind,
		},
		{
			name:    "confidence above one",
			node:    Node{ID: "n1", Kind: FactNode, Confidence: Float64(1.2)},
			wantErr: ErrConfidenceDomain,
		},
		{
			name:    "negative confidence",
			node:    Node{ID: "n1", Kind: FactNode, Confidence: Float64(-0.1)},
			wantErr: ErrConfidenceDomain,
		},
		{
			name:    "prior out of range",
			node:    Node{ID: "n1", Kind: FactNode, Prior: Float64(2)},
			wantErr: ErrConfidenceDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Node.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				var mg *MalformedGraphError
				if !errors.As(err, &mg) {
					t.Errorf("Node.Validate() error type = %T, want *MalformedGraphError", err)
				}
			}
		})
	}
}

func TestEdgeValidate(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{
			name:    "valid edge",
			edge:    Edge{Source: "a", Target: "b", Kind: CausalEdge, Weight: Float64(0.5)},
			wantErr: nil,
		},
		{
			name:    "zero weight means default",
			edge:    Edge{Source: "a", Target: "b", Kind: SupportEdge},
			wantErr: nil,
		},
		{
			name:    "self edge",
			edge:    Edge{Source: "a", Target: "a", Kind: CausalEdge},
			wantErr: ErrSelfEdge,
		},
		{
			name:    "empty source",
			edge:    Edge{Target: "b", Kind: CausalEdge},
			wantErr: ErrDanglingEdge,
		},
		{
			name:    "unknown kind",
			edge:    Edge{Source: "a", Target: "b", Kind: "implies"},
			wantErr: ErrUnknownEdgeKind,
		},
		{
			name:    "weight above one",
			edge:    Edge{Source: "a", Target: "b", Kind: CausalEdge, Weight: Float64(1.5)},
			wantErr: ErrWeightDomain,
		},
		{
			name:    "bad polarity",
			edge:    Edge{Source: "a", Target: "b", Kind: CausalEdge, Polarity: "inverse"},
			wantErr: ErrUnknownPolarity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edge.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Edge.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEdgeEffectiveWeight(t *testing.T) {
	e := Edge{Source: "a", Target: "b", Kind: SupportEdge}
	if got := e.EffectiveWeight(); got != 1 {
		t.Errorf("EffectiveWeight() = %v, want 1 for unset weight", got)
	}
	e.Weight = Float64(0.25)
	if got := e.EffectiveWeight(); got != 0.25 {
		t.Errorf("EffectiveWeight() = %v, want 0.25", got)
	}
	e.Weight = Float64(0)
	if got := e.EffectiveWeight(); got != 0 {
		t.Errorf("EffectiveWeight() = %v, want 0 for explicit zero weight", got)
	}
}

func TestEdgeID(t *testing.T) {
	if got := (Edge{Source: "rain", Target: "wet", Kind: CausalEdge}).ID(); got != "rain->wet#causal" {
		t.Errorf("Edge.ID() = %q, want %q", got, "rain->wet#causal")
	}
}

func TestPolaritySign(t *testing.T) {
	tests := []struct {
		polarity Polarity
		want     float64
	}{
		{PositivePolarity, 1},
		{NegativePolarity, -1},
		{"", 1},
	}
	for _, tt := range tests {
		if got := tt.polarity.Sign(); got != tt.want {
			t.Errorf("Polarity(%q).Sign() = %v, want %v", tt.polarity, got, tt.want)
		}
	}
}

func TestNodePriorOr(t *testing.T) {
	n := Node{ID: "x", Kind: HypothesisNode}
	if got := n.PriorOr(0); got != 0 {
		t.Errorf("PriorOr(0) = %v, want 0 when nothing set", got)
	}
	n.Confidence = Float64(0.7)
	if got := n.PriorOr(0); got != 0.7 {
		t.Errorf("PriorOr(0) = %v, want confidence fallback 0.7", got)
	}
	n.Prior = Float64(0.3)
	if got := n.PriorOr(0); got != 0.3 {
		t.Errorf("PriorOr(0) = %v, want recorded prior 0.3", got)
	}
}
