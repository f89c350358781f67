package types

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain event raised while a graph is validated or edited.
// Handlers receive events synchronously and must not block.
type Event interface {
	EventID() string
	EventName() string
	OccurredAt() time.Time
}

// EventHandler consumes domain events. A nil handler disables dispatch.
type EventHandler func(Event)

type eventMeta struct {
	ID string    `json:"event_id" yaml:"event_id"`
	At time.Time `json:"occurred_at" yaml:"occurred_at"`
}

func newEventMeta() eventMeta {
	return eventMeta{ID: uuid.NewString(), At: time.Now().UTC()}
}

func (m eventMeta) EventID() string       { return m.ID }
func (m eventMeta) OccurredAt() time.Time { return m.At }

// CycleDetectedEvent is raised when validation finds a causal or refinement
// cycle. NodeIDs lists the cycle members in the order the cycle closes.
type CycleDetectedEvent struct {
	eventMeta
	GraphID string   `json:"graph_id,omitempty" yaml:"graph_id,omitempty"`
	Kind    EdgeKind `json:"kind" yaml:"kind"`
	NodeIDs []string `json:"node_ids" yaml:"node_ids"`
}

func (CycleDetectedEvent) EventName() string { return "cycle_detected" }

// ContradictionDetectedEvent is raised when validation finds a belief
// conflict between two nodes.
type ContradictionDetectedEvent struct {
	eventMeta
	GraphID string `json:"graph_id,omitempty" yaml:"graph_id,omitempty"`
	NodeA   string `json:"node_a" yaml:"node_a"`
	NodeB   string `json:"node_b" yaml:"node_b"`
}

func (ContradictionDetectedEvent) EventName() string { return "contradiction_detected" }

// GraphUpdatedEvent is raised when a derived snapshot replaces its parent,
// after propagation or an applied edit.
type GraphUpdatedEvent struct {
	eventMeta
	GraphID     string `json:"graph_id,omitempty" yaml:"graph_id,omitempty"`
	FromVersion int    `json:"from_version" yaml:"from_version"`
	ToVersion   int    `json:"to_version" yaml:"to_version"`
	Change      string `json:"change" yaml:"change"`
}

func (GraphUpdatedEvent) EventName() string { return "graph_updated" }

// NewCycleDetected constructs a CycleDetectedEvent.
func NewCycleDetected(graphID string, kind EdgeKind, nodeIDs []string) CycleDetectedEvent {
	return CycleDetectedEvent{eventMeta: newEventMeta(), GraphID: graphID, Kind: kind, NodeIDs: nodeIDs}
}

// NewContradictionDetected constructs a ContradictionDetectedEvent with the
// pair in ascending order.
func NewContradictionDetected(graphID, a, b string) ContradictionDetectedEvent {
	if b < a {
		a, b = b, a
	}
	return ContradictionDetectedEvent{eventMeta: newEventMeta(), GraphID: graphID, NodeA: a, NodeB: b}
}

// NewGraphUpdated constructs a GraphUpdatedEvent.
func NewGraphUpdated(graphID string, from, to int, change string) GraphUpdatedEvent {
	return GraphUpdatedEvent{eventMeta: newEventMeta(), GraphID: graphID, FromVersion: from, ToVersion: to, Change: change}
}
