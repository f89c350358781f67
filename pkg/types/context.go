package types

// contextKey is a private type for context values set by the server and
// read by telemetry.
type contextKey string

const (
	// ContextKeyGraphID carries the graph id of the request being served.
	ContextKeyGraphID contextKey = "graph_id"
	// ContextKeyOperation carries the engine operation name.
	ContextKeyOperation contextKey = "operation"
)
