package validation

import (
	"github.com/soundprediction/cogito/pkg/types"
)

type color uint8

const (
	white color = iota
	gray
	black
)

// findCycles runs a three-color depth-first search over the subgraph of the
// given edge kind and returns every cycle closed by a back edge. Roots are
// visited in ascending node id order and each node's successors in ascending
// target id order, so the result is deterministic. Cycles are rotated to
// start at their smallest member id.
func findCycles(g *types.Graph, kind types.EdgeKind) [][]string {
	colors := make(map[string]color, g.NodeCount())
	var stack []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		colors[id] = gray
		stack = append(stack, id)
		for _, e := range g.OutEdges(id, kind) {
			switch colors[e.Target] {
			case white:
				visit(e.Target)
			case gray:
				cycles = append(cycles, extractCycle(stack, e.Target))
			}
		}
		stack = stack[:len(stack)-1]
		colors[id] = black
	}

	for _, id := range g.NodeIDs() {
		if colors[id] == white {
			visit(id)
		}
	}
	return cycles
}

// extractCycle copies the stack suffix from the back edge's target onward
// and rotates it so the smallest id comes first.
func extractCycle(stack []string, from string) []string {
	start := 0
	for i, id := range stack {
		if id == from {
			start = i
			break
		}
	}
	cycle := append([]string(nil), stack[start:]...)

	min := 0
	for i, id := range cycle {
		if id < cycle[min] {
			min = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, cycle[min:]...)
	rotated = append(rotated, cycle[:min]...)
	return rotated
}
