package analysis

import (
	"container/heap"
	"strings"

	"github.com/soundprediction/cogito/pkg/types"
)

// PathConfig bounds the critical path search.
type PathConfig struct {
	// TopK is how many paths to return.
	TopK int
	// MaxPathLength caps path length in nodes. Zero means the node count.
	MaxPathLength int
	// MaxPathsExplored caps how many partial paths the search expands.
	MaxPathsExplored int
}

// WithDefaults fills unset fields with defaults.
func (c PathConfig) WithDefaults(g *types.Graph) PathConfig {
	if c.TopK <= 0 {
		c.TopK = 3
	}
	if c.MaxPathLength <= 0 {
		c.MaxPathLength = g.NodeCount()
	}
	if c.MaxPathsExplored <= 0 {
		c.MaxPathsExplored = 10000
	}
	return c
}

// Path is a justification chain ending at the queried target. Score is the
// product of each link's edge weight times its source confidence; a source
// without confidence counts as fully confident.
type Path struct {
	NodeIDs []string `json:"node_ids" yaml:"node_ids"`
	EdgeIDs []string `json:"edge_ids" yaml:"edge_ids"`
	Score   float64  `json:"score" yaml:"score"`
}

// PathsResult carries the ranked paths. Truncated is set when the explore
// cap stopped the search before it could either fill TopK or exhaust the
// graph.
type PathsResult struct {
	Paths     []Path `json:"paths" yaml:"paths"`
	Truncated bool   `json:"truncated" yaml:"truncated"`
}

// CriticalPaths returns the top-K simple paths of support and dependency
// edges terminating at target, ranked by descending score. Ties rank the
// shorter path first, then the lexicographically smaller node sequence.
// The search is best-first backwards from the target; because every link
// factor lies in [0,1], partial scores never increase, so paths pop in
// final rank order.
func CriticalPaths(g *types.Graph, target string, config PathConfig) (PathsResult, error) {
	if !g.HasNode(target) {
		return PathsResult{}, &types.MalformedGraphError{Reason: types.ErrNodeNotFound, Subject: target}
	}
	config = config.WithDefaults(g)

	pq := &pathQueue{{nodeIDs: []string{target}, score: 1}}
	heap.Init(pq)

	var result PathsResult
	explored := 0
	for pq.Len() > 0 && len(result.Paths) < config.TopK {
		if explored >= config.MaxPathsExplored {
			result.Truncated = true
			break
		}
		explored++

		cur := heap.Pop(pq).(*partialPath)
		if len(cur.nodeIDs) > 1 {
			result.Paths = append(result.Paths, Path{
				NodeIDs: cur.nodeIDs,
				EdgeIDs: cur.edgeIDs,
				Score:   cur.score,
			})
		}
		if len(cur.nodeIDs) >= config.MaxPathLength {
			continue
		}

		head := cur.nodeIDs[0]
		for _, e := range g.InEdges(head, types.SupportEdge, types.DependencyEdge) {
			if cur.visited(e.Source) {
				continue
			}
			src, _ := g.Node(e.Source)
			link := e.EffectiveWeight() * src.ConfidenceOr(1)
			next := &partialPath{
				nodeIDs: prepend(e.Source, cur.nodeIDs),
				edgeIDs: prepend(e.ID(), cur.edgeIDs),
				score:   cur.score * link,
			}
			heap.Push(pq, next)
		}
	}

	return result, nil
}

func prepend(head string, rest []string) []string {
	out := make([]string, 0, len(rest)+1)
	out = append(out, head)
	out = append(out, rest...)
	return out
}

type partialPath struct {
	nodeIDs []string
	edgeIDs []string
	score   float64
}

func (p *partialPath) visited(id string) bool {
	for _, n := range p.nodeIDs {
		if n == id {
			return true
		}
	}
	return false
}

// pathQueue orders partial paths by descending score, then ascending
// length, then lexicographic node sequence.
type pathQueue []*partialPath

func (q pathQueue) Len() int { return len(q) }

func (q pathQueue) Less(i, j int) bool {
	if q[i].score != q[j].score {
		return q[i].score > q[j].score
	}
	if len(q[i].nodeIDs) != len(q[j].nodeIDs) {
		return len(q[i].nodeIDs) < len(q[j].nodeIDs)
	}
	return strings.Join(q[i].nodeIDs, "\x00") < strings.Join(q[j].nodeIDs, "\x00")
}

func (q pathQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *pathQueue) Push(x any) { *q = append(*q, x.(*partialPath)) }

func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
