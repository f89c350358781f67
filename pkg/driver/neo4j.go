package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/cogito/pkg/types"
)

// Neo4jDriver implements the GraphStore interface for Neo4j databases.
// Nodes are stored with the ReasoningNode label and edges as RELATES
// relationships, both carrying the owning graph id.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   driver,
		database: database,
	}, nil
}

// SaveGraph replaces the stored copy of the graph with the snapshot.
func (n *Neo4jDriver) SaveGraph(ctx context.Context, graphID string, g *types.Graph) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	nodeRows := make([]map[string]any, 0, g.NodeCount())
	for _, node := range g.Nodes() {
		nodeRows = append(nodeRows, nodeToRow(node))
	}
	edgeRows := make([]map[string]any, 0, g.EdgeCount())
	for _, edge := range g.Edges() {
		edgeRows = append(edgeRows, map[string]any{
			"source":        edge.Source,
			"target":        edge.Target,
			"kind":          string(edge.Kind),
			"weight":        edge.EffectiveWeight(),
			"polarity":      string(edge.Polarity),
			"justification": edge.Justification,
		})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		deleteQuery := `
			MATCH (n:ReasoningNode {graph_id: $graphID})
			DETACH DELETE n
		`
		if _, err := tx.Run(ctx, deleteQuery, map[string]any{"graphID": graphID}); err != nil {
			return nil, err
		}

		nodeQuery := `
			UNWIND $rows AS row
			CREATE (n:ReasoningNode)
			SET n = row, n.graph_id = $graphID
		`
		if _, err := tx.Run(ctx, nodeQuery, map[string]any{"rows": nodeRows, "graphID": graphID}); err != nil {
			return nil, err
		}

		edgeQuery := `
			UNWIND $rows AS row
			MATCH (src:ReasoningNode {graph_id: $graphID, id: row.source})
			MATCH (tgt:ReasoningNode {graph_id: $graphID, id: row.target})
			CREATE (src)-[:RELATES {
				kind: row.kind,
				weight: row.weight,
				polarity: row.polarity,
				justification: row.justification
			}]->(tgt)
		`
		if _, err := tx.Run(ctx, edgeQuery, map[string]any{"rows": edgeRows, "graphID": graphID}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save graph %s: %w", graphID, err)
	}
	return nil
}

// LoadGraph rebuilds a snapshot from the stored copy.
func (n *Neo4jDriver) LoadGraph(ctx context.Context, graphID string) (*types.Graph, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var doc types.Document

		nodeQuery := `
			MATCH (n:ReasoningNode {graph_id: $graphID})
			RETURN n
			ORDER BY n.id
		`
		nodeRes, err := tx.Run(ctx, nodeQuery, map[string]any{"graphID": graphID})
		if err != nil {
			return nil, err
		}
		nodeRecords, err := nodeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range nodeRecords {
			value, found := record.Get("n")
			if !found {
				continue
			}
			dbNode, ok := value.(neo4j.Node)
			if !ok {
				return nil, fmt.Errorf("unexpected type for node: %T", value)
			}
			node, err := nodeFromProps(dbNode.Props)
			if err != nil {
				return nil, err
			}
			doc.Nodes = append(doc.Nodes, node)
		}

		edgeQuery := `
			MATCH (src:ReasoningNode {graph_id: $graphID})-[r:RELATES]->(tgt:ReasoningNode {graph_id: $graphID})
			RETURN src.id AS source, tgt.id AS target, r.kind AS kind,
				r.weight AS weight, r.polarity AS polarity, r.justification AS justification
			ORDER BY source, target, kind
		`
		edgeRes, err := tx.Run(ctx, edgeQuery, map[string]any{"graphID": graphID})
		if err != nil {
			return nil, err
		}
		edgeRecords, err := edgeRes.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, record := range edgeRecords {
			doc.Edges = append(doc.Edges, types.Edge{
				Source:        stringValue(record.AsMap()["source"]),
				Target:        stringValue(record.AsMap()["target"]),
				Kind:          types.EdgeKind(stringValue(record.AsMap()["kind"])),
				Weight:        types.Float64(floatValue(record.AsMap()["weight"])),
				Polarity:      types.Polarity(stringValue(record.AsMap()["polarity"])),
				Justification: stringValue(record.AsMap()["justification"]),
			})
		}

		return doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %s: %w", graphID, err)
	}

	doc := result.(types.Document)
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("graph %s: %w", graphID, ErrGraphNotFound)
	}
	return doc.Graph()
}

// DeleteGraph removes every stored node and edge of the graph.
func (n *Neo4jDriver) DeleteGraph(ctx context.Context, graphID string) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n:ReasoningNode {graph_id: $graphID})
			DETACH DELETE n
		`
		_, err := tx.Run(ctx, query, map[string]any{"graphID": graphID})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", graphID, err)
	}
	return nil
}

// Close releases the underlying connection.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

func nodeToRow(node types.Node) map[string]any {
	row := map[string]any{
		"id":                node.ID,
		"kind":              string(node.Kind),
		"activation":        node.Activation,
		"epistemic_context": node.EpistemicContext,
		"source":            node.Source,
		"perspective":       node.Perspective,
	}
	if node.Confidence != nil {
		row["confidence"] = *node.Confidence
	}
	if node.Prior != nil {
		row["prior"] = *node.Prior
	}
	if node.Timestamp != nil {
		row["timestamp"] = node.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	if len(node.IncompatibleWith) > 0 {
		row["incompatible_with"] = toAnySlice(node.IncompatibleWith)
	}
	if len(node.Meta) > 0 {
		if data, err := json.Marshal(node.Meta); err == nil {
			row["meta"] = string(data)
		}
	}
	return row
}

func nodeFromProps(props map[string]any) (types.Node, error) {
	node := types.Node{
		ID:               stringValue(props["id"]),
		Kind:             types.NodeKind(stringValue(props["kind"])),
		Activation:       floatValue(props["activation"]),
		EpistemicContext: stringValue(props["epistemic_context"]),
		Source:           stringValue(props["source"]),
		Perspective:      stringValue(props["perspective"]),
	}
	if v, ok := props["confidence"].(float64); ok {
		node.Confidence = types.Float64(v)
	}
	if v, ok := props["prior"].(float64); ok {
		node.Prior = types.Float64(v)
	}
	if v, ok := props["timestamp"].(string); ok && v != "" {
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return types.Node{}, fmt.Errorf("bad timestamp on node %s: %w", node.ID, err)
		}
		node.Timestamp = &ts
	}
	if v, ok := props["incompatible_with"].([]any); ok {
		for _, item := range v {
			node.IncompatibleWith = append(node.IncompatibleWith, stringValue(item))
		}
	}
	if v, ok := props["meta"].(string); ok && v != "" {
		if err := json.Unmarshal([]byte(v), &node.Meta); err != nil {
			return types.Node{}, fmt.Errorf("bad metadata on node %s: %w", node.ID, err)
		}
	}
	return node, nil
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	}
	return 0
}
