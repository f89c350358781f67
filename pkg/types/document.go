package types

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a snapshot. It carries nodes and edges
// only; adjacency and version bookkeeping are rebuilt on load.
type Document struct {
	Version int    `json:"version" yaml:"version"`
	Nodes   []Node `json:"nodes" yaml:"nodes"`
	Edges   []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// DocumentFromGraph captures a snapshot as a Document, nodes in ascending
// id order and edges in insertion order.
func DocumentFromGraph(g *Graph) Document {
	return Document{Version: g.Version(), Nodes: g.Nodes(), Edges: g.Edges()}
}

// Graph assembles the document into a validated snapshot, restoring the
// recorded version.
func (d Document) Graph() (*Graph, error) {
	g, err := NewGraph(d.Nodes, d.Edges)
	if err != nil {
		return nil, err
	}
	g.version = d.Version
	return g, nil
}

// JSON renders the document as indented JSON.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML renders the document as YAML.
func (d Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// ParseJSON decodes a JSON document and assembles the snapshot.
func ParseJSON(data []byte) (*Graph, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.Graph()
}

// ParseYAML decodes a YAML document and assembles the snapshot.
func ParseYAML(data []byte) (*Graph, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.Graph()
}
