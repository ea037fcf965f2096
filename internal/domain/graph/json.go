package graph

import (
	"encoding/json"
	"fmt"
)

// graphJSON is the wire form of a Graph: explicit node list (index = node
// id) and edge list, plus the info annotation.
type graphJSON struct {
	Info  string       `json:"info,omitempty"`
	Nodes []Attributes `json:"nodes"`
	Edges []edgeJSON   `json:"edges"`
}

type edgeJSON struct {
	U     int        `json:"u"`
	V     int        `json:"v"`
	Attrs Attributes `json:"attrs,omitempty"`
}

// MarshalJSON serializes the graph in node-list/edge-list form.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := graphJSON{
		Info:  g.Info,
		Nodes: g.nodes,
		Edges: make([]edgeJSON, len(g.edges)),
	}
	if out.Nodes == nil {
		out.Nodes = []Attributes{}
	}
	for i, e := range g.edges {
		out.Edges[i] = edgeJSON{U: e.U, V: e.V, Attrs: e.Attrs}
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds a graph from its wire form.  Edge endpoints are
// validated against the node count.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var in graphJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rebuilt := Graph{Info: in.Info}
	for _, attrs := range in.Nodes {
		rebuilt.AddNode(attrs)
	}
	for _, e := range in.Edges {
		if e.U < 0 || e.U >= rebuilt.Order() || e.V < 0 || e.V >= rebuilt.Order() {
			return fmt.Errorf("graph: edge %d-%d references node outside 0..%d", e.U, e.V, rebuilt.Order()-1)
		}
		rebuilt.AddEdge(e.U, e.V, e.Attrs)
	}
	*g = rebuilt
	return nil
}
