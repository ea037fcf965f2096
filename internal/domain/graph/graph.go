// Package graph provides the attributed graph representation emitted by the
// molecule conversion pipeline: dense 0-based node ids with free-form
// attribute maps, labeled undirected edges, disjoint-union composition, and
// the V2000 molfile serialization of labeled graphs.
package graph

// Attributes is the free-form named-attribute map owned by each node and
// edge.  The converter populates the well-known keys below; modifiers add
// transform-specific keys such as "weight" and "type".
type Attributes map[string]interface{}

// Well-known node attribute keys.
const (
	// AttrLabel is the primary node label: a feature vector ([]float64) on
	// the 3D path, an element-type string on the 2D path.
	AttrLabel = "label"

	// AttrDiscreteLabel is the atomic number rendered as text.
	AttrDiscreteLabel = "discrete_label"

	// AttrAtomType is the element-type text label.
	AttrAtomType = "atom_type"

	// AttrID is the stable 0-based node id, assigned at build time and
	// preserved across disjoint-union renumbering.
	AttrID = "ID"

	// AttrWeight is the node weight assigned by reweighting modifiers.
	AttrWeight = "weight"

	// AttrPosition is the sequence position consumed by position-based
	// reweighting modifiers.
	AttrPosition = "position"
)

// Clone returns a shallow-value copy of the attribute map.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Edge is one undirected labeled edge; U and V are node ids.
type Edge struct {
	U, V  int
	Attrs Attributes
}

// Graph is an attributed undirected graph.  Node ids are a dense 0-based
// range with no gaps; edge endpoints always reference valid node ids.
// Info carries the original source-record text of the molecule the graph
// was built from.
type Graph struct {
	Info  string
	nodes []Attributes
	edges []Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// Order returns the number of nodes.
func (g *Graph) Order() int { return len(g.nodes) }

// Size returns the number of edges.
func (g *Graph) Size() int { return len(g.edges) }

// IsEmpty reports whether the graph has no nodes.  Empty graphs are treated
// as "no result" by the pipeline and are never emitted.
func (g *Graph) IsEmpty() bool { return len(g.nodes) == 0 }

// AddNode appends a node with the given attributes and returns its id.
func (g *Graph) AddNode(attrs Attributes) int {
	if attrs == nil {
		attrs = Attributes{}
	}
	g.nodes = append(g.nodes, attrs)
	return len(g.nodes) - 1
}

// AddEdge appends an undirected edge between existing nodes u and v.
// Adding an edge with an out-of-range endpoint is a programming error and
// panics.
func (g *Graph) AddEdge(u, v int, attrs Attributes) {
	if u < 0 || u >= len(g.nodes) || v < 0 || v >= len(g.nodes) {
		panic("graph: edge endpoint out of range")
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	g.edges = append(g.edges, Edge{U: u, V: v, Attrs: attrs})
}

// Node returns the attribute map of node id.  The map is shared; mutations
// are visible through the graph.
func (g *Graph) Node(id int) Attributes { return g.nodes[id] }

// Edges returns the edge list.  The returned slice is backing storage;
// callers must not append to it.
func (g *Graph) Edges() []Edge { return g.edges }

// Neighbors returns the ids of all nodes adjacent to id.
func (g *Graph) Neighbors(id int) []int {
	var out []int
	for _, e := range g.edges {
		switch id {
		case e.U:
			out = append(out, e.V)
		case e.V:
			out = append(out, e.U)
		}
	}
	return out
}

// IncidentEdges returns all edges incident on node id.
func (g *Graph) IncidentEdges(id int) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.U == id || e.V == id {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy of the graph structure with shallow-value
// attribute copies, so attribute mutations on the clone do not affect the
// original.
func (g *Graph) Clone() *Graph {
	out := &Graph{Info: g.Info}
	out.nodes = make([]Attributes, len(g.nodes))
	for i, attrs := range g.nodes {
		out.nodes[i] = attrs.Clone()
	}
	out.edges = make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out.edges[i] = Edge{U: e.U, V: e.V, Attrs: e.Attrs.Clone()}
	}
	return out
}

// DisjointUnion composes a and b into a new graph: a's nodes keep their
// ids, b's node ids are offset by a.Order(), and both edge sets are carried
// over unchanged apart from the renumbering.  Neither input is mutated.
// The union's Info is taken from a when set, otherwise from b, so a growing
// accumulator keeps the annotation of its first contribution.
func DisjointUnion(a, b *Graph) *Graph {
	out := a.Clone()
	if out.Info == "" {
		out.Info = b.Info
	}
	offset := len(out.nodes)
	for _, attrs := range b.nodes {
		out.nodes = append(out.nodes, attrs.Clone())
	}
	for _, e := range b.edges {
		out.edges = append(out.edges, Edge{U: e.U + offset, V: e.V + offset, Attrs: e.Attrs.Clone()})
	}
	return out
}
