package topo

import (
	"slices"

	"github.com/matzehuels/algotrace/pkg/errors"
)

// ErrInvalidVertexID is returned by [Graph.AddVertex] and [Graph.AddEdge]
// for an empty vertex ID.
var ErrInvalidVertexID = errors.New(errors.ErrCodeInvalidConfig, "vertex ID must not be empty")

// Edge is a directed edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a directed graph with insertion-ordered vertices and adjacency
// lists. Self loops and parallel edges are allowed.
//
// The zero value is not usable; use [NewGraph] or [ParseEdges].
// Graph is not safe for concurrent use.
type Graph struct {
	vertices []string
	index    map[string]int
	edges    []Edge
	outgoing map[string][]string // vertex -> successors
	incoming map[string][]string // vertex -> predecessors
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		index:    make(map[string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// ParseEdges builds a graph from edges written as "FROM->TO".
// It returns an INVALID_CONFIG error for a malformed edge.
func ParseEdges(specs []string) (*Graph, error) {
	if err := errors.ValidateEdges(specs); err != nil {
		return nil, err
	}
	g := NewGraph()
	for _, s := range specs {
		from, to, _ := errors.ValidateEdge(s)
		if err := g.AddEdge(from, to); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddVertex adds id if it is not already present.
func (g *Graph) AddVertex(id string) error {
	if id == "" {
		return ErrInvalidVertexID
	}
	if _, ok := g.index[id]; !ok {
		g.index[id] = len(g.vertices)
		g.vertices = append(g.vertices, id)
	}
	return nil
}

// AddEdge adds the edge from->to, adding missing endpoints as vertices.
func (g *Graph) AddEdge(from, to string) error {
	if err := g.AddVertex(from); err != nil {
		return err
	}
	if err := g.AddVertex(to); err != nil {
		return err
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// Vertices returns the vertices in first-appearance order.
func (g *Graph) Vertices() []string { return slices.Clone(g.vertices) }

// Edges returns a copy of the edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the targets of id's outgoing edges in edge order.
// The returned slice should not be modified.
func (g *Graph) Successors(id string) []string { return g.outgoing[id] }

// Predecessors returns the sources of id's incoming edges.
// The returned slice should not be modified.
func (g *Graph) Predecessors(id string) []string { return g.incoming[id] }

// InDegree returns the number of edges into id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// IsOrder reports whether order lists every vertex exactly once with every
// edge pointing forward.
func (g *Graph) IsOrder(order []string) bool {
	if len(order) != len(g.vertices) {
		return false
	}
	pos := make(map[string]int, len(order))
	for i, v := range order {
		if _, ok := g.index[v]; !ok {
			return false
		}
		if _, dup := pos[v]; dup {
			return false
		}
		pos[v] = i
	}
	for _, e := range g.edges {
		if pos[e.From] >= pos[e.To] {
			return false
		}
	}
	return true
}
