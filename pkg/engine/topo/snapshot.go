package topo

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Vertex colours used by the depth-first strategy.
const (
	White = "white" // unvisited
	Gray  = "gray"  // on the recursion stack
	Black = "black" // finished
)

// Snapshot captures the algorithm state at one step. The graph itself never
// changes during a sort; only the bookkeeping does.
type Snapshot struct {
	Algorithm string            `json:"algorithm"`
	Vertices  []string          `json:"vertices"`
	Edges     []Edge            `json:"edges"`
	InDegree  map[string]int    `json:"in_degree,omitempty"`
	Color     map[string]string `json:"color,omitempty"`
	Queue     []string          `json:"queue,omitempty"`
	Stack     []string          `json:"stack,omitempty"`
	Order     []string          `json:"order"`
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Algorithm: s.Algorithm,
		Vertices:  slices.Clone(s.Vertices),
		Edges:     slices.Clone(s.Edges),
		InDegree:  maps.Clone(s.InDegree),
		Color:     maps.Clone(s.Color),
		Queue:     slices.Clone(s.Queue),
		Stack:     slices.Clone(s.Stack),
		Order:     slices.Clone(s.Order),
	}
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() trace.Snapshot { return s.clone() }

// Frame draws the graph with placed (Kahn) or finished (DFS) vertices
// marked, and the queue, stack and order as lists.
func (s Snapshot) Frame() trace.Frame {
	var f trace.Frame
	placed := make(map[string]bool, len(s.Order))
	for _, v := range s.Order {
		placed[v] = true
	}
	for _, v := range s.Vertices {
		label := v
		switch {
		case s.InDegree != nil:
			label = fmt.Sprintf("%s (in %d)", v, s.InDegree[v])
		case s.Color != nil:
			label = fmt.Sprintf("%s (%s)", v, s.Color[v])
		}
		f.Nodes = append(f.Nodes, trace.FrameNode{ID: v, Label: label, Marked: placed[v]})
	}
	for _, e := range s.Edges {
		f.Edges = append(f.Edges, trace.FrameEdge{From: e.From, To: e.To})
	}
	if s.Algorithm == AlgorithmKahn {
		f.Lists = append(f.Lists, trace.List{Name: "queue", Items: nonNil(s.Queue)})
	} else {
		f.Lists = append(f.Lists, trace.List{Name: "stack", Items: nonNil(s.Stack)})
	}
	f.Lists = append(f.Lists, trace.List{Name: "order", Items: nonNil(s.Order)})
	return f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
