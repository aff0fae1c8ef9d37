package trace

import "slices"

// Snapshot is a deep copy of an engine's structure captured by a step.
type Snapshot interface {
	// Frame projects the snapshot into a renderer-neutral view.
	Frame() Frame
	// Clone returns a deep copy sharing no memory with the receiver.
	Clone() Snapshot
}

// Frame is a renderer-neutral view of a snapshot. Tree and graph engines fill
// Nodes and Edges, the expression engine fills Lists, the LCS engine fills
// Table. A Frame is itself a Snapshot; decoded logs carry Frames.
type Frame struct {
	Root  string      `json:"root,omitempty"`
	Nodes []FrameNode `json:"nodes,omitempty"`
	Edges []FrameEdge `json:"edges,omitempty"`
	Lists []List      `json:"lists,omitempty"`
	Table *Table      `json:"table,omitempty"`
}

// FrameNode is a drawable node.
type FrameNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Marked bool   `json:"marked,omitempty"` // Engine-specific emphasis (end of word, visited, ...)
}

// FrameEdge is a drawable directed edge in child order.
type FrameEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// List is a named sequence such as an operator stack or a result order.
type List struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Table is a labelled grid of cells.
type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
	Marks   [][2]int   `json:"marks,omitempty"` // Highlighted (row, col) cells
}

// Frame returns f itself.
func (f Frame) Frame() Frame { return f }

// Node returns the node with the given id.
func (f Frame) Node(id string) (FrameNode, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return FrameNode{}, false
}

// Children returns the ids of id's children in edge order.
func (f Frame) Children(id string) []string {
	var out []string
	for _, e := range f.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// List returns the items of the named list.
func (f Frame) List(name string) ([]string, bool) {
	for _, l := range f.Lists {
		if l.Name == name {
			return l.Items, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Snapshot { return f.clone() }

func (f Frame) clone() Frame {
	out := Frame{
		Root:  f.Root,
		Nodes: slices.Clone(f.Nodes),
		Edges: slices.Clone(f.Edges),
	}
	if f.Lists != nil {
		out.Lists = make([]List, len(f.Lists))
		for i, l := range f.Lists {
			out.Lists[i] = List{Name: l.Name, Items: slices.Clone(l.Items)}
		}
	}
	if f.Table != nil {
		t := &Table{Headers: slices.Clone(f.Table.Headers), Marks: slices.Clone(f.Table.Marks)}
		t.Rows = make([][]string, len(f.Table.Rows))
		for i, r := range f.Table.Rows {
			t.Rows[i] = slices.Clone(r)
		}
		out.Table = t
	}
	return out
}
