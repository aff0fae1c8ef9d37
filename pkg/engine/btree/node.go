package btree

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Node is a B-Tree node. Children are exclusively owned by their parent.
type Node struct {
	ID       string  `json:"id"`
	Keys     []int   `json:"keys"`
	Children []*Node `json:"children,omitempty"`
}

// Leaf reports whether n has no children.
func (n *Node) Leaf() bool { return len(n.Children) == 0 }

// Clone returns a deep copy of the subtree rooted at n. Ids are preserved.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{ID: n.ID, Keys: slices.Clone(n.Keys)}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// label renders the keys as "10 | 20 | 30".
func (n *Node) label() string {
	if len(n.Keys) == 0 {
		return "∅"
	}
	parts := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		parts[i] = strconv.Itoa(k)
	}
	return strings.Join(parts, " | ")
}

// Snapshot is a captured copy of the tree.
type Snapshot struct {
	Degree int   `json:"degree"`
	Root   *Node `json:"root"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() trace.Snapshot {
	s.Root = s.Root.Clone()
	return s
}

// Frame lays the tree out breadth-first with edges in child order.
func (s Snapshot) Frame() trace.Frame {
	var f trace.Frame
	if s.Root == nil {
		return f
	}
	f.Root = s.Root.ID
	queue := []*Node{s.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		f.Nodes = append(f.Nodes, trace.FrameNode{ID: n.ID, Label: n.label(), Marked: n.Leaf()})
		for i, ch := range n.Children {
			f.Edges = append(f.Edges, trace.FrameEdge{From: n.ID, To: ch.ID, Label: strconv.Itoa(i)})
			queue = append(queue, ch)
		}
	}
	return f
}

// Find returns the node with the given id in the snapshot.
func (s Snapshot) Find(id string) (*Node, bool) {
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if n == nil {
			return nil
		}
		if n.ID == id {
			return n
		}
		for _, ch := range n.Children {
			if f := walk(ch); f != nil {
				return f
			}
		}
		return nil
	}
	n := walk(s.Root)
	return n, n != nil
}
