package avl

import (
	"strconv"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Node is an AVL node with a cached height. A leaf has height 1.
type Node struct {
	ID     string `json:"id"`
	Value  int    `json:"value"`
	Height int    `json:"height"`
	Left   *Node  `json:"left,omitempty"`
	Right  *Node  `json:"right,omitempty"`
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{
		ID:     n.ID,
		Value:  n.Value,
		Height: n.Height,
		Left:   n.Left.Clone(),
		Right:  n.Right.Clone(),
	}
}

// Balance returns height(left) - height(right).
func (n *Node) Balance() int {
	if n == nil {
		return 0
	}
	return height(n.Left) - height(n.Right)
}

func height(n *Node) int {
	if n == nil {
		return 0
	}
	return n.Height
}

func (n *Node) fix() {
	n.Height = 1 + max(height(n.Left), height(n.Right))
}

// Snapshot is a captured copy of the tree.
type Snapshot struct {
	Root *Node `json:"root"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() trace.Snapshot {
	s.Root = s.Root.Clone()
	return s
}

// Frame lays out the tree breadth-first. Nodes outside [-1, 1] are marked.
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
		b := n.Balance()
		f.Nodes = append(f.Nodes, trace.FrameNode{
			ID:     n.ID,
			Label:  strconv.Itoa(n.Value),
			Marked: b > 1 || b < -1,
		})
		if n.Left != nil {
			f.Edges = append(f.Edges, trace.FrameEdge{From: n.ID, To: n.Left.ID, Label: "L"})
			queue = append(queue, n.Left)
		}
		if n.Right != nil {
			f.Edges = append(f.Edges, trace.FrameEdge{From: n.ID, To: n.Right.ID, Label: "R"})
			queue = append(queue, n.Right)
		}
	}
	return f
}
