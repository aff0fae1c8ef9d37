package trie

import (
	"slices"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Node is a trie node. Children keep insertion order. Words lists every
// stored word whose path passes through the node; it is kept for display and
// plays no part in lookups.
type Node struct {
	ID       string   `json:"id"`
	Char     string   `json:"char"`
	End      bool     `json:"end"`
	Words    []string `json:"words,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

func (n *Node) child(c string) *Node {
	for _, ch := range n.Children {
		if ch.Char == c {
			return ch
		}
	}
	return nil
}

func (n *Node) removeChild(id string) {
	n.Children = slices.DeleteFunc(n.Children, func(c *Node) bool { return c.ID == id })
	if len(n.Children) == 0 {
		n.Children = nil
	}
}

func (n *Node) dropWord(w string) {
	if i := slices.Index(n.Words, w); i >= 0 {
		n.Words = slices.Delete(n.Words, i, i+1)
	}
	if len(n.Words) == 0 {
		n.Words = nil
	}
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{ID: n.ID, Char: n.Char, End: n.End, Words: slices.Clone(n.Words)}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Snapshot is a captured copy of the trie plus, during prefix collection,
// the words collected so far.
type Snapshot struct {
	Root      *Node    `json:"root"`
	Collected []string `json:"collected,omitempty"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() trace.Snapshot {
	return Snapshot{Root: s.Root.Clone(), Collected: slices.Clone(s.Collected)}
}

// Frame lays out the trie depth-first in child order. End-of-word nodes are
// marked and edges carry the child's character.
func (s Snapshot) Frame() trace.Frame {
	var f trace.Frame
	if s.Root == nil {
		return f
	}
	f.Root = s.Root.ID
	var walk func(n *Node)
	walk = func(n *Node) {
		label := n.Char
		if n == s.Root {
			label = "root"
		}
		f.Nodes = append(f.Nodes, trace.FrameNode{ID: n.ID, Label: label, Marked: n.End})
		for _, c := range n.Children {
			f.Edges = append(f.Edges, trace.FrameEdge{From: n.ID, To: c.ID, Label: c.Char})
			walk(c)
		}
	}
	walk(s.Root)
	if s.Collected != nil {
		f.Lists = append(f.Lists, trace.List{Name: "collected", Items: slices.Clone(s.Collected)})
	}
	return f
}
