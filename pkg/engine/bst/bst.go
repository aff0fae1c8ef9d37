// Package bst implements an instrumented binary search tree with stepwise
// deletion.
//
// Deletion distinguishes three cases, each with its own step sequence:
// a leaf is removed directly, a node with one child is replaced by that child,
// and a node with two children takes the value of its in-order successor (the
// leftmost node of its right subtree), after which the successor is deleted
// from the right subtree. The successor has no left child, so the recursive
// deletion is always a leaf or one-child case.
//
// Equal values are inserted into the right subtree.
package bst

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Step kinds emitted by the BST engine.
const (
	KindCompare         trace.Kind = "compare"
	KindInsertNode      trace.Kind = "insert_node"
	KindFound           trace.Kind = "found"
	KindNotFound        trace.Kind = "not_found"
	KindCaseLeaf        trace.Kind = "case_leaf"
	KindCaseOneChild    trace.Kind = "case_one_child"
	KindCaseTwoChildren trace.Kind = "case_two_children"
	KindSuccessorStep   trace.Kind = "successor_step"
	KindSuccessorFound  trace.Kind = "successor_found"
	KindCopySuccessor   trace.Kind = "copy_successor"
	KindRemoveLeaf      trace.Kind = "remove_leaf"
	KindSpliceChild     trace.Kind = "splice_child"
)

// Node is a BST node. Children are exclusively owned by their parent.
type Node struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
	Left  *Node  `json:"left,omitempty"`
	Right *Node  `json:"right,omitempty"`
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{ID: n.ID, Value: n.Value, Left: n.Left.Clone(), Right: n.Right.Clone()}
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

// Frame lays the tree out breadth-first; edges are labelled L and R.
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
		f.Nodes = append(f.Nodes, trace.FrameNode{ID: n.ID, Label: strconv.Itoa(n.Value)})
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

// Tree is a binary search tree of ints. It is not safe for concurrent use.
type Tree struct {
	root *Node
	ids  *trace.IDs
	size int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{ids: trace.NewIDs("n")}
}

// Len returns the number of nodes.
func (tr *Tree) Len() int { return tr.size }

// Snapshot returns a deep copy of the tree.
func (tr *Tree) Snapshot() Snapshot { return Snapshot{Root: tr.root.Clone()} }

// Load inserts values without recording a trace.
func (tr *Tree) Load(values ...int) {
	for _, v := range values {
		tr.insert(nil, v)
	}
}

// Insert adds value and returns the steps taken.
func (tr *Tree) Insert(value int) trace.Log {
	rec := trace.NewRecorder()
	tr.insert(rec, value)
	return rec.Log()
}

// Search reports whether value is present.
func (tr *Tree) Search(value int) (bool, trace.Log) {
	rec := trace.NewRecorder()
	slot := tr.find(rec, &tr.root, value)
	if *slot == nil {
		tr.record(rec, KindNotFound, nil, trace.Payload{"value": value}, fmt.Sprintf("%d is not in the tree", value))
		return false, rec.Log()
	}
	tr.record(rec, KindFound, []string{(*slot).ID}, trace.Payload{"value": value},
		fmt.Sprintf("found %d at node %s", value, (*slot).ID))
	return true, rec.Log()
}

// Delete removes one node holding value. When value is absent the trace ends
// with a not_found step and the tree is unchanged.
func (tr *Tree) Delete(value int) (bool, trace.Log) {
	rec := trace.NewRecorder()
	ok := tr.delete(rec, &tr.root, value)
	if ok {
		tr.size--
	}
	return ok, rec.Log()
}

// InOrder returns the values in sorted order.
func (tr *Tree) InOrder() []int {
	var out []int
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		walk(n.Left)
		out = append(out, n.Value)
		walk(n.Right)
	}
	walk(tr.root)
	return out
}

func (tr *Tree) record(rec *trace.Recorder, kind trace.Kind, focus []string, p trace.Payload, narrative string) {
	if rec == nil {
		return
	}
	rec.Record(kind, focus, p, tr.Snapshot(), narrative)
}

func (tr *Tree) insert(rec *trace.Recorder, value int) {
	slot := &tr.root
	for *slot != nil {
		n := *slot
		if value < n.Value {
			tr.compare(rec, n, value, "left")
			slot = &n.Left
		} else {
			tr.compare(rec, n, value, "right")
			slot = &n.Right
		}
	}
	n := &Node{ID: tr.ids.Next(), Value: value}
	*slot = n
	tr.size++
	tr.record(rec, KindInsertNode, []string{n.ID}, trace.Payload{"value": value},
		fmt.Sprintf("place %d as new node %s", value, n.ID))
}

func (tr *Tree) compare(rec *trace.Recorder, n *Node, value int, dir string) {
	var narrative string
	switch dir {
	case "left":
		narrative = fmt.Sprintf("%d < %d: go left", value, n.Value)
	case "right":
		narrative = fmt.Sprintf("%d >= %d: go right", value, n.Value)
	default:
		narrative = fmt.Sprintf("%d == %d: match", value, n.Value)
	}
	tr.record(rec, KindCompare, []string{n.ID}, trace.Payload{"value": value, "against": n.Value, "direction": dir}, narrative)
}

// find walks from slot toward value and returns the slot holding the first
// matching node, or the nil slot where it would be.
func (tr *Tree) find(rec *trace.Recorder, slot **Node, value int) **Node {
	for *slot != nil {
		n := *slot
		switch {
		case value < n.Value:
			tr.compare(rec, n, value, "left")
			slot = &n.Left
		case value > n.Value:
			tr.compare(rec, n, value, "right")
			slot = &n.Right
		default:
			tr.compare(rec, n, value, "equal")
			return slot
		}
	}
	return slot
}

func (tr *Tree) delete(rec *trace.Recorder, root **Node, value int) bool {
	slot := tr.find(rec, root, value)
	n := *slot
	if n == nil {
		tr.record(rec, KindNotFound, nil, trace.Payload{"value": value},
			fmt.Sprintf("%d not found: nothing to delete", value))
		return false
	}

	switch {
	case n.Left == nil && n.Right == nil:
		tr.record(rec, KindCaseLeaf, []string{n.ID}, trace.Payload{"value": value},
			fmt.Sprintf("node %s (%d) is a leaf", n.ID, value))
		*slot = nil
		tr.record(rec, KindRemoveLeaf, []string{n.ID}, trace.Payload{"value": value},
			fmt.Sprintf("remove leaf %s", n.ID))

	case n.Left == nil || n.Right == nil:
		child := n.Left
		if child == nil {
			child = n.Right
		}
		tr.record(rec, KindCaseOneChild, []string{n.ID, child.ID}, trace.Payload{"value": value},
			fmt.Sprintf("node %s (%d) has one child %s", n.ID, value, child.ID))
		*slot = child
		tr.record(rec, KindSpliceChild, []string{n.ID, child.ID}, trace.Payload{"value": value, "child": child.Value},
			fmt.Sprintf("splice %s (%d) into the place of %s", child.ID, child.Value, n.ID))

	default:
		tr.record(rec, KindCaseTwoChildren, []string{n.ID}, trace.Payload{"value": value},
			fmt.Sprintf("node %s (%d) has two children: use the in-order successor", n.ID, value))
		succ := n.Right
		tr.record(rec, KindSuccessorStep, []string{succ.ID}, trace.Payload{"value": succ.Value},
			fmt.Sprintf("step into right subtree at %s (%d)", succ.ID, succ.Value))
		for succ.Left != nil {
			succ = succ.Left
			tr.record(rec, KindSuccessorStep, []string{succ.ID}, trace.Payload{"value": succ.Value},
				fmt.Sprintf("go left to %s (%d)", succ.ID, succ.Value))
		}
		tr.record(rec, KindSuccessorFound, []string{succ.ID}, trace.Payload{"value": succ.Value},
			fmt.Sprintf("in-order successor is %s (%d)", succ.ID, succ.Value))

		old := n.Value
		n.Value = succ.Value
		tr.record(rec, KindCopySuccessor, []string{n.ID, succ.ID}, trace.Payload{"old": old, "value": succ.Value},
			fmt.Sprintf("copy %d into %s, replacing %d", succ.Value, n.ID, old))

		return tr.delete(rec, &n.Right, succ.Value)
	}
	return true
}
