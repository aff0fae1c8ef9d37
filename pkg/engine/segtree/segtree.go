// Package segtree implements an instrumented sum segment tree with traced
// point updates and range queries.
//
// Node ranges are split as [start, mid] and [mid+1, end]. An update descends
// only into the child whose range holds the index (the other child is
// recorded as skipped), overwrites the leaf, and then recomputes each
// ancestor as the sum of its children while the recursion unwinds.
package segtree

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// Step kinds emitted by the segment-tree engine.
const (
	KindVisit           trace.Kind = "visit"
	KindSkip            trace.Kind = "skip"
	KindLeafUpdate      trace.Kind = "leaf_update"
	KindRecompute       trace.Kind = "recompute"
	KindIndexOutOfRange trace.Kind = "index_out_of_range"
	KindFullOverlap     trace.Kind = "full_overlap"
	KindPartialOverlap  trace.Kind = "partial_overlap"
	KindCombine         trace.Kind = "combine"
	KindQueryResult     trace.Kind = "query_result"
	KindInvalidRange    trace.Kind = "invalid_range"
)

// Node covers the inclusive index range [Start, End].
type Node struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value int    `json:"value"`
	Left  *Node  `json:"left,omitempty"`
	Right *Node  `json:"right,omitempty"`
}

// Leaf reports whether n covers a single index.
func (n *Node) Leaf() bool { return n.Start == n.End }

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{
		ID: n.ID, Start: n.Start, End: n.End, Value: n.Value,
		Left: n.Left.Clone(), Right: n.Right.Clone(),
	}
}

func (n *Node) label() string {
	if n.Leaf() {
		return fmt.Sprintf("[%d] = %d", n.Start, n.Value)
	}
	return fmt.Sprintf("[%d..%d] = %d", n.Start, n.End, n.Value)
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

// Frame lays out the tree breadth-first with leaves marked, plus the leaf
// values as the "array" list.
func (s Snapshot) Frame() trace.Frame {
	var f trace.Frame
	if s.Root == nil {
		return f
	}
	f.Root = s.Root.ID
	var leaves []string
	queue := []*Node{s.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		f.Nodes = append(f.Nodes, trace.FrameNode{ID: n.ID, Label: n.label(), Marked: n.Leaf()})
		for _, c := range []*Node{n.Left, n.Right} {
			if c == nil {
				continue
			}
			f.Edges = append(f.Edges, trace.FrameEdge{From: n.ID, To: c.ID})
			queue = append(queue, c)
		}
	}
	inorderLeaves(s.Root, func(n *Node) { leaves = append(leaves, strconv.Itoa(n.Value)) })
	f.Lists = []trace.List{{Name: "array", Items: leaves}}
	return f
}

func inorderLeaves(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	if n.Leaf() {
		fn(n)
		return
	}
	inorderLeaves(n.Left, fn)
	inorderLeaves(n.Right, fn)
}

// Tree is a sum segment tree. It is not safe for concurrent use.
type Tree struct {
	root *Node
	n    int
}

// Build creates a tree over arr. It returns an INVALID_CONFIG error for an
// empty array.
func Build(arr []int) (*Tree, error) {
	if err := errors.ValidateArray(arr); err != nil {
		return nil, err
	}
	ids := trace.NewIDs("n")
	var build func(start, end int) *Node
	build = func(start, end int) *Node {
		n := &Node{ID: ids.Next(), Start: start, End: end}
		if start == end {
			n.Value = arr[start]
			return n
		}
		mid := (start + end) / 2
		n.Left = build(start, mid)
		n.Right = build(mid+1, end)
		n.Value = n.Left.Value + n.Right.Value
		return n
	}
	return &Tree{root: build(0, len(arr)-1), n: len(arr)}, nil
}

// Len returns the length of the underlying array.
func (t *Tree) Len() int { return t.n }

// Sum returns the value at the root.
func (t *Tree) Sum() int { return t.root.Value }

// Leaves returns the current array values.
func (t *Tree) Leaves() []int {
	out := make([]int, 0, t.n)
	inorderLeaves(t.root, func(n *Node) { out = append(out, n.Value) })
	return out
}

// Snapshot returns a deep copy of the tree.
func (t *Tree) Snapshot() Snapshot { return Snapshot{Root: t.root.Clone()} }

func (t *Tree) record(rec *trace.Recorder, kind trace.Kind, focus []string, p trace.Payload, narrative string) {
	rec.Record(kind, focus, p, t.Snapshot(), narrative)
}

// Update sets arr[index] = value. An index outside the array ends the trace
// with an index_out_of_range step and leaves the tree unchanged.
func (t *Tree) Update(index, value int) (bool, trace.Log) {
	rec := trace.NewRecorder()
	if index < 0 || index >= t.n {
		t.record(rec, KindIndexOutOfRange, nil, trace.Payload{"index": index, "len": t.n},
			fmt.Sprintf("index %d is outside [0, %d]", index, t.n-1))
		return false, rec.Log()
	}
	t.update(rec, t.root, index, value)
	return true, rec.Log()
}

func (t *Tree) update(rec *trace.Recorder, n *Node, index, value int) {
	if index < n.Start || index > n.End {
		t.record(rec, KindSkip, []string{n.ID}, trace.Payload{"index": index, "start": n.Start, "end": n.End},
			fmt.Sprintf("skip [%d..%d]: does not contain %d", n.Start, n.End, index))
		return
	}
	if n.Leaf() {
		old := n.Value
		n.Value = value
		t.record(rec, KindLeafUpdate, []string{n.ID}, trace.Payload{"index": index, "old": old, "new": value},
			fmt.Sprintf("set leaf [%d] from %d to %d", index, old, value))
		return
	}
	t.record(rec, KindVisit, []string{n.ID}, trace.Payload{"index": index, "start": n.Start, "end": n.End},
		fmt.Sprintf("[%d..%d] contains %d: descend", n.Start, n.End, index))
	t.update(rec, n.Left, index, value)
	t.update(rec, n.Right, index, value)

	old := n.Value
	n.Value = n.Left.Value + n.Right.Value
	t.record(rec, KindRecompute, []string{n.ID, n.Left.ID, n.Right.ID},
		trace.Payload{"start": n.Start, "end": n.End, "old": old, "new": n.Value},
		fmt.Sprintf("recompute [%d..%d]: %d + %d = %d (was %d)", n.Start, n.End, n.Left.Value, n.Right.Value, n.Value, old))
}

// Query returns the sum over the inclusive range [l, r]. An empty or
// out-of-bounds range ends the trace with an invalid_range step.
func (t *Tree) Query(l, r int) (int, bool, trace.Log) {
	rec := trace.NewRecorder()
	if l < 0 || r >= t.n || l > r {
		t.record(rec, KindInvalidRange, nil, trace.Payload{"l": l, "r": r, "len": t.n},
			fmt.Sprintf("range [%d..%d] is not within [0, %d]", l, r, t.n-1))
		return 0, false, rec.Log()
	}
	sum := t.query(rec, t.root, l, r)
	t.record(rec, KindQueryResult, []string{t.root.ID}, trace.Payload{"l": l, "r": r, "sum": sum},
		fmt.Sprintf("sum of [%d..%d] is %d", l, r, sum))
	return sum, true, rec.Log()
}

func (t *Tree) query(rec *trace.Recorder, n *Node, l, r int) int {
	switch {
	case r < n.Start || l > n.End:
		t.record(rec, KindSkip, []string{n.ID}, trace.Payload{"start": n.Start, "end": n.End},
			fmt.Sprintf("skip [%d..%d]: no overlap with [%d..%d]", n.Start, n.End, l, r))
		return 0
	case l <= n.Start && n.End <= r:
		t.record(rec, KindFullOverlap, []string{n.ID}, trace.Payload{"start": n.Start, "end": n.End, "value": n.Value},
			fmt.Sprintf("[%d..%d] lies inside [%d..%d]: take %d", n.Start, n.End, l, r, n.Value))
		return n.Value
	}
	t.record(rec, KindPartialOverlap, []string{n.ID}, trace.Payload{"start": n.Start, "end": n.End},
		fmt.Sprintf("[%d..%d] overlaps [%d..%d] partly: split", n.Start, n.End, l, r))
	a := t.query(rec, n.Left, l, r)
	b := t.query(rec, n.Right, l, r)
	t.record(rec, KindCombine, []string{n.ID}, trace.Payload{"left": a, "right": b, "sum": a + b},
		fmt.Sprintf("combine at [%d..%d]: %d + %d = %d", n.Start, n.End, a, b, a+b))
	return a + b
}
