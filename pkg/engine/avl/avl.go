package avl

import (
	"fmt"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Step kinds emitted by the AVL engine.
const (
	KindCompare         trace.Kind = "compare"
	KindDuplicate       trace.Kind = "duplicate"
	KindInsertNode      trace.Kind = "insert_node"
	KindRetrace         trace.Kind = "retrace"
	KindImbalance       trace.Kind = "imbalance"
	KindRotateLeft      trace.Kind = "rotate_left"
	KindRotateRight     trace.Kind = "rotate_right"
	KindNotFound        trace.Kind = "not_found"
	KindCaseLeaf        trace.Kind = "case_leaf"
	KindCaseOneChild    trace.Kind = "case_one_child"
	KindCaseTwoChildren trace.Kind = "case_two_children"
	KindSuccessorFound  trace.Kind = "successor_found"
	KindCopySuccessor   trace.Kind = "copy_successor"
	KindRemoveNode      trace.Kind = "remove_node"
)

// Case names a rebalancing case.
type Case string

const (
	CaseLL Case = "LL"
	CaseLR Case = "LR"
	CaseRR Case = "RR"
	CaseRL Case = "RL"
)

// Tree is an AVL tree of unique ints. It is not safe for concurrent use.
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

// Height returns the height of the root, 0 for an empty tree.
func (tr *Tree) Height() int { return height(tr.root) }

// Snapshot returns a deep copy of the tree.
func (tr *Tree) Snapshot() Snapshot { return Snapshot{Root: tr.root.Clone()} }

// Load inserts values without recording a trace. Duplicates are ignored.
func (tr *Tree) Load(values ...int) {
	for _, v := range values {
		tr.insert(nil, v)
	}
}

// Insert adds value, rebalancing on the way back up. It reports false when
// value was already present.
func (tr *Tree) Insert(value int) (bool, trace.Log) {
	rec := trace.NewRecorder()
	ok := tr.insert(rec, value)
	return ok, rec.Log()
}

// Delete removes value, rebalancing on the way back up. It reports false
// when value is absent.
func (tr *Tree) Delete(value int) (bool, trace.Log) {
	rec := trace.NewRecorder()
	ok := tr.delete(rec, value)
	return ok, rec.Log()
}

// InOrder returns the values in ascending order.
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

// Validate checks cached heights, balance factors and ordering.
func (tr *Tree) Validate() error {
	var prev *int
	var walk func(n *Node) (int, error)
	walk = func(n *Node) (int, error) {
		if n == nil {
			return 0, nil
		}
		lh, err := walk(n.Left)
		if err != nil {
			return 0, err
		}
		if prev != nil && *prev >= n.Value {
			return 0, fmt.Errorf("node %s: %d not greater than predecessor %d", n.ID, n.Value, *prev)
		}
		v := n.Value
		prev = &v
		rh, err := walk(n.Right)
		if err != nil {
			return 0, err
		}
		h := 1 + max(lh, rh)
		if n.Height != h {
			return 0, fmt.Errorf("node %s: cached height %d, actual %d", n.ID, n.Height, h)
		}
		if b := lh - rh; b > 1 || b < -1 {
			return 0, fmt.Errorf("node %s: balance %d", n.ID, b)
		}
		return h, nil
	}
	_, err := walk(tr.root)
	return err
}

func (tr *Tree) record(rec *trace.Recorder, kind trace.Kind, focus []string, p trace.Payload, narrative string) {
	if rec == nil {
		return
	}
	rec.Record(kind, focus, p, tr.Snapshot(), narrative)
}

func (tr *Tree) insert(rec *trace.Recorder, value int) bool {
	var path []**Node
	slot := &tr.root
	for *slot != nil {
		n := *slot
		path = append(path, slot)
		switch {
		case value < n.Value:
			tr.record(rec, KindCompare, []string{n.ID}, trace.Payload{"value": value, "against": n.Value, "direction": "left"},
				fmt.Sprintf("%d < %d: go left", value, n.Value))
			slot = &n.Left
		case value > n.Value:
			tr.record(rec, KindCompare, []string{n.ID}, trace.Payload{"value": value, "against": n.Value, "direction": "right"},
				fmt.Sprintf("%d > %d: go right", value, n.Value))
			slot = &n.Right
		default:
			tr.record(rec, KindDuplicate, []string{n.ID}, trace.Payload{"value": value},
				fmt.Sprintf("%d is already in the tree", value))
			return false
		}
	}
	n := &Node{ID: tr.ids.Next(), Value: value, Height: 1}
	*slot = n
	tr.size++
	tr.record(rec, KindInsertNode, []string{n.ID}, trace.Payload{"value": value},
		fmt.Sprintf("place %d as new leaf %s", value, n.ID))
	tr.retrace(rec, path)
	return true
}

func (tr *Tree) delete(rec *trace.Recorder, value int) bool {
	var path []**Node
	slot := &tr.root
	for *slot != nil && (*slot).Value != value {
		n := *slot
		path = append(path, slot)
		if value < n.Value {
			tr.record(rec, KindCompare, []string{n.ID}, trace.Payload{"value": value, "against": n.Value, "direction": "left"},
				fmt.Sprintf("%d < %d: go left", value, n.Value))
			slot = &n.Left
		} else {
			tr.record(rec, KindCompare, []string{n.ID}, trace.Payload{"value": value, "against": n.Value, "direction": "right"},
				fmt.Sprintf("%d > %d: go right", value, n.Value))
			slot = &n.Right
		}
	}
	target := *slot
	if target == nil {
		tr.record(rec, KindNotFound, nil, trace.Payload{"value": value},
			fmt.Sprintf("%d not found: nothing to delete", value))
		return false
	}
	tr.record(rec, KindCompare, []string{target.ID}, trace.Payload{"value": value, "against": target.Value, "direction": "equal"},
		fmt.Sprintf("%d == %d: match", value, target.Value))

	switch {
	case target.Left == nil && target.Right == nil:
		tr.record(rec, KindCaseLeaf, []string{target.ID}, trace.Payload{"value": value},
			fmt.Sprintf("node %s (%d) is a leaf", target.ID, value))
	case target.Left == nil || target.Right == nil:
		tr.record(rec, KindCaseOneChild, []string{target.ID}, trace.Payload{"value": value},
			fmt.Sprintf("node %s (%d) has one child", target.ID, value))
	default:
		tr.record(rec, KindCaseTwoChildren, []string{target.ID}, trace.Payload{"value": value},
			fmt.Sprintf("node %s (%d) has two children: use the in-order successor", target.ID, value))
		path = append(path, slot)
		slot = &target.Right
		for (*slot).Left != nil {
			path = append(path, slot)
			slot = &(*slot).Left
		}
		succ := *slot
		tr.record(rec, KindSuccessorFound, []string{succ.ID}, trace.Payload{"value": succ.Value},
			fmt.Sprintf("in-order successor is %s (%d)", succ.ID, succ.Value))
		target.Value = succ.Value
		tr.record(rec, KindCopySuccessor, []string{target.ID, succ.ID}, trace.Payload{"old": value, "value": succ.Value},
			fmt.Sprintf("copy %d into %s, replacing %d", succ.Value, target.ID, value))
	}

	// *slot has at most one child now.
	gone := *slot
	child := gone.Left
	if child == nil {
		child = gone.Right
	}
	*slot = child
	tr.size--
	focus := []string{gone.ID}
	narrative := fmt.Sprintf("remove %s", gone.ID)
	if child != nil {
		focus = append(focus, child.ID)
		narrative = fmt.Sprintf("remove %s and splice %s into its place", gone.ID, child.ID)
	}
	tr.record(rec, KindRemoveNode, focus, trace.Payload{"value": gone.Value}, narrative)

	tr.retrace(rec, path)
	return true
}

// retrace walks path from the deepest slot back to the root, recomputing
// heights and rebalancing.
func (tr *Tree) retrace(rec *trace.Recorder, path []**Node) {
	for i := len(path) - 1; i >= 0; i-- {
		slot := path[i]
		n := *slot
		old := n.Height
		n.fix()
		b := n.Balance()
		tr.record(rec, KindRetrace, []string{n.ID},
			trace.Payload{"value": n.Value, "old_height": old, "height": n.Height, "balance": b},
			fmt.Sprintf("node %d: height %d, balance %+d", n.Value, n.Height, b))
		if b > 1 || b < -1 {
			tr.rebalance(rec, slot)
		}
	}
}

func (tr *Tree) rebalance(rec *trace.Recorder, slot **Node) {
	n := *slot
	b := n.Balance()
	var c Case
	var heavy *Node
	if b > 1 {
		heavy = n.Left
		c = CaseLL
		if heavy.Balance() < 0 {
			c = CaseLR
		}
	} else {
		heavy = n.Right
		c = CaseRR
		if heavy.Balance() > 0 {
			c = CaseRL
		}
	}
	tr.record(rec, KindImbalance, []string{n.ID, heavy.ID},
		trace.Payload{"value": n.Value, "balance": b, "child_balance": heavy.Balance(), "case": string(c)},
		fmt.Sprintf("node %d has balance %+d: %s case", n.Value, b, c))

	switch c {
	case CaseLL:
		tr.rotateRight(rec, slot)
	case CaseRR:
		tr.rotateLeft(rec, slot)
	case CaseLR:
		tr.rotateLeft(rec, &n.Left)
		tr.rotateRight(rec, slot)
	case CaseRL:
		tr.rotateRight(rec, &n.Right)
		tr.rotateLeft(rec, slot)
	}
}

// rotateRight lifts the left child of *slot into its place.
//
//	    y            x
//	   / \          / \
//	  x   C   ->   A   y
//	 / \              / \
//	A   T2           T2  C
func (tr *Tree) rotateRight(rec *trace.Recorder, slot **Node) {
	y := *slot
	x := y.Left
	t2 := x.Right
	x.Right = y
	y.Left = t2
	*slot = x
	y.fix()
	x.fix()
	tr.record(rec, KindRotateRight, []string{y.ID, x.ID}, rotationPayload(y, x, t2),
		fmt.Sprintf("rotate right at %d: %d becomes the subtree root", y.Value, x.Value))
}

// rotateLeft lifts the right child of *slot into its place.
func (tr *Tree) rotateLeft(rec *trace.Recorder, slot **Node) {
	x := *slot
	y := x.Right
	t2 := y.Left
	y.Left = x
	x.Right = t2
	*slot = y
	x.fix()
	y.fix()
	tr.record(rec, KindRotateLeft, []string{x.ID, y.ID}, rotationPayload(x, y, t2),
		fmt.Sprintf("rotate left at %d: %d becomes the subtree root", x.Value, y.Value))
}

func rotationPayload(pivot, lifted, moved *Node) trace.Payload {
	p := trace.Payload{"pivot": pivot.Value, "new_root": lifted.Value}
	if moved != nil {
		p["moved"] = moved.Value
	}
	return p
}
