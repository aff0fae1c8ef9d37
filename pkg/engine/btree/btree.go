package btree

import (
	"fmt"
	"slices"

	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

// Step kinds emitted by the B-Tree engine.
const (
	KindInsertStart trace.Kind = "insert_start"
	KindRootSplit   trace.Kind = "root_split"
	KindSplitChild  trace.Kind = "split_child"
	KindDescend     trace.Kind = "descend"
	KindLeafInsert  trace.Kind = "leaf_insert"
	KindVisitNode   trace.Kind = "visit_node"
	KindKeyFound    trace.Kind = "key_found"
	KindKeyNotFound trace.Kind = "key_not_found"
)

// Tree is a B-Tree of int keys. It is not safe for concurrent use.
type Tree struct {
	t    int
	root *Node
	ids  *trace.IDs
}

// New creates an empty tree with minimum degree t.
// It returns an INVALID_CONFIG error when t < 2.
func New(t int) (*Tree, error) {
	if err := errors.ValidateDegree(t); err != nil {
		return nil, err
	}
	ids := trace.NewIDs("n")
	return &Tree{t: t, ids: ids, root: &Node{ID: ids.Next()}}, nil
}

// Degree returns the minimum degree t.
func (tr *Tree) Degree() int { return tr.t }

// MaxKeys returns the node capacity 2t-1.
func (tr *Tree) MaxKeys() int { return 2*tr.t - 1 }

// Snapshot returns a deep copy of the current tree.
func (tr *Tree) Snapshot() Snapshot {
	return Snapshot{Degree: tr.t, Root: tr.root.Clone()}
}

// Load inserts keys without recording a trace.
func (tr *Tree) Load(keys ...int) {
	for _, k := range keys {
		tr.insert(nil, k)
	}
}

// Insert adds key and returns the steps taken.
func (tr *Tree) Insert(key int) trace.Log {
	rec := trace.NewRecorder()
	tr.insert(rec, key)
	return rec.Log()
}

// SearchResult is the outcome of a search.
type SearchResult struct {
	Found  bool   `json:"found"`
	NodeID string `json:"node_id,omitempty"`
	Index  int    `json:"index"` // Position of the key in the node, or -1
}

// Search looks for key starting at the root. Every node visited is a step; an
// unsuccessful search ends at a leaf with a key_not_found step.
func (tr *Tree) Search(key int) (SearchResult, trace.Log) {
	rec := trace.NewRecorder()
	n := tr.root
	for {
		tr.record(rec, KindVisitNode, []string{n.ID}, trace.Payload{"key": key, "keys": n.Keys},
			fmt.Sprintf("visit node %s [%s] looking for %d", n.ID, n.label(), key))

		i := 0
		for i < len(n.Keys) && key > n.Keys[i] {
			i++
		}
		if i < len(n.Keys) && n.Keys[i] == key {
			tr.record(rec, KindKeyFound, []string{n.ID}, trace.Payload{"key": key, "index": i},
				fmt.Sprintf("found %d in node %s at position %d", key, n.ID, i))
			return SearchResult{Found: true, NodeID: n.ID, Index: i}, rec.Log()
		}
		if n.Leaf() {
			tr.record(rec, KindKeyNotFound, []string{n.ID}, trace.Payload{"key": key},
				fmt.Sprintf("%d is not in the tree: leaf %s has no match", key, n.ID))
			return SearchResult{Index: -1}, rec.Log()
		}
		n = n.Children[i]
	}
}

func (tr *Tree) isFull(n *Node) bool { return len(n.Keys) == tr.MaxKeys() }

func (tr *Tree) record(rec *trace.Recorder, kind trace.Kind, focus []string, p trace.Payload, narrative string) {
	if rec == nil {
		return
	}
	rec.Record(kind, focus, p, tr.Snapshot(), narrative)
}

func (tr *Tree) insert(rec *trace.Recorder, key int) {
	tr.record(rec, KindInsertStart, []string{tr.root.ID}, trace.Payload{"key": key},
		fmt.Sprintf("insert %d", key))

	if tr.isFull(tr.root) {
		old := tr.root
		tr.root = &Node{ID: tr.ids.Next(), Children: []*Node{old}}
		tr.splitChild(rec, tr.root, 0, KindRootSplit)
	}
	tr.insertNonFull(rec, tr.root, key)
}

// splitChild splits the full child at parent.Children[i]. The upper t-1 keys
// (and upper t children) move into a new right sibling and the median moves
// up into parent at position i.
func (tr *Tree) splitChild(rec *trace.Recorder, parent *Node, i int, kind trace.Kind) {
	t := tr.t
	y := parent.Children[i]
	z := &Node{ID: tr.ids.Next(), Keys: slices.Clone(y.Keys[t:])}
	median := y.Keys[t-1]
	if !y.Leaf() {
		z.Children = slices.Clone(y.Children[t:])
		y.Children = slices.Clone(y.Children[:t])
	}
	y.Keys = slices.Clone(y.Keys[:t-1])

	parent.Children = slices.Insert(parent.Children, i+1, z)
	parent.Keys = slices.Insert(parent.Keys, i, median)

	narrative := fmt.Sprintf("split node %s: median %d moves up into %s, upper keys move to new node %s", y.ID, median, parent.ID, z.ID)
	if kind == KindRootSplit {
		narrative = fmt.Sprintf("root %s is full: new root %s, median %d moves up, upper keys move to new node %s", y.ID, parent.ID, median, z.ID)
	}
	tr.record(rec, kind, []string{y.ID, z.ID}, trace.Payload{
		"median": median,
		"parent": parent.ID,
		"index":  i,
		"left":   y.Keys,
		"right":  z.Keys,
	}, narrative)
}

func (tr *Tree) insertNonFull(rec *trace.Recorder, n *Node, key int) {
	for {
		// First position whose key is greater than key; equal keys stay left.
		i := 0
		for i < len(n.Keys) && key >= n.Keys[i] {
			i++
		}
		if n.Leaf() {
			n.Keys = slices.Insert(n.Keys, i, key)
			tr.record(rec, KindLeafInsert, []string{n.ID}, trace.Payload{"key": key, "index": i},
				fmt.Sprintf("insert %d into leaf %s at position %d", key, n.ID, i))
			return
		}
		if tr.isFull(n.Children[i]) {
			tr.splitChild(rec, n, i, KindSplitChild)
			if key > n.Keys[i] {
				i++
			}
		}
		child := n.Children[i]
		tr.record(rec, KindDescend, []string{n.ID, child.ID}, trace.Payload{"key": key, "child": i},
			fmt.Sprintf("descend from %s into child %d (%s)", n.ID, i, child.ID))
		n = child
	}
}

// Keys returns all keys in order.
func (tr *Tree) Keys() []int {
	var out []int
	var walk func(n *Node)
	walk = func(n *Node) {
		for i, k := range n.Keys {
			if !n.Leaf() {
				walk(n.Children[i])
			}
			out = append(out, k)
		}
		if !n.Leaf() {
			walk(n.Children[len(n.Children)-1])
		}
	}
	walk(tr.root)
	return out
}

// Height returns the number of levels; an empty tree has height 1.
func (tr *Tree) Height() int {
	h := 1
	for n := tr.root; !n.Leaf(); n = n.Children[0] {
		h++
	}
	return h
}

// Validate checks the structural invariants: key counts within [t-1, 2t-1]
// for non-root nodes, child count = key count + 1 for internal nodes, all
// leaves at the same depth, and sorted in-order keys.
func (tr *Tree) Validate() error {
	leafDepth := -1
	var check func(n *Node, depth int) error
	check = func(n *Node, depth int) error {
		if len(n.Keys) > tr.MaxKeys() {
			return fmt.Errorf("node %s over capacity: %d keys (max %d)", n.ID, len(n.Keys), tr.MaxKeys())
		}
		if n != tr.root && len(n.Keys) < tr.t-1 {
			return fmt.Errorf("node %s under capacity: %d keys (min %d)", n.ID, len(n.Keys), tr.t-1)
		}
		if n.Leaf() {
			if leafDepth == -1 {
				leafDepth = depth
			} else if depth != leafDepth {
				return fmt.Errorf("leaf %s at depth %d, want %d", n.ID, depth, leafDepth)
			}
			return nil
		}
		if len(n.Children) != len(n.Keys)+1 {
			return fmt.Errorf("node %s has %d children for %d keys", n.ID, len(n.Children), len(n.Keys))
		}
		for _, ch := range n.Children {
			if err := check(ch, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(tr.root, 0); err != nil {
		return err
	}
	if keys := tr.Keys(); !slices.IsSorted(keys) {
		return fmt.Errorf("in-order keys not sorted: %v", keys)
	}
	return nil
}
