// Package trie implements an instrumented prefix tree with traced insert,
// search, prefix collection and deletion.
//
// Deletion clears the end-of-word flag and then prunes bottom-up: a node is
// removed only while it is neither the end of another word nor the parent of
// any remaining node. Pruning stops at the first ancestor that must be kept.
package trie

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/algotrace/pkg/trace"
)

// Step kinds emitted by the trie engine.
const (
	KindInvalidWord    trace.Kind = "invalid_word"
	KindVisit          trace.Kind = "visit"
	KindCreateNode     trace.Kind = "create_node"
	KindMarkEnd        trace.Kind = "mark_end"
	KindAlreadyPresent trace.Kind = "already_present"
	KindMissingChar    trace.Kind = "missing_char"
	KindPrefixOnly     trace.Kind = "prefix_only"
	KindFound          trace.Kind = "found"
	KindPrefixReached  trace.Kind = "prefix_reached"
	KindDFSVisit       trace.Kind = "dfs_visit"
	KindCollectWord    trace.Kind = "collect_word"
	KindCollectDone    trace.Kind = "collect_done"
	KindUnmarkEnd      trace.Kind = "unmark_end"
	KindKeepNode       trace.Kind = "keep_node"
	KindPruneNode      trace.Kind = "prune_node"
)

// Trie stores words verbatim; characters are runes. It is not safe for
// concurrent use.
type Trie struct {
	root  *Node
	ids   *trace.IDs
	count int

	// collected is non-nil only while CollectPrefix runs.
	collected []string
}

// New returns an empty trie.
func New() *Trie {
	ids := trace.NewIDs("n")
	return &Trie{root: &Node{ID: ids.Next()}, ids: ids}
}

// Len returns the number of stored words.
func (t *Trie) Len() int { return t.count }

// Snapshot returns a deep copy of the trie.
func (t *Trie) Snapshot() Snapshot {
	return Snapshot{Root: t.root.Clone(), Collected: slices.Clone(t.collected)}
}

// Load inserts words without recording a trace. Empty words are skipped.
func (t *Trie) Load(words ...string) {
	for _, w := range words {
		t.insert(nil, w)
	}
}

// Insert adds word. It reports false when word is empty or already stored.
func (t *Trie) Insert(word string) (bool, trace.Log) {
	rec := trace.NewRecorder()
	ok := t.insert(rec, word)
	return ok, rec.Log()
}

// Words returns every stored word in depth-first child order.
func (t *Trie) Words() []string {
	var out []string
	collect(t.root, "", func(_ *Node, w string) {
		out = append(out, w)
	})
	return out
}

func collect(n *Node, prefix string, fn func(*Node, string)) {
	if n.End {
		fn(n, prefix)
	}
	for _, c := range n.Children {
		collect(c, prefix+c.Char, fn)
	}
}

func (t *Trie) record(rec *trace.Recorder, kind trace.Kind, focus []string, p trace.Payload, narrative string) {
	if rec == nil {
		return
	}
	rec.Record(kind, focus, p, t.Snapshot(), narrative)
}

func (t *Trie) rejectEmpty(rec *trace.Recorder, word string) bool {
	if word != "" {
		return false
	}
	t.record(rec, KindInvalidWord, nil, trace.Payload{"word": word}, "the word is empty")
	return true
}

func (t *Trie) insert(rec *trace.Recorder, word string) bool {
	if t.rejectEmpty(rec, word) {
		return false
	}
	if t.contains(word) {
		t.record(rec, KindAlreadyPresent, nil, trace.Payload{"word": word},
			fmt.Sprintf("%q is already stored", word))
		return false
	}
	n := t.root
	n.Words = append(n.Words, word)
	depth := 0
	for _, r := range word {
		c := string(r)
		next := n.child(c)
		if next == nil {
			next = &Node{ID: t.ids.Next(), Char: c}
			n.Children = append(n.Children, next)
			next.Words = append(next.Words, word)
			t.record(rec, KindCreateNode, []string{n.ID, next.ID}, trace.Payload{"word": word, "char": c, "depth": depth},
				fmt.Sprintf("no child %q under %s: create %s", c, n.ID, next.ID))
		} else {
			next.Words = append(next.Words, word)
			t.record(rec, KindVisit, []string{next.ID}, trace.Payload{"word": word, "char": c, "depth": depth},
				fmt.Sprintf("follow existing child %q", c))
		}
		n = next
		depth++
	}
	n.End = true
	t.count++
	t.record(rec, KindMarkEnd, []string{n.ID}, trace.Payload{"word": word},
		fmt.Sprintf("mark %s as the end of %q", n.ID, word))
	return true
}

func (t *Trie) contains(word string) bool {
	n := t.root
	for _, r := range word {
		if n = n.child(string(r)); n == nil {
			return false
		}
	}
	return n.End
}

// walk follows s from the root, recording a visit per character. On a missing
// character it records a terminal missing_char step and returns nil.
func (t *Trie) walk(rec *trace.Recorder, s string) []*Node {
	path := []*Node{t.root}
	n := t.root
	depth := 0
	for _, r := range s {
		c := string(r)
		next := n.child(c)
		if next == nil {
			t.record(rec, KindMissingChar, []string{n.ID}, trace.Payload{"input": s, "char": c, "depth": depth},
				fmt.Sprintf("no child %q under %s: %q not found", c, n.ID, s))
			return nil
		}
		t.record(rec, KindVisit, []string{next.ID}, trace.Payload{"input": s, "char": c, "depth": depth},
			fmt.Sprintf("match %q at depth %d", c, depth))
		n = next
		path = append(path, n)
		depth++
	}
	return path
}

// Search reports whether word is stored. A walk that ends on a node without
// the end-of-word flag is a prefix only.
func (t *Trie) Search(word string) (bool, trace.Log) {
	rec := trace.NewRecorder()
	if t.rejectEmpty(rec, word) {
		return false, rec.Log()
	}
	path := t.walk(rec, word)
	if path == nil {
		return false, rec.Log()
	}
	last := path[len(path)-1]
	if !last.End {
		t.record(rec, KindPrefixOnly, []string{last.ID}, trace.Payload{"word": word},
			fmt.Sprintf("%q is only a prefix, not a stored word", word))
		return false, rec.Log()
	}
	t.record(rec, KindFound, []string{last.ID}, trace.Payload{"word": word},
		fmt.Sprintf("found %q", word))
	return true, rec.Log()
}

// CollectPrefix returns every stored word starting with prefix, in
// depth-first child order. The empty prefix collects all words.
func (t *Trie) CollectPrefix(prefix string) ([]string, trace.Log) {
	rec := trace.NewRecorder()
	t.collected = []string{}
	defer func() { t.collected = nil }()

	path := t.walk(rec, prefix)
	if path == nil {
		return nil, rec.Log()
	}
	start := path[len(path)-1]
	t.record(rec, KindPrefixReached, []string{start.ID}, trace.Payload{"prefix": prefix},
		fmt.Sprintf("prefix %q reached at %s: enumerate below", prefix, start.ID))

	var visit func(n *Node, w string)
	visit = func(n *Node, w string) {
		t.record(rec, KindDFSVisit, []string{n.ID}, trace.Payload{"prefix": w},
			fmt.Sprintf("visit %s (%q)", n.ID, w))
		if n.End {
			t.collected = append(t.collected, w)
			t.record(rec, KindCollectWord, []string{n.ID}, trace.Payload{"word": w, "words": t.collected},
				fmt.Sprintf("collect %q", w))
		}
		for _, c := range n.Children {
			visit(c, w+c.Char)
		}
	}
	visit(start, prefix)

	out := slices.Clone(t.collected)
	t.record(rec, KindCollectDone, nil, trace.Payload{"prefix": prefix, "words": out},
		fmt.Sprintf("%d word(s) start with %q", len(out), prefix))
	return out, rec.Log()
}

// Delete removes word and prunes nodes no remaining word needs.
func (t *Trie) Delete(word string) (bool, trace.Log) {
	rec := trace.NewRecorder()
	if t.rejectEmpty(rec, word) {
		return false, rec.Log()
	}
	path := t.walk(rec, word)
	if path == nil {
		return false, rec.Log()
	}
	last := path[len(path)-1]
	if !last.End {
		t.record(rec, KindPrefixOnly, []string{last.ID}, trace.Payload{"word": word},
			fmt.Sprintf("%q is not a stored word: nothing to delete", word))
		return false, rec.Log()
	}

	last.End = false
	for _, n := range path {
		n.dropWord(word)
	}
	t.count--
	t.record(rec, KindUnmarkEnd, []string{last.ID}, trace.Payload{"word": word},
		fmt.Sprintf("clear the end-of-word flag on %s", last.ID))

	for i := len(path) - 1; i > 0; i-- {
		n, parent := path[i], path[i-1]
		if n.End || len(n.Children) > 0 {
			reason := "it has children"
			if n.End {
				reason = "it ends another word"
			}
			t.record(rec, KindKeepNode, []string{n.ID}, trace.Payload{"word": word, "char": n.Char, "reason": reason},
				fmt.Sprintf("keep %s (%q): %s", n.ID, n.Char, reason))
			return true, rec.Log()
		}
		parent.removeChild(n.ID)
		t.record(rec, KindPruneNode, []string{n.ID, parent.ID}, trace.Payload{"word": word, "char": n.Char},
			fmt.Sprintf("prune %s (%q) from %s", n.ID, n.Char, parent.ID))
	}
	return true, rec.Log()
}

// String lists the stored words in depth-first order.
func (t *Trie) String() string {
	return strings.Join(t.Words(), ", ")
}
