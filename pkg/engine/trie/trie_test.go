package trie_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/algotrace/pkg/engine/trie"
	"github.com/matzehuels/algotrace/pkg/trace"
)

var words = []string{"car", "card", "care", "cat", "dog"}

func sample() *trie.Trie {
	tr := trie.New()
	tr.Load(words...)
	return tr
}

func nodeCount(tr *trie.Trie) int {
	return len(tr.Snapshot().Frame().Nodes)
}

func TestWordsInChildOrder(t *testing.T) {
	tr := sample()
	assert.Equal(t, words, tr.Words())
	assert.Equal(t, 5, tr.Len())
	assert.Equal(t, 10, nodeCount(tr))
}

func TestInsert(t *testing.T) {
	tr := sample()
	ok, log := tr.Insert("cart")
	require.True(t, ok)
	assert.Equal(t, []trace.Kind{
		trie.KindVisit, trie.KindVisit, trie.KindVisit,
		trie.KindCreateNode, trie.KindMarkEnd,
	}, log.Kinds())

	ok, log = tr.Insert("cat")
	assert.False(t, ok)
	assert.Equal(t, []trace.Kind{trie.KindAlreadyPresent}, log.Kinds())

	ok, log = tr.Insert("")
	assert.False(t, ok)
	assert.Equal(t, []trace.Kind{trie.KindInvalidWord}, log.Kinds())
}

func TestInsertKeepsCase(t *testing.T) {
	tr := trie.New()
	tr.Load("Go", "go")
	assert.Equal(t, []string{"Go", "go"}, tr.Words())
}

func TestSearch(t *testing.T) {
	tr := sample()
	tests := []struct {
		word string
		want bool
		last trace.Kind
	}{
		{"car", true, trie.KindFound},
		{"ca", false, trie.KindPrefixOnly},
		{"cab", false, trie.KindMissingChar},
		{"x", false, trie.KindMissingChar},
		{"", false, trie.KindInvalidWord},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			ok, log := tr.Search(tt.word)
			assert.Equal(t, tt.want, ok)
			last, _ := log.Last()
			assert.Equal(t, tt.last, last.Kind)
		})
	}
}

func TestCollectPrefix(t *testing.T) {
	tr := sample()
	got, log := tr.CollectPrefix("car")
	assert.Equal(t, []string{"car", "card", "care"}, got)
	assert.Equal(t, 3, log.Count(trie.KindDFSVisit))
	assert.Equal(t, 3, log.Count(trie.KindCollectWord))

	last, _ := log.Last()
	assert.Equal(t, trie.KindCollectDone, last.Kind)
	collected, ok := last.Snapshot.Frame().List("collected")
	require.True(t, ok)
	assert.Equal(t, got, collected)

	// the running list grows one word at a time
	var sizes []int
	for _, s := range log.All() {
		if s.Kind == trie.KindCollectWord {
			items, _ := s.Snapshot.Frame().List("collected")
			sizes = append(sizes, len(items))
		}
	}
	assert.Equal(t, []int{1, 2, 3}, sizes)

	all, _ := tr.CollectPrefix("")
	assert.Equal(t, words, all)

	none, log := tr.CollectPrefix("z")
	assert.Nil(t, none)
	last, _ = log.Last()
	assert.Equal(t, trie.KindMissingChar, last.Kind)

	_, hasList := tr.Snapshot().Frame().List("collected")
	assert.False(t, hasList)
}

func TestDeletePrunesDeadLeaves(t *testing.T) {
	tr := sample()
	ok, log := tr.Delete("card")
	require.True(t, ok)
	assert.Equal(t, []trace.Kind{
		trie.KindVisit, trie.KindVisit, trie.KindVisit, trie.KindVisit,
		trie.KindUnmarkEnd, trie.KindPruneNode, trie.KindKeepNode,
	}, log.Kinds())
	reason, _ := log.At(6).Text("reason")
	assert.Equal(t, "it ends another word", reason)
	assert.Equal(t, 9, nodeCount(tr))

	ok, log = tr.Delete("car")
	require.True(t, ok)
	last, _ := log.Last()
	assert.Equal(t, trie.KindKeepNode, last.Kind)
	reason, _ = last.Text("reason")
	assert.Equal(t, "it has children", reason)
	assert.Equal(t, 9, nodeCount(tr))

	ok, log = tr.Delete("dog")
	require.True(t, ok)
	assert.Equal(t, 3, log.Count(trie.KindPruneNode))
	assert.Equal(t, []string{"care", "cat"}, tr.Words())
	assert.Equal(t, 6, nodeCount(tr))
}

func TestDeleteMissing(t *testing.T) {
	tr := sample()
	before := tr.Snapshot()
	for _, w := range []string{"ca", "cab", "cards"} {
		ok, _ := tr.Delete(w)
		assert.False(t, ok, w)
	}
	assert.Equal(t, before, tr.Snapshot())
}

func TestDeleteRoundTrip(t *testing.T) {
	all := []string{"a", "an", "and", "ant", "any", "be", "bee", "been", "beet", "b"}
	for _, w := range all {
		t.Run(w, func(t *testing.T) {
			tr := trie.New()
			tr.Load(all...)
			ok, _ := tr.Delete(w)
			require.True(t, ok)

			rest := slices.DeleteFunc(slices.Clone(all), func(s string) bool { return s == w })
			got := tr.Words()
			assert.ElementsMatch(t, rest, got)

			// no node shared by a remaining word was removed, and no dead node remains
			fresh := trie.New()
			fresh.Load(rest...)
			assert.Equal(t, nodeCount(fresh), nodeCount(tr))
			for _, r := range rest {
				found, _ := tr.Search(r)
				assert.True(t, found, r)
			}
		})
	}
}

func TestWordBackReferences(t *testing.T) {
	tr := sample()
	tr.Delete("cat")
	snap := tr.Snapshot()
	c := snap.Root.Children[0]
	assert.Equal(t, []string{"car", "card", "care"}, c.Words)
	assert.Len(t, snap.Root.Words, 4)
}

func TestSnapshotIndependence(t *testing.T) {
	tr := sample()
	_, log := tr.Insert("cart")
	first := log.At(0).Snapshot.Frame()
	tr.Delete("car")
	tr.Delete("cart")
	assert.Equal(t, first, log.At(0).Snapshot.Frame())
	assert.Len(t, first.Nodes, 10)
}
