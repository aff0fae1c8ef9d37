package segtree_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/algotrace/pkg/engine/segtree"
	"github.com/matzehuels/algotrace/pkg/errors"
	"github.com/matzehuels/algotrace/pkg/trace"
)

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestBuildRejectsEmpty(t *testing.T) {
	tr, err := segtree.Build(nil)
	assert.Nil(t, tr)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestUpdateKeepsRootSum(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5, 6, 7, 8, 13} {
		rng := rand.New(rand.NewPCG(uint64(size), 1))
		arr := make([]int, size)
		for i := range arr {
			arr[i] = rng.IntN(50)
		}
		tr, err := segtree.Build(arr)
		require.NoError(t, err)
		require.Equal(t, sum(arr), tr.Sum())

		for k := 0; k < 20; k++ {
			i, v := rng.IntN(size), rng.IntN(100)-50
			ok, _ := tr.Update(i, v)
			require.True(t, ok)
			arr[i] = v
			assert.Equal(t, arr, tr.Leaves(), "size %d", size)
			assert.Equal(t, sum(arr), tr.Sum(), "size %d", size)
		}
	}
}

func TestUpdateSteps(t *testing.T) {
	tr, err := segtree.Build([]int{1, 3, 5, 7, 9, 11})
	require.NoError(t, err)

	ok, log := tr.Update(1, 10)
	require.True(t, ok)
	assert.Equal(t, []trace.Kind{
		segtree.KindVisit, segtree.KindVisit, segtree.KindVisit,
		segtree.KindSkip, segtree.KindLeafUpdate, segtree.KindRecompute,
		segtree.KindSkip, segtree.KindRecompute,
		segtree.KindSkip, segtree.KindRecompute,
	}, log.Kinds())
	assert.Equal(t, 43, tr.Sum())

	last, _ := log.Last()
	old, _ := last.Int("old")
	nw, _ := last.Int("new")
	assert.Equal(t, 36, old)
	assert.Equal(t, 43, nw)
	assert.Equal(t, "n1", last.FocusID())
}

func TestUpdateSmallArrays(t *testing.T) {
	one, err := segtree.Build([]int{5})
	require.NoError(t, err)
	_, log := one.Update(0, 8)
	assert.Equal(t, []trace.Kind{segtree.KindLeafUpdate}, log.Kinds())
	assert.Equal(t, 8, one.Sum())

	two, err := segtree.Build([]int{1, 2})
	require.NoError(t, err)
	_, log = two.Update(1, 5)
	assert.Equal(t, []trace.Kind{
		segtree.KindVisit, segtree.KindSkip, segtree.KindLeafUpdate, segtree.KindRecompute,
	}, log.Kinds())
	assert.Equal(t, 6, two.Sum())
}

func TestUpdateOutOfRange(t *testing.T) {
	tr, err := segtree.Build([]int{1, 2, 3})
	require.NoError(t, err)
	before := tr.Snapshot()
	for _, i := range []int{-1, 3, 100} {
		ok, log := tr.Update(i, 9)
		assert.False(t, ok)
		assert.Equal(t, []trace.Kind{segtree.KindIndexOutOfRange}, log.Kinds())
	}
	assert.Equal(t, before, tr.Snapshot())
}

func TestQuery(t *testing.T) {
	arr := []int{1, 3, 5, 7, 9, 11}
	tr, err := segtree.Build(arr)
	require.NoError(t, err)

	for l := 0; l < len(arr); l++ {
		for r := l; r < len(arr); r++ {
			got, ok, log := tr.Query(l, r)
			require.True(t, ok)
			assert.Equal(t, sum(arr[l:r+1]), got, "[%d..%d]", l, r)
			last, _ := log.Last()
			assert.Equal(t, segtree.KindQueryResult, last.Kind)
		}
	}

	_, ok, log := tr.Query(3, 1)
	assert.False(t, ok)
	assert.Equal(t, []trace.Kind{segtree.KindInvalidRange}, log.Kinds())
}

func TestSnapshotIndependence(t *testing.T) {
	tr, err := segtree.Build([]int{4, 4, 4, 4})
	require.NoError(t, err)
	_, log := tr.Update(2, 0)
	first := log.At(0).Snapshot.(segtree.Snapshot)
	assert.Equal(t, 16, first.Root.Value)
	tr.Update(0, 100)
	assert.Equal(t, 16, log.At(0).Snapshot.(segtree.Snapshot).Root.Value)

	leaf := log.At(3)
	require.Equal(t, segtree.KindLeafUpdate, leaf.Kind)
	items, ok := leaf.Snapshot.Frame().List("array")
	require.True(t, ok)
	assert.Equal(t, []string{"4", "4", "0", "4"}, items)
}
