package rbtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeInsertAndSearch(t *testing.T) {
	tr := New()
	tr.Insert(FloatKey(5), "five")
	tr.Insert(FloatKey(3), "three")
	tr.Insert(FloatKey(8), "eight")

	v, ok := tr.Search(FloatKey(3))
	require.True(t, ok)
	assert.Equal(t, "three", v)

	_, ok = tr.Search(FloatKey(100))
	assert.False(t, ok)
	assert.Equal(t, 3, tr.Len())
}

func TestTreeInsertOverwritesDuplicateKey(t *testing.T) {
	tr := New()
	tr.Insert(StringKey("a"), 1)
	tr.Insert(StringKey("a"), 2)

	v, ok := tr.Search(StringKey("a"))
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, tr.Len())
}

func TestTreeInOrderIteration(t *testing.T) {
	tr := New()
	for _, f := range []float64{9, 1, 5, 3, 7, 2, 8, 4, 6} {
		tr.Insert(FloatKey(f), nil)
	}

	var got []float64
	for k := range tr.Iterate() {
		got = append(got, k.Value().(float64))
	}

	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestTreeIterationStopsEarly(t *testing.T) {
	tr := New()
	for i := range 10 {
		tr.Insert(FloatKey(float64(i)), nil)
	}

	var seen int
	for range tr.Iterate() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestTreeDeleteMaintainsOrderAndInvariants(t *testing.T) {
	tr := New()
	keys := []float64{20, 10, 30, 5, 15, 25, 35, 1, 7, 12, 17}
	for _, f := range keys {
		tr.Insert(FloatKey(f), f)
	}

	removed := tr.Delete(FloatKey(15))
	assert.True(t, removed)
	_, ok := tr.Search(FloatKey(15))
	assert.False(t, ok)
	assert.Equal(t, len(keys)-1, tr.Len())

	assertRedBlackInvariants(t, tr)

	var remaining []float64
	for k := range tr.Iterate() {
		remaining = append(remaining, k.Value().(float64))
	}
	for i := 1; i < len(remaining); i++ {
		assert.Less(t, remaining[i-1], remaining[i])
	}
}

func TestTreeDeleteMissingKeyIsNoop(t *testing.T) {
	tr := New()
	tr.Insert(FloatKey(1), nil)
	assert.False(t, tr.Delete(FloatKey(99)))
	assert.Equal(t, 1, tr.Len())
}

func TestTreeDeleteAllKeysLeavesEmptyTree(t *testing.T) {
	tr := New()
	for i := range 50 {
		tr.Insert(FloatKey(float64(i)), i)
	}
	for i := range 50 {
		require.True(t, tr.Delete(FloatKey(float64(i))))
	}
	assert.Equal(t, 0, tr.Len())
	_, ok := tr.Search(FloatKey(0))
	assert.False(t, ok)
}

func TestTreeInvariantsHoldUnderRandomizedMutation(t *testing.T) {
	tr := New()
	present := map[float64]bool{}

	// Deterministic pseudo-random sequence (no math/rand dependency on
	// ordering assumptions) exercising a mix of inserts and deletes.
	seq := []float64{17, 4, 55, 2, 91, 4, 33, 12, 70, 2, 8, 91, 45, 6, 29}
	for i, f := range seq {
		if i%3 == 2 {
			tr.Delete(FloatKey(f))
			delete(present, f)
		} else {
			tr.Insert(FloatKey(f), f)
			present[f] = true
		}
	}

	assertRedBlackInvariants(t, tr)
	assert.Equal(t, len(present), tr.Len())
}

func TestTreeDumpLoadRoundTrip(t *testing.T) {
	tr := New()
	for _, f := range []float64{50, 25, 75, 10, 30, 60, 90} {
		tr.Insert(FloatKey(f), f)
	}

	dumped := tr.Dump()
	require.NotEmpty(t, dumped)

	restored := New()
	require.NoError(t, restored.Load(dumped))

	assert.Equal(t, tr.Len(), restored.Len())
	for k := range tr.Iterate() {
		v, ok := restored.Search(k)
		require.True(t, ok)
		assert.Equal(t, k.Value(), v.(float64))
	}
}

func TestTreeDumpEmptyTree(t *testing.T) {
	tr := New()
	assert.Nil(t, tr.Dump())
}

func TestTreeLoadEmptyEntriesProducesEmptyTree(t *testing.T) {
	tr := New()
	tr.Insert(FloatKey(1), nil)
	require.NoError(t, tr.Load(nil))
	assert.Equal(t, 0, tr.Len())
}

func TestTreeLoadRejectsNilRootSlot(t *testing.T) {
	tr := New()
	err := tr.Load([]*DumpEntry{nil, {Key: FloatKey(1), Color: ColorBlack}})
	assert.Error(t, err)
}

func TestKeyCompareAcrossKinds(t *testing.T) {
	assert.Equal(t, 0, StringKey("a").Compare(StringKey("a")))
	assert.Equal(t, -1, StringKey("a").Compare(StringKey("b")))
	assert.Equal(t, 1, FloatKey(2).Compare(FloatKey(1)))
	assert.Equal(t, -1, BoolKey(false).Compare(BoolKey(true)))
	assert.Equal(t, 0, NullKey().Compare(NullKey()))
	assert.NotEqual(t, 0, NullKey().Compare(StringKey("")))
}

func TestKeyJSONRoundTrip(t *testing.T) {
	for _, k := range []Key{NullKey(), StringKey("hello"), FloatKey(3.5), BoolKey(true)} {
		data, err := k.MarshalJSON()
		require.NoError(t, err)

		var decoded Key
		require.NoError(t, decoded.UnmarshalJSON(data))
		assert.Equal(t, k.Kind(), decoded.Kind())
		assert.Equal(t, k.Value(), decoded.Value())
	}
}

// assertRedBlackInvariants walks the tree and checks the four CLRS
// red-black properties: root is black, no red node has a red child, every
// root-to-leaf path has equal black-height, and BST ordering holds.
func assertRedBlackInvariants(t *testing.T, tr *Tree) {
	t.Helper()

	if tr.root == tr.nilN {
		return
	}
	assert.Equal(t, ColorBlack, tr.root.color, "root must be black")

	var walk func(n *node, lo, hi *Key) int
	walk = func(n *node, lo, hi *Key) int {
		if n == tr.nilN {
			return 1
		}
		if lo != nil {
			assert.True(t, lo.Compare(n.key) < 0, "BST ordering violated")
		}
		if hi != nil {
			assert.True(t, n.key.Compare(*hi) < 0, "BST ordering violated")
		}
		if n.color == ColorRed {
			assert.False(t, n.left != tr.nilN && n.left.color == ColorRed, "red node has red left child")
			assert.False(t, n.right != tr.nilN && n.right.color == ColorRed, "red node has red right child")
		}

		leftBH := walk(n.left, lo, &n.key)
		rightBH := walk(n.right, &n.key, hi)
		assert.Equal(t, leftBH, rightBH, "black-height mismatch")

		bh := leftBH
		if n.color == ColorBlack {
			bh++
		}
		return bh
	}

	walk(tr.root, nil, nil)
}
