package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thestics/pynosql/internal/rbtree"
)

func TestFieldIndexAddAccumulatesOffsets(t *testing.T) {
	fi := NewFieldIndex()
	fi.Add(rbtree.FloatKey(1), 10)
	fi.Add(rbtree.FloatKey(1), 20)
	fi.Add(rbtree.FloatKey(2), 30)

	got := fi.Lookup(rbtree.FloatKey(1))
	assert.Equal(t, map[int64]struct{}{10: {}, 20: {}}, got)
	assert.Equal(t, 2, fi.Len())
}

func TestFieldIndexLookupUnknownValueIsEmptyNotNil(t *testing.T) {
	fi := NewFieldIndex()
	got := fi.Lookup(rbtree.StringKey("missing"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFieldIndexRemoveDropsWholeEntry(t *testing.T) {
	fi := NewFieldIndex()
	fi.Add(rbtree.FloatKey(1), 10)
	fi.Add(rbtree.FloatKey(1), 20)

	fi.Remove(rbtree.FloatKey(1))
	assert.Empty(t, fi.Lookup(rbtree.FloatKey(1)))
}

func TestFieldIndexSerializeDeserializeRoundTrip(t *testing.T) {
	fi := NewFieldIndex()
	fi.Add(rbtree.StringKey("a"), 1)
	fi.Add(rbtree.StringKey("a"), 2)
	fi.Add(rbtree.StringKey("b"), 3)

	dump := fi.Serialize()
	require.NotEmpty(t, dump)

	restored := NewFieldIndex()
	require.NoError(t, restored.Deserialize(dump))

	assert.Equal(t, fi.Lookup(rbtree.StringKey("a")), restored.Lookup(rbtree.StringKey("a")))
	assert.Equal(t, fi.Lookup(rbtree.StringKey("b")), restored.Lookup(rbtree.StringKey("b")))
}

func TestFieldIndexDeserializeEmptyMapProducesEmptyIndex(t *testing.T) {
	fi := NewFieldIndex()
	require.NoError(t, fi.Deserialize(map[string]*rbtree.DumpEntry{}))
	assert.Equal(t, 0, fi.Len())
}
