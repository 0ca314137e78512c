package index

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thestics/pynosql/internal/rbtree"
	"github.com/thestics/pynosql/internal/storage"
)

func newTestIndexSet(t *testing.T) (*IndexSet, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pynosql.index.data")
	is, err := New(path, zap.NewNop().Sugar())
	require.NoError(t, err)
	return is, path
}

func TestIndexSetLookupUnknownFieldIsLazyAndEmpty(t *testing.T) {
	is, _ := newTestIndexSet(t)
	fi := is.Lookup("nonexistent")
	require.NotNil(t, fi)
	assert.Equal(t, 0, fi.Len())
}

func TestIndexSetIndexRecordIndexesEveryField(t *testing.T) {
	is, _ := newTestIndexSet(t)
	require.NoError(t, is.IndexRecord(storage.Record{"_id": "abc", "a": 1.0}, 42))

	assert.Equal(t, map[int64]struct{}{42: {}}, is.Lookup("_id").Lookup(rbtree.StringKey("abc")))
	assert.Equal(t, map[int64]struct{}{42: {}}, is.Lookup("a").Lookup(rbtree.FloatKey(1)))
}

func TestIndexSetSaveLoadRoundTrip(t *testing.T) {
	is, path := newTestIndexSet(t)
	require.NoError(t, is.IndexRecord(storage.Record{"a": 1.0}, 10))
	require.NoError(t, is.IndexRecord(storage.Record{"a": 2.0}, 20))

	reloaded, err := New(path, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, map[int64]struct{}{10: {}}, reloaded.Lookup("a").Lookup(rbtree.FloatKey(1)))
	assert.Equal(t, map[int64]struct{}{20: {}}, reloaded.Lookup("a").Lookup(rbtree.FloatKey(2)))
}

func TestIndexSetRebuildReplacesAllIndexes(t *testing.T) {
	is, _ := newTestIndexSet(t)
	require.NoError(t, is.IndexRecord(storage.Record{"stale": "x"}, 1))

	records := []*storage.ScannedRecord{
		{Record: storage.Record{"a": 1.0, charNoField: int64(0)}},
		{Record: storage.Record{"a": 2.0, charNoField: int64(10)}},
	}

	err := is.Rebuild(slices.Values(records))
	require.NoError(t, err)

	assert.Equal(t, 0, is.Lookup("stale").Len())
	assert.Equal(t, map[int64]struct{}{0: {}}, is.Lookup("a").Lookup(rbtree.FloatKey(1)))
	assert.Equal(t, map[int64]struct{}{10: {}}, is.Lookup("a").Lookup(rbtree.FloatKey(2)))
}

func TestIndexSetRebuildPropagatesScanError(t *testing.T) {
	is, _ := newTestIndexSet(t)
	sentinel := assert.AnError
	records := []*storage.ScannedRecord{{Err: sentinel}}

	err := is.Rebuild(slices.Values(records))
	assert.ErrorIs(t, err, sentinel)
}
