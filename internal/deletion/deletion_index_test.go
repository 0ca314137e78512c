package deletion

import (
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) (*DeletionIndex, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pynosql.delete.data")
	d, err := New(path)
	require.NoError(t, err)
	return d, path
}

func TestDeletionIndexCreatesEmptyFileOnFirstUse(t *testing.T) {
	_, path := newTestIndex(t)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestDeletionIndexAtomicCommitPersistsOnSuccess(t *testing.T) {
	d, path := newTestIndex(t)

	err := d.Atomic(func(h *AtomicHandle) error {
		h.MarkDeleted(10)
		h.MarkDeleted(20)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, d.IsDeleted(10))
	assert.True(t, d.IsDeleted(20))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[10,20]", string(raw))
}

func TestDeletionIndexAtomicDiscardsOnError(t *testing.T) {
	d, path := newTestIndex(t)

	sentinel := stdErrors.New("boom")
	err := d.Atomic(func(h *AtomicHandle) error {
		h.MarkDeleted(99)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	assert.False(t, d.IsDeleted(99))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestDeletionIndexAtomicDiscardsOnPanic(t *testing.T) {
	d, path := newTestIndex(t)

	assert.Panics(t, func() {
		_ = d.Atomic(func(h *AtomicHandle) error {
			h.MarkDeleted(7)
			panic("unexpected")
		})
	})

	assert.False(t, d.IsDeleted(7))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestDeletionIndexLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pynosql.delete.data")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := New(path)
	assert.Error(t, err)
}

func TestDeletionIndexResetClearsCommittedSetAndFile(t *testing.T) {
	d, path := newTestIndex(t)
	require.NoError(t, d.Atomic(func(h *AtomicHandle) error {
		h.MarkDeleted(1)
		h.MarkDeleted(2)
		return nil
	}))

	require.NoError(t, d.Reset())
	assert.False(t, d.IsDeleted(1))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestDeletionIndexIterateSortedIsAscending(t *testing.T) {
	d, _ := newTestIndex(t)
	require.NoError(t, d.Atomic(func(h *AtomicHandle) error {
		h.MarkDeleted(30)
		h.MarkDeleted(10)
		h.MarkDeleted(20)
		return nil
	}))

	var got []int64
	for o := range d.IterateSorted() {
		got = append(got, o)
	}
	assert.Equal(t, []int64{10, 20, 30}, got)
}

func TestDeletionIndexLoadReloadsFromDisk(t *testing.T) {
	d, path := newTestIndex(t)
	require.NoError(t, d.Atomic(func(h *AtomicHandle) error {
		h.MarkDeleted(5)
		return nil
	}))

	d2, err := New(path)
	require.NoError(t, err)
	assert.True(t, d2.IsDeleted(5))
}
