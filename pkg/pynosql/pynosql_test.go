package pynosql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thestics/pynosql/pkg/options"
)

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	dir := t.TempDir()
	inst, err := New(context.Background(), "pynosql-test", options.WithStorageDir(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close() })
	return inst
}

func TestInstanceCreateAndGetObjects(t *testing.T) {
	inst := newTestInstance(t)

	created, err := inst.CreateObject(context.Background(), map[string]any{"a": 1.0, "b": 2.0})
	require.NoError(t, err)
	assert.NotEmpty(t, created["_id"])

	got, err := inst.GetObjects(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created["_id"], got[0]["_id"])
}

func TestInstanceDeleteObjectsThenVacuum(t *testing.T) {
	inst := newTestInstance(t)

	for i := range 10 {
		_, err := inst.CreateObject(context.Background(), map[string]any{"n": float64(i)})
		require.NoError(t, err)
	}

	count, err := inst.DeleteObjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	require.NoError(t, inst.Vacuum(context.Background()))

	got, err := inst.GetObjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
