// Package pynosql is the public entry point for embedding a pynosql
// document store: an append-only JSON log with RBTree-backed secondary
// indexes, point-equality queries, soft deletes, and vacuum/compaction.
package pynosql

import (
	"context"

	"github.com/thestics/pynosql/internal/engine"
	"github.com/thestics/pynosql/internal/storage"
	"github.com/thestics/pynosql/pkg/logger"
	"github.com/thestics/pynosql/pkg/options"
)

// Instance is a handle to an open pynosql store. It encapsulates the
// underlying engine responsible for data handling and the configuration
// options this particular instance was opened with.
type Instance struct {
	engine  *engine.Engine
	options *options.Options
}

// New opens (creating if necessary) a pynosql instance under the
// configured storage directory. service names the logger's component tag
// when no logger is supplied via options.WithLogger.
func New(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	if resolved.Logger == nil {
		resolved.Logger = logger.New(service)
	}

	eng, err := engine.New(ctx, &engine.Config{Logger: resolved.Logger, Options: &resolved})
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &resolved}, nil
}

// CreateObject stores record, assigning it a fresh `_id` (the caller's map
// is modified in place), and returns that same map.
func (i *Instance) CreateObject(ctx context.Context, record map[string]any) (map[string]any, error) {
	stored, err := i.engine.CreateObject(ctx, storage.Record(record))
	if err != nil {
		return nil, err
	}
	return map[string]any(stored), nil
}

// GetObjects returns every record whose fields exactly match every
// (field, value) pair in constraints. An empty constraints map returns
// every non-deleted record in the store.
func (i *Instance) GetObjects(ctx context.Context, constraints map[string]any) ([]map[string]any, error) {
	records, err := i.engine.GetObjects(ctx, constraints)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, len(records))
	for idx, rec := range records {
		results[idx] = map[string]any(rec)
	}
	return results, nil
}

// DeleteObjects marks every record matching constraints as deleted and
// returns how many were marked. The underlying log is left untouched until
// a later Vacuum reclaims the space.
func (i *Instance) DeleteObjects(ctx context.Context, constraints map[string]any) (int, error) {
	return i.engine.DeleteObjects(ctx, constraints)
}

// Vacuum rewrites the log to physically remove every deleted record and
// rebuilds the index set against the rewritten log.
func (i *Instance) Vacuum(ctx context.Context) error {
	return i.engine.Vacuum(ctx)
}

// Close releases all resources held by the instance, including the log
// file handle and any running background auto-vacuum loop.
func (i *Instance) Close() error {
	return i.engine.Close()
}
