// Package engine provides the core database engine implementation for
// pynosql.
//
// The engine serves as the central coordinator and entry point for all
// database operations. It orchestrates the interaction between three main
// subsystems:
//   - Storage: the append-only log of JSON records.
//   - Index: the RBTree-backed secondary indexes over record fields.
//   - Deletion: the tombstone set of offsets logically removed from the log.
//
// The engine implements a thread-safe interface with proper lifecycle
// management: a writer mutex serializes CreateObject's append-plus-index
// unit against DeleteObjects' tombstone commit — both mutate shared state
// the deletion index does not protect on its own — so a record becomes
// visible to indexed queries no later than to a full scan, and a
// reader/writer lock serializes vacuum against every other mutating and
// reading operation so a caller never observes a log rewrite in progress.
package engine

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thestics/pynosql/internal/deletion"
	"github.com/thestics/pynosql/internal/index"
	"github.com/thestics/pynosql/internal/rbtree"
	"github.com/thestics/pynosql/internal/storage"
	pkgerrors "github.com/thestics/pynosql/pkg/errors"
	"github.com/thestics/pynosql/pkg/filesys"
	"github.com/thestics/pynosql/pkg/options"
	"github.com/thestics/pynosql/pkg/tmpfile"
)

var (
	// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
	ErrEngineClosed = errors.New("operation failed: cannot access closed engine")
)

const (
	dataFileName   = "pynosql.data"
	indexFileName  = "pynosql.index.data"
	deleteFileName = "pynosql.delete.data"
)

// Engine is the main database engine that coordinates storage, indexing,
// and deletion bookkeeping. It is the sole writer of all three files under
// its storage directory and is safe for concurrent use by multiple
// goroutines.
type Engine struct {
	log    *zap.SugaredLogger
	closed atomic.Bool

	// writeMu serializes CreateObject's append-then-index-update unit (so
	// readers never see a record in the log without its index entries)
	// against DeleteObjects' tombstone commit, since DeletionIndex mutation
	// isn't safe under concurrent callers on its own.
	writeMu sync.Mutex

	// deletionLock serializes Vacuum against every other mutating and
	// reading operation. Mutators and readers take RLock (they don't
	// conflict with each other beyond writeMu's own serialization);
	// Vacuum takes the exclusive Lock.
	deletionLock sync.RWMutex

	storage   *storage.Storage
	indexes   *index.IndexSet
	deletions *deletion.DeletionIndex

	autoVacuumStop chan struct{}
	autoVacuumDone chan struct{}
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New creates and initializes a new Engine instance, opening (and creating,
// if missing) the log, index, and deletion files under
// config.Options.StorageDir. If a vacuum marker file is found left over
// from a previous run, it means a prior vacuum crashed between publishing
// the rewritten log and rebuilding the indexes; New recovers by resetting
// the deletion index and rebuilding the indexes from the (already
// rewritten) log before removing the marker.
func New(ctx context.Context, config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Options.StorageDir == "" || config.Logger == nil {
		return nil, pkgerrors.NewValidationError(nil, pkgerrors.ErrorCodeInvalidInput, "engine config requires a non-empty storage directory and a logger").
			WithRule("storage_dir_required")
	}

	if err := filesys.CreateDir(config.Options.StorageDir, 0755, true); err != nil {
		return nil, pkgerrors.ClassifyDirectoryCreationError(err, config.Options.StorageDir)
	}

	logPath := filepath.Join(config.Options.StorageDir, dataFileName)
	indexPath := filepath.Join(config.Options.StorageDir, indexFileName)
	deletePath := filepath.Join(config.Options.StorageDir, deleteFileName)
	markerPath := tmpfile.GenerateMarkerName(logPath)

	staleMarker, err := filesys.Exists(markerPath)
	if err != nil {
		return nil, pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to check for a leftover vacuum marker").WithPath(markerPath)
	}

	dataStore, err := storage.New(ctx, &storage.Config{Path: logPath, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	deletions, err := deletion.New(deletePath)
	if err != nil {
		return nil, err
	}

	indexes, err := index.New(indexPath, config.Logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		log:       config.Logger,
		storage:   dataStore,
		indexes:   indexes,
		deletions: deletions,
	}

	if staleMarker {
		config.Logger.Infow("found vacuum marker from a previous run, recovering index set", "path", markerPath)
		if err := e.recoverFromInterruptedVacuum(markerPath); err != nil {
			return nil, err
		}
	}

	if config.Options.AutoVacuumInterval > 0 {
		e.autoVacuumStop = make(chan struct{})
		e.autoVacuumDone = make(chan struct{})
		go e.runAutoVacuum(config.Options.AutoVacuumInterval)
	}

	return e, nil
}

func (e *Engine) recoverFromInterruptedVacuum(markerPath string) error {
	if err := e.deletions.Reset(); err != nil {
		return err
	}
	if err := e.indexes.Rebuild(e.storage.ScanAll(true)); err != nil {
		return err
	}
	if err := filesys.DeleteFile(markerPath); err != nil && !os.IsNotExist(err) {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to remove vacuum marker after recovery").WithPath(markerPath)
	}
	return nil
}

// CreateObject assigns a fresh `_id` to record, appends it to the log, and
// indexes it under every one of its top-level fields, including `_id`.
func (e *Engine) CreateObject(ctx context.Context, record storage.Record) (storage.Record, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if record == nil {
		record = storage.Record{}
	}
	record["_id"] = uuid.NewString()

	e.deletionLock.RLock()
	defer e.deletionLock.RUnlock()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	offset, err := e.storage.Append(record)
	if err != nil {
		return nil, err
	}

	if err := e.indexes.IndexRecord(record, offset); err != nil {
		e.log.Errorw("index update failed after append; index set is stale until the next rebuild",
			"error", err, "offset", offset)
		return nil, err
	}

	return record, nil
}

// GetObjects returns every record matching constraints. An empty
// constraints map streams and returns the whole log (minus tombstoned
// records). A non-empty map intersects the per-field offset sets from the
// index set; a constraint on a field or value never indexed degrades the
// result to empty rather than erroring.
func (e *Engine) GetObjects(ctx context.Context, constraints map[string]any) ([]storage.Record, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	e.deletionLock.RLock()
	defer e.deletionLock.RUnlock()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	offsets, err := e.matchOffsetsLocked(constraints)
	if err != nil {
		return nil, err
	}
	return e.fetchRecordsLocked(offsets)
}

// DeleteObjects runs the same matching logic as GetObjects, then marks
// every matched offset as deleted within a single atomic scope of the
// deletion index. It returns the number of records marked; the log file
// itself is left untouched until a later Vacuum. writeMu serializes this
// against CreateObject and against other concurrent DeleteObjects calls,
// since DeletionIndex itself is not safe for concurrent mutation.
func (e *Engine) DeleteObjects(ctx context.Context, constraints map[string]any) (int, error) {
	if e.closed.Load() {
		return 0, ErrEngineClosed
	}

	e.deletionLock.RLock()
	defer e.deletionLock.RUnlock()

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	offsets, err := e.matchOffsetsLocked(constraints)
	if err != nil {
		return 0, err
	}
	if len(offsets) == 0 {
		return 0, nil
	}

	var count int
	err = e.deletions.Atomic(func(handle *deletion.AtomicHandle) error {
		for _, offset := range offsets {
			if handle.IsDeleted(offset, e.deletions) {
				continue
			}
			handle.MarkDeleted(offset)
			count++
		}
		return nil
	})
	return count, err
}

// matchOffsetsLocked resolves constraints to the set of non-deleted log
// offsets satisfying them. Callers must hold deletionLock (for reading or
// writing; this method only reads).
func (e *Engine) matchOffsetsLocked(constraints map[string]any) ([]int64, error) {
	if len(constraints) == 0 {
		var offsets []int64
		for scanned := range e.storage.ScanAll(false) {
			if scanned.Err != nil {
				return nil, scanned.Err
			}
			if e.deletions.IsDeleted(scanned.Offset) {
				continue
			}
			offsets = append(offsets, scanned.Offset)
		}
		return offsets, nil
	}

	var intersected map[int64]struct{}
	for field, value := range constraints {
		matched := e.indexes.Lookup(field).Lookup(rbtree.KeyFromAny(value))

		if intersected == nil {
			intersected = make(map[int64]struct{}, len(matched))
			for offset := range matched {
				intersected[offset] = struct{}{}
			}
			continue
		}

		for offset := range intersected {
			if _, ok := matched[offset]; !ok {
				delete(intersected, offset)
			}
		}
		if len(intersected) == 0 {
			break
		}
	}

	offsets := make([]int64, 0, len(intersected))
	for offset := range intersected {
		if e.deletions.IsDeleted(offset) {
			continue
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

func (e *Engine) fetchRecordsLocked(offsets []int64) ([]storage.Record, error) {
	if len(offsets) == 0 {
		return []storage.Record{}, nil
	}

	results := make([]storage.Record, 0, len(offsets))
	for scanned := range e.storage.ByOffsets(offsets, false) {
		if scanned.Err != nil {
			return nil, scanned.Err
		}
		results = append(results, scanned.Record)
	}
	return results, nil
}

// Vacuum rewrites the log into a sibling file, skipping every tombstoned
// record, then atomically publishes it over the original log, resets the
// deletion index, and rebuilds the index set from the new log (offsets
// have shifted). A marker file is held for the duration between the
// publish and the rebuild so a crash in between is detected and repaired
// on the next New.
func (e *Engine) Vacuum(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.deletionLock.Lock()
	defer e.deletionLock.Unlock()

	logPath := e.storage.Path()
	markerPath := tmpfile.GenerateMarkerName(logPath)
	tempPath := tmpfile.GenerateVacuumTempName(logPath)

	if err := e.rewriteLog(logPath, tempPath); err != nil {
		filesys.DeleteFile(tempPath)
		return err
	}

	if err := filesys.WriteFile(markerPath, 0644, []byte{}); err != nil {
		filesys.DeleteFile(tempPath)
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to create vacuum marker").WithPath(markerPath)
	}

	if err := os.Rename(tempPath, logPath); err != nil {
		filesys.DeleteFile(tempPath)
		filesys.DeleteFile(markerPath)
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to publish vacuumed log").WithPath(logPath)
	}

	e.log.Infow("vacuum published rewritten log", "path", logPath)

	// The rename is the commit point: the original log and deletion index
	// are consistent if the process dies before this line, and the marker
	// file makes the window between here and the rebuild below recoverable.
	if err := e.storage.Reopen(); err != nil {
		return err
	}
	if err := e.deletions.Reset(); err != nil {
		return err
	}
	if err := e.indexes.Rebuild(e.storage.ScanAll(true)); err != nil {
		return err
	}

	if err := filesys.DeleteFile(markerPath); err != nil && !os.IsNotExist(err) {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to remove vacuum marker after rebuild").WithPath(markerPath)
	}

	e.log.Infow("vacuum rebuilt index set from the new log")
	return nil
}

// rewriteLog streams srcPath into dstPath, walking the committed deletion
// offsets in ascending order: bytes between the previous cut point and each
// deletion offset are copied verbatim, then one full line is read and
// discarded at the deletion offset itself. The remainder of the input is
// copied once every tombstoned offset has been processed. The read side
// never seeks — deletion offsets are visited in ascending order and the
// reader only ever advances, so a single sequential pass suffices.
func (e *Engine) rewriteLog(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to open log for vacuum").WithPath(srcPath)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to create vacuum output file").WithPath(dstPath)
	}
	defer dst.Close()

	reader := bufio.NewReaderSize(src, 64*1024)
	writer := bufio.NewWriterSize(dst, 64*1024)

	var pos int64
	for offset := range e.deletions.IterateSorted() {
		if offset < pos {
			continue
		}

		if toCopy := offset - pos; toCopy > 0 {
			if _, err := io.CopyN(writer, reader, toCopy); err != nil {
				return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to copy log bytes during vacuum").WithPath(srcPath).WithOffset(int(pos))
			}
			pos += toCopy
		}

		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return pkgerrors.NewStorageError(readErr, pkgerrors.ErrorCodeIO, "failed to discard tombstoned line during vacuum").WithPath(srcPath).WithOffset(int(offset))
		}
		pos += int64(len(line))
	}

	if _, err := io.Copy(writer, reader); err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to copy log remainder during vacuum").WithPath(srcPath)
	}
	if err := writer.Flush(); err != nil {
		return pkgerrors.NewStorageError(err, pkgerrors.ErrorCodeIO, "failed to flush vacuum output").WithPath(dstPath)
	}
	return dst.Sync()
}

func (e *Engine) runAutoVacuum(interval time.Duration) {
	defer close(e.autoVacuumDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.autoVacuumStop:
			return
		case <-ticker.C:
			if err := e.Vacuum(context.Background()); err != nil {
				e.log.Errorw("background auto-vacuum failed", "error", err)
			}
		}
	}
}

// Close gracefully shuts down the engine, stopping the background
// auto-vacuum loop (if running) and closing the log file handle.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	if e.autoVacuumStop != nil {
		close(e.autoVacuumStop)
		<-e.autoVacuumDone
	}

	return e.storage.Close()
}
