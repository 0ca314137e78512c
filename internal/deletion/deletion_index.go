package deletion

import (
	"iter"
	"os"

	json "github.com/goccy/go-json"

	"github.com/thestics/pynosql/pkg/errors"
	"github.com/thestics/pynosql/pkg/filesys"
)

// DeletionIndex is the persisted tombstone set: the byte offsets of log
// entries that have been logically deleted but not yet removed by a vacuum.
// It is not safe for concurrent use on its own — the engine serializes
// access to it the same way it serializes access to the log.
type DeletionIndex struct {
	path string
	data *SortedList[int64]
}

// New constructs a DeletionIndex backed by the file at path. The file is
// created empty if it doesn't exist yet, matching the log/index files'
// auto-create-on-first-use behavior.
func New(path string) (*DeletionIndex, error) {
	d := &DeletionIndex{path: path, data: NewSortedList[int64]()}
	if err := d.Load(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load replaces the in-memory committed set with the contents of the
// on-disk deletion file. An empty or missing file loads as an empty set.
func (d *DeletionIndex) Load() error {
	raw, err := filesys.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			d.data = NewSortedList[int64]()
			return d.Save()
		}
		return errors.ClassifyFileOpenError(err, d.path, "pynosql.delete.data")
	}

	if len(raw) == 0 {
		d.data = NewSortedList[int64]()
		return nil
	}

	var offsets []int64
	if err := json.Unmarshal(raw, &offsets); err != nil {
		return errors.NewCorruptionError(err, errors.ErrorCodeCorruption,
			"deletion file does not parse as a JSON array of offsets").
			WithPath(d.path).
			WithComponent("deletion")
	}

	fresh := NewSortedList[int64]()
	for _, o := range offsets {
		fresh.InsertSorted(o)
	}
	d.data = fresh
	return nil
}

// Save persists the committed set to disk via a write-to-temp-then-rename
// so a crash mid-write never leaves a truncated deletion file behind.
func (d *DeletionIndex) Save() error {
	encoded, err := json.Marshal(d.data.Items())
	if err != nil {
		return errors.NewCorruptionError(err, errors.ErrorCodeCorruption,
			"failed to encode deletion set as JSON").WithPath(d.path).WithComponent("deletion")
	}
	if err := filesys.AtomicReplace(d.path, encoded, 0644); err != nil {
		return errors.ClassifySyncError(err, "pynosql.delete.data", d.path, 0)
	}
	return nil
}

// Reset clears the committed set, both in memory and on disk. Used by
// vacuum once the tombstoned ranges have been physically removed from the
// log, since every offset the set named is now stale.
func (d *DeletionIndex) Reset() error {
	d.data = NewSortedList[int64]()
	return d.Save()
}

// IsDeleted reports whether offset is in the committed tombstone set.
func (d *DeletionIndex) IsDeleted(offset int64) bool {
	return d.data.Contains(offset)
}

// IterateSorted yields every committed offset in ascending order.
func (d *DeletionIndex) IterateSorted() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for _, o := range d.data.Items() {
			if !yield(o) {
				return
			}
		}
	}
}

// AtomicHandle is the scope passed to a function running under
// DeletionIndex.Atomic. Marks made through it are buffered, never visible
// to IsDeleted on the committed set until the scope commits successfully.
type AtomicHandle struct {
	buffer *SortedList[int64]
}

// MarkDeleted records offset as deleted within the current atomic scope.
// It only touches the buffer — nothing is visible outside the scope until
// Atomic commits it.
func (h *AtomicHandle) MarkDeleted(offset int64) {
	h.buffer.InsertSorted(offset)
}

// IsDeleted checks both the committed set and the scope's own buffer, so a
// handler can tell whether an offset it's about to mark was already marked
// earlier in the same scope.
func (h *AtomicHandle) IsDeleted(offset int64, committed *DeletionIndex) bool {
	return committed.IsDeleted(offset) || h.buffer.Contains(offset)
}

// Atomic runs fn under a scoped commit: every MarkDeleted call during fn
// lands in a private buffer, invisible to the committed set. If fn returns
// nil, the buffer is merged into the committed set and persisted; on any
// error — fn's own return, or a panic recovered and re-raised after
// discarding the buffer — the buffer is dropped and the committed set and
// on-disk file are left exactly as they were. Callers never observe a
// partial delete.
func (d *DeletionIndex) Atomic(fn func(*AtomicHandle) error) (err error) {
	handle := &AtomicHandle{buffer: NewSortedList[int64]()}

	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		if err != nil {
			return
		}
		for _, o := range handle.buffer.Items() {
			d.data.InsertSorted(o)
		}
		if saveErr := d.Save(); saveErr != nil {
			err = saveErr
		}
	}()

	err = fn(handle)
	return err
}
