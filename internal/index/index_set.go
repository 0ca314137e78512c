package index

import (
	"iter"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/thestics/pynosql/internal/rbtree"
	"github.com/thestics/pynosql/internal/storage"
	"github.com/thestics/pynosql/pkg/errors"
	"github.com/thestics/pynosql/pkg/filesys"
	"go.uber.org/zap"
)

// IndexSet is the named collection of FieldIndexes, one per distinct
// top-level field ever seen across indexed records, persisted as a single
// JSON file. Referencing a field name that has never been indexed yields a
// fresh, empty FieldIndex rather than an error — lazy creation mirrors how
// the log itself tolerates querying fields that happen to be absent from
// every record.
type IndexSet struct {
	path    string
	mu      sync.RWMutex
	indexes map[string]*FieldIndex
	log     *zap.SugaredLogger
}

// New constructs an IndexSet backed by the file at path, loading any
// existing content immediately.
func New(path string, log *zap.SugaredLogger) (*IndexSet, error) {
	is := &IndexSet{path: path, indexes: make(map[string]*FieldIndex), log: log}
	if err := is.Load(); err != nil {
		return nil, err
	}
	return is, nil
}

// Load replaces the in-memory index set with the contents of the on-disk
// index file. A missing file is created empty; an empty file loads as an
// empty mapping.
func (is *IndexSet) Load() error {
	is.mu.Lock()
	defer is.mu.Unlock()

	raw, err := filesys.ReadFile(is.path)
	if err != nil {
		if os.IsNotExist(err) {
			is.indexes = make(map[string]*FieldIndex)
			return is.saveLocked()
		}
		return errors.ClassifyFileOpenError(err, is.path, "pynosql.index.data")
	}

	if len(raw) == 0 {
		is.indexes = make(map[string]*FieldIndex)
		return nil
	}

	var wire map[string]map[string]*rbtree.DumpEntry
	if err := json.Unmarshal(raw, &wire); err != nil {
		return errors.NewIndexCorruptionError("", "Load", err).WithDetail("path", is.path)
	}

	loaded := make(map[string]*FieldIndex, len(wire))
	for fieldName, dump := range wire {
		fi := NewFieldIndex()
		if err := fi.Deserialize(dump); err != nil {
			return err
		}
		loaded[fieldName] = fi
	}
	is.indexes = loaded
	return nil
}

// Save serializes the whole index set to disk via write-to-temp-then-rename.
func (is *IndexSet) Save() error {
	is.mu.RLock()
	defer is.mu.RUnlock()
	return is.saveLocked()
}

func (is *IndexSet) saveLocked() error {
	wire := make(map[string]map[string]*rbtree.DumpEntry, len(is.indexes))
	for fieldName, fi := range is.indexes {
		wire[fieldName] = fi.Serialize()
	}

	encoded, err := json.Marshal(wire)
	if err != nil {
		return errors.NewIndexCorruptionError("", "Save", err).WithDetail("path", is.path)
	}
	if err := filesys.AtomicReplace(is.path, encoded, 0644); err != nil {
		return errors.ClassifySyncError(err, "pynosql.index.data", is.path, 0)
	}
	return nil
}

// Lookup returns the FieldIndex for fieldName, creating (but not
// persisting) an empty one if the field has never been indexed.
func (is *IndexSet) Lookup(fieldName string) *FieldIndex {
	is.mu.Lock()
	defer is.mu.Unlock()

	fi, ok := is.indexes[fieldName]
	if !ok {
		fi = NewFieldIndex()
		is.indexes[fieldName] = fi
	}
	return fi
}

// IndexRecord adds offset to every field of record (including `_id`) under
// its corresponding FieldIndex, then persists the whole set.
func (is *IndexSet) IndexRecord(record storage.Record, offset int64) error {
	is.mu.Lock()
	for fieldName, value := range record {
		fi, ok := is.indexes[fieldName]
		if !ok {
			fi = NewFieldIndex()
			is.indexes[fieldName] = fi
		}
		fi.Add(rbtree.KeyFromAny(value), offset)
	}
	is.mu.Unlock()

	return is.Save()
}

// Rebuild clears every field index and re-indexes each record drawn from
// records (expected to carry a `_char_no` offset field, as produced by
// storage.Storage.ScanAll(true)), saving once at the end rather than per
// record. Used after a vacuum rewrites the log, when every prior offset is
// stale.
func (is *IndexSet) Rebuild(records iter.Seq[*storage.ScannedRecord]) error {
	is.mu.Lock()
	is.indexes = make(map[string]*FieldIndex)

	for scanned := range records {
		if scanned.Err != nil {
			is.mu.Unlock()
			return scanned.Err
		}

		offsetVal, ok := scanned.Record[charNoField]
		if !ok {
			continue
		}
		offset, ok := offsetVal.(int64)
		if !ok {
			continue
		}

		for fieldName, value := range scanned.Record {
			if fieldName == charNoField {
				continue
			}
			fi, ok := is.indexes[fieldName]
			if !ok {
				fi = NewFieldIndex()
				is.indexes[fieldName] = fi
			}
			fi.Add(rbtree.KeyFromAny(value), offset)
		}
	}
	is.mu.Unlock()

	return is.Save()
}

const charNoField = "_char_no"
