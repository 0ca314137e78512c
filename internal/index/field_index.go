// Package index implements the secondary indexing layer: FieldIndex wraps a
// single RBTree mapping one field's distinct values to the set of log
// offsets where a record with that value lives, and IndexSet collects one
// FieldIndex per indexed field with whole-file load/save.
package index

import (
	"strconv"

	"github.com/thestics/pynosql/internal/rbtree"
	"github.com/thestics/pynosql/pkg/errors"
)

// FieldIndex maps the distinct values observed for one record field to the
// set of log offsets carrying that value. The value type stored in the
// underlying tree is always a map[int64]struct{} — never a bare offset —
// since a field value recurring across many records is the expected case,
// not an edge case.
type FieldIndex struct {
	tree *rbtree.Tree
}

// NewFieldIndex constructs an empty FieldIndex.
func NewFieldIndex() *FieldIndex {
	return &FieldIndex{tree: rbtree.New()}
}

// Add records offset under value, joining the existing offset set for value
// if one is already present.
func (fi *FieldIndex) Add(value rbtree.Key, offset int64) {
	if existing, ok := fi.tree.Search(value); ok {
		existing.(map[int64]struct{})[offset] = struct{}{}
		return
	}
	fi.tree.Insert(value, map[int64]struct{}{offset: {}})
}

// Remove deletes the whole entry for value, every offset it carried along
// with it. Per-offset removal is not a primitive operation here — a caller
// that needs it composes Remove followed by re-adding the surviving offsets.
func (fi *FieldIndex) Remove(value rbtree.Key) {
	fi.tree.Delete(value)
}

// Lookup returns the offset set recorded for value, or an empty (never
// nil) map when value has never been indexed.
func (fi *FieldIndex) Lookup(value rbtree.Key) map[int64]struct{} {
	if existing, ok := fi.tree.Search(value); ok {
		return existing.(map[int64]struct{})
	}
	return map[int64]struct{}{}
}

// Len reports the number of distinct values currently indexed.
func (fi *FieldIndex) Len() int { return fi.tree.Len() }

// Serialize renders the underlying tree as its level-order dump, keyed by
// stringified positional index. A JSON object rather than a possibly-ragged
// array of arrays, per the index file's wire format.
func (fi *FieldIndex) Serialize() map[string]*rbtree.DumpEntry {
	dump := fi.tree.Dump()
	out := make(map[string]*rbtree.DumpEntry, len(dump))
	for i, entry := range dump {
		if entry == nil {
			continue
		}
		// offsets travel as a JSON-encodable slice rather than the
		// in-memory map[int64]struct{}, since maps with non-string keys
		// have no JSON representation.
		offsets := entry.Value.(map[int64]struct{})
		list := make([]int64, 0, len(offsets))
		for o := range offsets {
			list = append(list, o)
		}
		out[strconv.Itoa(i)] = &rbtree.DumpEntry{Key: entry.Key, Value: list, Color: entry.Color}
	}
	return out
}

// Deserialize recovers a FieldIndex from the positional-index-keyed object
// Serialize produced, rebuilding the tree via rbtree.Load. On malformed
// input an index corruption error is returned and the receiver is left
// untouched.
func (fi *FieldIndex) Deserialize(data map[string]*rbtree.DumpEntry) error {
	if len(data) == 0 {
		fi.tree = rbtree.New()
		return nil
	}

	// Serialize only writes non-nil positions to the wire map, so the
	// highest positional key can exceed len(data) whenever the dump had
	// absent-child gaps — size the reconstructed slice by the max key seen,
	// not by how many keys are present.
	positions := make(map[int]*rbtree.DumpEntry, len(data))
	maxIndex := -1
	for k, entry := range data {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return errors.NewIndexCorruptionError("", "Deserialize", err).
				WithDetail("reason", "non-numeric or negative positional key")
		}
		positions[i] = entry
		if i > maxIndex {
			maxIndex = i
		}
	}

	ordered := make([]*rbtree.DumpEntry, maxIndex+1)
	for i, entry := range positions {
		offsets, err := decodeOffsetList(entry.Value)
		if err != nil {
			return errors.NewIndexCorruptionError("", "Deserialize", err)
		}
		set := make(map[int64]struct{}, len(offsets))
		for _, o := range offsets {
			set[o] = struct{}{}
		}
		ordered[i] = &rbtree.DumpEntry{Key: entry.Key, Value: set, Color: entry.Color}
	}

	tree := rbtree.New()
	if err := tree.Load(ordered); err != nil {
		return err
	}
	fi.tree = tree
	return nil
}

// decodeOffsetList normalizes the JSON-decoded offset list: goccy/go-json
// decodes a JSON array of numbers into []any holding float64 elements when
// the target type is `any`, so this converts back to int64.
func decodeOffsetList(v any) ([]int64, error) {
	switch t := v.(type) {
	case []int64:
		return t, nil
	case []any:
		out := make([]int64, 0, len(t))
		for _, e := range t {
			f, ok := e.(float64)
			if !ok {
				return nil, errors.NewIndexCorruptionError("", "decodeOffsetList", nil)
			}
			out = append(out, int64(f))
		}
		return out, nil
	default:
		return nil, errors.NewIndexCorruptionError("", "decodeOffsetList", nil)
	}
}
