package rbtree

import (
	"github.com/thestics/pynosql/pkg/errors"
)

// DumpEntry is one slot in a level-order tree encoding: either a node's
// key/value/color, or nil standing in for an absent child. Preserving the
// nil slots is what lets Load rebuild the exact same shape without
// re-running the fix-up logic — the encoding carries structure, not just
// the key set.
type DumpEntry struct {
	Key   Key   `json:"key"`
	Value any   `json:"value"`
	Color Color `json:"color"`
}

// Dump encodes the tree as a level-order (breadth-first) slice. An absent
// child is recorded as a nil *DumpEntry and its subtree is not descended
// into, matching the convention an empty tree dumps to a nil slice.
func (t *Tree) Dump() []*DumpEntry {
	if t.root == t.nilN {
		return nil
	}

	var result []*DumpEntry
	queue := []*node{t.root}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if n == t.nilN {
			result = append(result, nil)
			continue
		}

		result = append(result, &DumpEntry{Key: n.key, Value: n.value, Color: n.color})
		queue = append(queue, n.left, n.right)
	}

	return result
}

// Load rebuilds the tree from a level-order encoding produced by Dump. It
// trusts the stored colors and structure as-is — no fix-up pass runs
// afterward — so a tree loaded this way must have been dumped from a valid
// red-black tree in the first place. On malformed input the tree is left
// untouched and a corruption error is returned.
func (t *Tree) Load(entries []*DumpEntry) error {
	if len(entries) == 0 {
		t.root = t.nilN
		t.size = 0
		return nil
	}

	if entries[0] == nil {
		return errors.NewIndexCorruptionError("", "Load",
			nil).WithDetail("reason", "root slot of a non-empty dump cannot be a sentinel")
	}

	root := &node{
		key:    entries[0].Key,
		value:  entries[0].Value,
		color:  entries[0].Color,
		left:   t.nilN,
		right:  t.nilN,
		parent: t.nilN,
	}

	queue := []*node{root}
	size := 1
	i := 1

	for len(queue) > 0 && i < len(entries) {
		n := queue[0]
		queue = queue[1:]

		if i < len(entries) {
			if e := entries[i]; e != nil {
				left := &node{key: e.Key, value: e.Value, color: e.Color, left: t.nilN, right: t.nilN, parent: n}
				n.left = left
				queue = append(queue, left)
				size++
			}
			i++
		}

		if i < len(entries) {
			if e := entries[i]; e != nil {
				right := &node{key: e.Key, value: e.Value, color: e.Color, left: t.nilN, right: t.nilN, parent: n}
				n.right = right
				queue = append(queue, right)
				size++
			}
			i++
		}
	}

	t.root = root
	t.size = size
	return nil
}
