package deletion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedListInsertSortedMaintainsOrder(t *testing.T) {
	s := NewSortedList[int64]()
	for _, v := range []int64{6, 1, 9, 3, 3, -2, 5} {
		s.InsertSorted(v)
	}
	assert.Equal(t, []int64{-2, 1, 3, 3, 5, 6, 9}, s.Items())
}

func TestSortedListContains(t *testing.T) {
	s := NewSortedList[int64]()
	s.InsertSorted(10)
	s.InsertSorted(20)
	assert.True(t, s.Contains(10))
	assert.False(t, s.Contains(15))
}

func TestSortedListClear(t *testing.T) {
	s := NewSortedList[int64]()
	s.InsertSorted(1)
	s.InsertSorted(2)
	s.Clear()
	assert.Equal(t, 0, s.Len())
}
