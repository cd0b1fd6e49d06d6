package intervalmap

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/henderiw/intervalmap/pkg/arena"
)

func newInt32Map(t *testing.T) (*Map[int32, int32], *Allocator[int32, int32]) {
	t.Helper()
	a := arena.New()
	return NewOrdered[int32, int32](), NewAllocator[int32, int32](a)
}

func TestEmptyMap(t *testing.T) {
	m := NewOrdered[int32, int32]()

	require.True(t, m.Empty())
	require.Equal(t, 0, m.Len())
	require.True(t, m.Begin().Equal(m.Begin()))
	require.True(t, m.End().Equal(m.Begin()))
	require.True(t, m.End().Equal(m.End()))
	require.False(t, m.Begin().Valid())
	require.NoError(t, m.Verify())
}

func TestSmallNumElemsInRootLeaf(t *testing.T) {
	m, alloc := newInt32Map(t)

	m.Insert(1, 10, 1, alloc)
	m.Insert(3, 7, 2, alloc)
	m.Insert(2, 12, 3, alloc)
	m.Insert(32, 42, 4, alloc)
	m.Insert(3, 6, 5, alloc)

	it := m.Begin()
	require.False(t, it.Equal(m.End()))
	require.EqualValues(t, 1, it.Left())
	require.EqualValues(t, 10, it.Right())
	require.EqualValues(t, 1, it.Value())

	it.Next()
	require.EqualValues(t, 2, it.Left())
	require.EqualValues(t, 12, it.Right())

	it.Next()
	require.EqualValues(t, 3, it.Left())
	require.EqualValues(t, 6, it.Right())

	it.Next()
	require.EqualValues(t, 3, it.Left())
	require.EqualValues(t, 7, it.Right())

	it.Prev()
	require.EqualValues(t, 6, it.Right())

	it.Prev()
	require.EqualValues(t, 2, it.Left())
	require.EqualValues(t, 3, it.Value())

	lo, hi := m.Bounds()
	require.EqualValues(t, 1, lo)
	require.EqualValues(t, 42, hi)
	require.NoError(t, m.Verify())
}

func TestBranchingInserts(t *testing.T) {
	m, alloc := newInt32Map(t)

	// Insert a bunch of elements to force branching.
	for i := int32(1); i < 1000; i++ {
		m.Insert(10*i, 10*i+5, i, alloc)
		lo, hi := m.Bounds()
		require.EqualValues(t, 10, lo)
		require.Equal(t, 10*i+5, hi)
	}

	require.False(t, m.Empty())
	require.Equal(t, 999, m.Len())
	require.NoError(t, m.Verify())

	it := m.Begin()
	for i := int32(1); i < 1000; i++ {
		require.True(t, it.Valid())
		require.Equal(t, 10*i, it.Left())
		require.Equal(t, 10*i+5, it.Right())
		require.Equal(t, i, it.Value())
		it.Next()
	}
	require.False(t, it.Valid())
	require.True(t, it.Equal(m.End()))

	for i := int32(999); i >= 1; i-- {
		it.Prev()
		require.True(t, it.Valid())
		require.Equal(t, 10*i, it.Left())
		require.Equal(t, 10*i+5, it.Right())
		require.Equal(t, i, it.Value())
	}
	require.True(t, it.Equal(m.Begin()))

	// Insert more intervals in the middle.
	for i := int32(0); i < 100; i++ {
		m.Insert(11*i, 11*i+i, i, alloc)
	}

	// Insert a bunch of pseudo-random intervals.
	rng := rand.New(rand.NewSource(1))
	for i := int32(0); i < 1000; i++ {
		left := int32(rng.Intn(10000)) + 1
		right := left + int32(rng.Intn(10000-int(left)+1))
		m.Insert(left, right, i, alloc)
	}

	require.Equal(t, 999+100+1000, m.Len())
	require.NoError(t, m.Verify())

	// The forward traversal must stay sorted by (left, right).
	prevLeft, prevRight := int32(0), int32(0)
	first := true
	for it := m.Begin(); it.Valid(); it.Next() {
		if !first {
			ordered := it.Left() > prevLeft ||
				(it.Left() == prevLeft && it.Right() >= prevRight)
			require.True(t, ordered, "entry (%d,%d) after (%d,%d)", it.Left(), it.Right(), prevLeft, prevRight)
		}
		prevLeft, prevRight = it.Left(), it.Right()
		first = false
	}
}

func TestBidirectionalSymmetry(t *testing.T) {
	m, alloc := newInt32Map(t)

	rng := rand.New(rand.NewSource(7))
	for i := int32(0); i < 500; i++ {
		left := int32(rng.Intn(1000))
		right := left + int32(rng.Intn(100))
		m.Insert(left, right, i, alloc)
	}

	type rec struct{ Left, Right, Value int32 }
	var forward []rec
	it := m.Begin()
	for it.Valid() {
		forward = append(forward, rec{it.Left(), it.Right(), it.Value()})
		it.Next()
	}
	require.Len(t, forward, 500)

	var backward []rec
	for i := 0; i < 500; i++ {
		it.Prev()
		backward = append(backward, rec{it.Left(), it.Right(), it.Value()})
	}
	require.True(t, it.Equal(m.Begin()))

	for i, j := 0, len(backward)-1; i < j; i, j = i+1, j-1 {
		backward[i], backward[j] = backward[j], backward[i]
	}
	if diff := cmp.Diff(forward, backward); diff != "" {
		t.Errorf("backward traversal mismatch (-forward +reversed backward):\n%s", diff)
	}
}

// Entries sharing the same (left, right) pair come back in insertion
// order, also when the run of duplicates is split across several leaves.
func TestDuplicateKeysKeepInsertionOrder(t *testing.T) {
	m, alloc := newInt32Map(t)

	for i := int32(1); i <= 50; i++ {
		m.Insert(5, 5, i, alloc)
	}
	m.Insert(4, 20, 100, alloc)
	m.Insert(6, 6, 101, alloc)
	for i := int32(51); i <= 60; i++ {
		m.Insert(5, 5, i, alloc)
	}
	require.NoError(t, m.Verify())

	var dups []int32
	for it := m.Begin(); it.Valid(); it.Next() {
		if it.Left() == 5 && it.Right() == 5 {
			dups = append(dups, it.Value())
		}
	}
	require.Len(t, dups, 60)
	for i, v := range dups {
		require.Equal(t, int32(i+1), v)
	}
}

func TestVisitOverlapping(t *testing.T) {
	m, alloc := newInt32Map(t)

	m.Insert(1, 10, 1, alloc)
	m.Insert(3, 7, 2, alloc)
	m.Insert(2, 12, 3, alloc)
	m.Insert(32, 42, 4, alloc)
	m.Insert(3, 6, 5, alloc)

	var got []int32
	m.VisitOverlapping(8, 33, func(left, right, value int32) bool {
		got = append(got, value)
		return true
	})
	require.Equal(t, []int32{1, 3, 4}, got)

	// Early stop after the first hit.
	got = got[:0]
	m.VisitOverlapping(8, 33, func(left, right, value int32) bool {
		got = append(got, value)
		return false
	})
	require.Equal(t, []int32{1}, got)

	// No overlap at all.
	got = got[:0]
	m.VisitOverlapping(100, 200, func(left, right, value int32) bool {
		got = append(got, value)
		return true
	})
	require.Empty(t, got)
}

func TestVisitOverlappingBranched(t *testing.T) {
	m, alloc := newInt32Map(t)

	// Disjoint intervals [10i, 10i+5] so the expected hits are easy to
	// enumerate after the tree has branched several times.
	for i := int32(1); i < 1000; i++ {
		m.Insert(10*i, 10*i+5, i, alloc)
	}

	var got []int32
	m.VisitOverlapping(105, 132, func(left, right, value int32) bool {
		got = append(got, value)
		return true
	})
	require.Equal(t, []int32{10, 11, 12, 13}, got)

	got = got[:0]
	m.VisitOverlapping(9996, 20000, func(left, right, value int32) bool {
		got = append(got, value)
		return true
	})
	require.Empty(t, got)
}

func TestBoundsPanicsOnEmptyMap(t *testing.T) {
	m := NewOrdered[int32, int32]()
	require.Panics(t, func() { m.Bounds() })
}

func TestSentinelStepPanics(t *testing.T) {
	m, alloc := newInt32Map(t)
	m.Insert(1, 2, 1, alloc)

	require.Panics(t, func() { m.End().Next() })
	require.Panics(t, func() { m.End().Value() })

	it := m.Begin()
	it.Prev()
	require.False(t, it.Valid())
	require.Panics(t, func() { it.Left() })
	require.Panics(t, func() { it.Prev() })

	// The before-begin sentinel steps back onto the first entry.
	it.Next()
	require.True(t, it.Valid())
	require.EqualValues(t, 1, it.Left())

	empty := NewOrdered[int32, int32]()
	require.Panics(t, func() { empty.End().Prev() })
}

func TestIteratorInvalidatedByInsert(t *testing.T) {
	m, alloc := newInt32Map(t)
	m.Insert(1, 2, 1, alloc)
	m.Insert(3, 4, 2, alloc)

	it := m.Begin()
	require.True(t, it.Valid())
	m.Insert(5, 6, 3, alloc)

	require.Panics(t, func() { it.Next() })
	require.Panics(t, func() { it.Value() })
}

func TestAllocatorContract(t *testing.T) {
	a := arena.New()
	alloc := NewAllocator[int32, int32](a)
	other := NewAllocator[int32, int32](a)
	m := NewOrdered[int32, int32]()

	require.Panics(t, func() { m.Insert(1, 2, 1, nil) })

	// Fill past the inline capacity so the map binds to its allocator.
	for i := int32(0); i < 10; i++ {
		m.Insert(i, i+1, i, alloc)
	}
	require.Panics(t, func() { m.Insert(20, 21, 1, other) })
}

func TestMapsSharingOneArena(t *testing.T) {
	a := arena.New()
	alloc := NewAllocator[int32, int32](a)

	m1 := NewOrdered[int32, int32]()
	m2 := NewOrdered[int32, int32]()
	for i := int32(0); i < 100; i++ {
		m1.Insert(i, i+10, i, alloc)
		m2.Insert(-i, i, i, alloc)
	}

	require.NoError(t, m1.Verify())
	require.NoError(t, m2.Verify())
	require.Equal(t, 100, m1.Len())
	require.Equal(t, 100, m2.Len())

	lo, hi := m2.Bounds()
	require.EqualValues(t, -99, lo)
	require.EqualValues(t, 99, hi)

	// Both maps drew their nodes from the same arena.
	require.Greater(t, a.NumAllocated(), 0)
}

func TestStringKeys(t *testing.T) {
	a := arena.New()
	alloc := NewAllocator[string, int](a)
	m := NewOrdered[string, int]()

	m.Insert("f", "k", 1, alloc)
	m.Insert("a", "c", 2, alloc)
	m.Insert("a", "b", 3, alloc)

	it := m.Begin()
	require.Equal(t, "a", it.Left())
	require.Equal(t, "b", it.Right())
	require.Equal(t, 3, it.Value())

	lo, hi := m.Bounds()
	require.Equal(t, "a", lo)
	require.Equal(t, "k", hi)
	require.NoError(t, m.Verify())
}
