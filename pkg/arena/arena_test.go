package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlabAlloc(t *testing.T) {
	a := New()
	s := NewSlab[int64](a)

	for i := 0; i < 200; i++ {
		h, p := s.Alloc()
		require.EqualValues(t, i, h)
		require.Zero(t, *p)
		*p = int64(i)
	}
	require.Equal(t, 200, s.Len())
	require.Equal(t, 200, a.NumAllocated())

	for i := 0; i < 200; i++ {
		require.EqualValues(t, i, *s.At(Handle(i)))
	}
}

// Blocks must not move as the slab grows: pointers handed out early stay
// usable after many further allocations.
func TestSlabPointerStability(t *testing.T) {
	a := New(WithChunkSize(4))
	s := NewSlab[int32](a)

	_, p0 := s.Alloc()
	*p0 = 42
	for i := 0; i < 100; i++ {
		s.Alloc()
	}
	require.EqualValues(t, 42, *p0)
	require.Same(t, p0, s.At(0))
}

func TestArenaReset(t *testing.T) {
	a := New()
	s := NewSlab[int64](a)

	h, p := s.Alloc()
	*p = 7
	require.EqualValues(t, 0, h)
	require.Equal(t, 1, a.NumAllocated())

	gen := a.Generation()
	a.Reset()
	require.NotEqual(t, gen, a.Generation())
	require.Equal(t, 0, a.NumAllocated())

	// The slab starts over from block zero.
	h, p = s.Alloc()
	require.EqualValues(t, 0, h)
	require.Zero(t, *p)
	require.Equal(t, 1, s.Len())
}

func TestTwoSlabsOneArena(t *testing.T) {
	a := New()
	s1 := NewSlab[int32](a)
	s2 := NewSlab[string](a)

	s1.Alloc()
	s1.Alloc()
	_, p := s2.Alloc()
	*p = "x"

	require.Equal(t, 2, s1.Len())
	require.Equal(t, 1, s2.Len())
	require.Equal(t, 3, a.NumAllocated())
	require.Equal(t, "x", *s2.At(0))
}
