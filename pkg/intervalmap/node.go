package intervalmap

import (
	"sort"

	"github.com/henderiw/intervalmap/pkg/arena"
)

const (
	// rootLeafCapacity entries live inline in the map handle before the
	// first node is allocated.
	rootLeafCapacity = 4
	// leafCapacity and branchCapacity size the arena node blocks. Nodes
	// below the root always hold at least half that.
	leafCapacity   = 8
	branchCapacity = 8
)

type interval[K any] struct {
	left  K
	right K
}

// compareIntervals orders intervals by left endpoint, then right.
func compareIntervals[K any](cmp CompareFunc[K], a, b interval[K]) int {
	if c := cmp(a.left, b.left); c != 0 {
		return c
	}
	return cmp(a.right, b.right)
}

type entry[K, V any] struct {
	key   interval[K]
	value V
}

// leafNode stores entries sorted by key. Entries only move on an
// insertion shift or a split; an entry is never divided across leaves.
type leafNode[K, V any] struct {
	entries [leafCapacity]entry[K, V]
	n       int8
}

// findSlot returns the upper-bound position for key: the first slot whose
// key sorts strictly after it. Inserting there keeps entries with equal
// keys in insertion order.
func (l *leafNode[K, V]) findSlot(cmp CompareFunc[K], key interval[K]) int {
	return sort.Search(int(l.n), func(i int) bool {
		return compareIntervals(cmp, key, l.entries[i].key) < 0
	})
}

func (l *leafNode[K, V]) insertAt(slot int, e entry[K, V]) {
	copy(l.entries[slot+1:int(l.n)+1], l.entries[slot:int(l.n)])
	l.entries[slot] = e
	l.n++
}

// splitInto moves the upper half of l's entries into other, which must be
// empty. Both halves end up with at least leafCapacity/2 entries.
func (l *leafNode[K, V]) splitInto(other *leafNode[K, V]) {
	mid := int(l.n) / 2
	moved := copy(other.entries[:], l.entries[mid:int(l.n)])
	other.n = int8(moved)
	var zero entry[K, V]
	for i := mid; i < int(l.n); i++ {
		l.entries[i] = zero
	}
	l.n = int8(mid)
}

// summary returns the key of the leaf's first entry and the largest right
// endpoint among its entries. The leaf must not be empty.
func (l *leafNode[K, V]) summary(cmp CompareFunc[K]) (first interval[K], maxRight K) {
	first = l.entries[0].key
	maxRight = l.entries[0].key.right
	for i := 1; i < int(l.n); i++ {
		if cmp(l.entries[i].key.right, maxRight) > 0 {
			maxRight = l.entries[i].key.right
		}
	}
	return first, maxRight
}

// childRef points a branch at one subtree, together with the cached
// summary guiding descent and bound queries: the key of the subtree's
// first entry (whose left endpoint is also the subtree minimum) and the
// largest right endpoint anywhere below.
type childRef[K any] struct {
	node     arena.Handle
	first    interval[K]
	maxRight K
}

// branchNode holds child references sorted by their first keys. Whether a
// child is a leaf or another branch follows from the node's level: all
// leaves sit at the same depth.
type branchNode[K any] struct {
	children [branchCapacity]childRef[K]
	n        int8
}

// findChild returns the slot of the last child whose first key is not
// greater than key, or 0 when key sorts before every child. Equal keys
// resolve to the rightmost candidate so that later inserts land after
// earlier ones.
func (b *branchNode[K]) findChild(cmp CompareFunc[K], key interval[K]) int {
	i := sort.Search(int(b.n), func(i int) bool {
		return compareIntervals(cmp, key, b.children[i].first) < 0
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

func (b *branchNode[K]) insertChildAt(slot int, ref childRef[K]) {
	copy(b.children[slot+1:int(b.n)+1], b.children[slot:int(b.n)])
	b.children[slot] = ref
	b.n++
}

// splitInto moves the upper half of b's children into other, which must
// be empty.
func (b *branchNode[K]) splitInto(other *branchNode[K]) {
	mid := int(b.n) / 2
	moved := copy(other.children[:], b.children[mid:int(b.n)])
	other.n = int8(moved)
	var zero childRef[K]
	for i := mid; i < int(b.n); i++ {
		b.children[i] = zero
	}
	b.n = int8(mid)
}

// summary aggregates the cached child summaries. The branch must not be
// empty.
func (b *branchNode[K]) summary(cmp CompareFunc[K]) (first interval[K], maxRight K) {
	first = b.children[0].first
	maxRight = b.children[0].maxRight
	for i := 1; i < int(b.n); i++ {
		if cmp(b.children[i].maxRight, maxRight) > 0 {
			maxRight = b.children[i].maxRight
		}
	}
	return first, maxRight
}
