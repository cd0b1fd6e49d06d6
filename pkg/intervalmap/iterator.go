package intervalmap

import "github.com/henderiw/intervalmap/pkg/arena"

// pathFrame records one branch on the path from the root to the current
// leaf, along with the child slot taken.
type pathFrame struct {
	node arena.Handle
	slot int8
}

type iterState int8

const (
	iterOnEntry iterState = iota
	iterBeforeBegin
	iterAtEnd
)

// Iterator is a cursor over a map, positioned either on an entry or on
// one of the two sentinels: before the first entry or past the last one.
// It keeps the path of branches leading to the current leaf, so stepping
// is O(1) amortized without re-descending from the root.
//
// Iterators are not stable across insertions: a split relocates entries
// between nodes and a plain insert shifts entries within a leaf. Every
// Insert on the map therefore invalidates all outstanding iterators, and
// moving or reading one afterwards panics.
type Iterator[K, V any] struct {
	m   *Map[K, V]
	gen uint32

	// Branch levels from the root down; empty while the root is a leaf
	// or the map is still inline.
	stack []pathFrame
	leaf  arena.Handle // -1 while the map root is inline
	slot  int8
	state iterState
}

// Begin returns an iterator on the first entry, or the end sentinel for
// an empty map.
func (m *Map[K, V]) Begin() *Iterator[K, V] {
	it := &Iterator[K, V]{m: m, gen: m.gen, leaf: -1}
	if m.length == 0 {
		it.state = iterAtEnd
		return it
	}
	it.seekFirst()
	return it
}

// End returns the one-past-last sentinel. On an empty map it equals
// Begin.
func (m *Map[K, V]) End() *Iterator[K, V] {
	return &Iterator[K, V]{m: m, gen: m.gen, leaf: -1, state: iterAtEnd}
}

func (it *Iterator[K, V]) check() {
	if it.gen != it.m.gen {
		panic("intervalmap: iterator used after insert")
	}
}

// Valid reports whether the iterator is positioned on an entry rather
// than a sentinel.
func (it *Iterator[K, V]) Valid() bool {
	it.check()
	return it.state == iterOnEntry
}

func (it *Iterator[K, V]) cur() *entry[K, V] {
	if it.state != iterOnEntry {
		panic("intervalmap: dereference of sentinel iterator")
	}
	if it.leaf < 0 {
		return &it.m.inline[it.slot]
	}
	return &it.m.alloc.leaf(it.leaf).entries[it.slot]
}

// Left returns the left endpoint of the current entry.
func (it *Iterator[K, V]) Left() K { it.check(); return it.cur().key.left }

// Right returns the right endpoint of the current entry.
func (it *Iterator[K, V]) Right() K { it.check(); return it.cur().key.right }

// Value returns the value of the current entry.
func (it *Iterator[K, V]) Value() V { it.check(); return it.cur().value }

// Equal reports whether two iterators over the same map sit at the same
// logical position. Sentinels compare by kind, so End of an empty map
// equals its Begin.
func (it *Iterator[K, V]) Equal(o *Iterator[K, V]) bool {
	if it.m != o.m || it.state != o.state {
		return false
	}
	if it.state != iterOnEntry {
		return true
	}
	return it.leaf == o.leaf && it.slot == o.slot
}

// Next advances to the following entry, or to the end sentinel after the
// last one. From the before-begin sentinel it moves to the first entry.
// Advancing the end sentinel panics.
func (it *Iterator[K, V]) Next() {
	it.check()
	m := it.m
	switch it.state {
	case iterAtEnd:
		panic("intervalmap: Next past the end")
	case iterBeforeBegin:
		it.seekFirst()
		return
	}
	if it.leaf < 0 {
		it.slot++
		if int(it.slot) >= int(m.inlineN) {
			it.state = iterAtEnd
		}
		return
	}
	leaf := m.alloc.leaf(it.leaf)
	it.slot++
	if it.slot < leaf.n {
		return
	}
	// Climb to the nearest ancestor with a next sibling, then take that
	// sibling's leftmost path down.
	for i := len(it.stack) - 1; i >= 0; i-- {
		f := &it.stack[i]
		b := m.alloc.branch(f.node)
		if f.slot+1 < b.n {
			f.slot++
			it.stack = it.stack[:i+1]
			it.descendLeftmost(b.children[f.slot].node, i+2)
			return
		}
	}
	it.state = iterAtEnd
}

// Prev moves to the preceding entry. From the end sentinel it moves to
// the last entry; from the first entry it moves to the before-begin
// sentinel. Stepping before the before-begin sentinel panics, as does
// Prev from End on an empty map.
func (it *Iterator[K, V]) Prev() {
	it.check()
	m := it.m
	switch it.state {
	case iterBeforeBegin:
		panic("intervalmap: Prev past the beginning")
	case iterAtEnd:
		if m.length == 0 {
			panic("intervalmap: Prev on empty map")
		}
		it.seekLast()
		return
	}
	if it.leaf < 0 {
		if it.slot == 0 {
			it.state = iterBeforeBegin
			return
		}
		it.slot--
		return
	}
	if it.slot > 0 {
		it.slot--
		return
	}
	for i := len(it.stack) - 1; i >= 0; i-- {
		f := &it.stack[i]
		if f.slot > 0 {
			f.slot--
			it.stack = it.stack[:i+1]
			b := m.alloc.branch(f.node)
			it.descendRightmost(b.children[f.slot].node, i+2)
			return
		}
	}
	it.state = iterBeforeBegin
}

func (it *Iterator[K, V]) seekFirst() {
	m := it.m
	it.stack = it.stack[:0]
	if m.height == 0 {
		it.leaf = -1
		it.slot = 0
		it.state = iterOnEntry
		return
	}
	it.descendLeftmost(m.root, 1)
}

func (it *Iterator[K, V]) seekLast() {
	m := it.m
	it.stack = it.stack[:0]
	if m.height == 0 {
		it.leaf = -1
		it.slot = m.inlineN - 1
		it.state = iterOnEntry
		return
	}
	it.descendRightmost(m.root, 1)
}

// descendLeftmost walks the leftmost path from the node at the given
// depth down to a leaf. The root sits at depth 1, leaves at depth
// m.height.
func (it *Iterator[K, V]) descendLeftmost(h arena.Handle, depth int) {
	m := it.m
	for d := depth; d < m.height; d++ {
		it.stack = append(it.stack, pathFrame{node: h, slot: 0})
		h = m.alloc.branch(h).children[0].node
	}
	it.leaf = h
	it.slot = 0
	it.state = iterOnEntry
}

func (it *Iterator[K, V]) descendRightmost(h arena.Handle, depth int) {
	m := it.m
	for d := depth; d < m.height; d++ {
		b := m.alloc.branch(h)
		it.stack = append(it.stack, pathFrame{node: h, slot: b.n - 1})
		h = b.children[b.n-1].node
	}
	leaf := m.alloc.leaf(h)
	it.leaf = h
	it.slot = leaf.n - 1
	it.state = iterOnEntry
}
