// Package intervalmap provides a compact ordered container associating
// values with possibly-overlapping intervals over a numeric or otherwise
// comparable key type.
//
// Entries are kept sorted by (left, right) and can be iterated in both
// directions. Equal intervals are never merged or deduplicated: inserting
// two entries with the same interval keeps both, and forward iteration
// returns them in insertion order.
//
// The tree is a B+-style structure: leaves hold the entries, branches
// hold child references with cached subtree summaries. Nodes are
// allocated from a caller-owned bump arena through an Allocator and are
// never freed individually; memory comes back only when the whole arena
// is reset, at which point every map built on it is dead.
//
// A map is not internally synchronized. It assumes a single writer, and
// readers must not run concurrently with a writer on the same map.
package intervalmap

import (
	"sort"

	"github.com/henderiw/intervalmap/pkg/arena"
)

// CompareFunc orders keys: negative if a sorts before b, zero if they are
// equal, positive otherwise.
type CompareFunc[K any] func(a, b K) int

// Ordered is the set of key types usable with NewOrdered.
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

// Allocator binds an arena to the node blocks of one key/value
// instantiation. Multiple maps may share one Allocator; every Insert into
// a given map must pass that map's original Allocator.
type Allocator[K, V any] struct {
	leaves   *arena.Slab[leafNode[K, V]]
	branches *arena.Slab[branchNode[K]]
}

// NewAllocator creates an allocator drawing node blocks from a.
func NewAllocator[K, V any](a *arena.Arena) *Allocator[K, V] {
	return &Allocator[K, V]{
		leaves:   arena.NewSlab[leafNode[K, V]](a),
		branches: arena.NewSlab[branchNode[K]](a),
	}
}

func (a *Allocator[K, V]) allocLeaf() (arena.Handle, *leafNode[K, V]) {
	return a.leaves.Alloc()
}

func (a *Allocator[K, V]) allocBranch() (arena.Handle, *branchNode[K]) {
	return a.branches.Alloc()
}

func (a *Allocator[K, V]) leaf(h arena.Handle) *leafNode[K, V] { return a.leaves.At(h) }
func (a *Allocator[K, V]) branch(h arena.Handle) *branchNode[K] { return a.branches.At(h) }

// Map associates values with intervals over K, iterated in ascending
// (left, right) order. The interval pair is treated opaquely: nothing
// enforces left <= right, that is caller discipline.
//
// The handle stores the first few entries inline and allocates nothing
// until that overflows, so small maps never touch the arena.
type Map[K, V any] struct {
	cmp CompareFunc[K]

	// Root-is-leaf representation, used while height == 0.
	inline  [rootLeafCapacity]entry[K, V]
	inlineN int8

	// height 0: entries are inline. height 1: root is a leaf node.
	// height h > 1: root is a branch with the leaves at depth h.
	root   arena.Handle
	height int

	alloc  *Allocator[K, V]
	length int
	bounds interval[K]
	gen    uint32
}

// New creates an empty map ordering keys with cmp.
func New[K, V any](cmp CompareFunc[K]) *Map[K, V] {
	if cmp == nil {
		panic("intervalmap: nil compare func")
	}
	return &Map[K, V]{cmp: cmp}
}

// NewOrdered creates an empty map for key types ordered by '<'.
func NewOrdered[K Ordered, V any]() *Map[K, V] {
	return New[K, V](func(a, b K) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
}

// Empty reports whether the map holds no entries.
func (m *Map[K, V]) Empty() bool { return m.length == 0 }

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.length }

// Bounds returns the minimum left endpoint and the maximum right endpoint
// across all entries, maintained incrementally on every insert. It panics
// on an empty map; callers check Empty first.
func (m *Map[K, V]) Bounds() (K, K) {
	if m.length == 0 {
		panic("intervalmap: Bounds on empty map")
	}
	return m.bounds.left, m.bounds.right
}

// Insert adds one entry for [left, right]. Degenerate and overlapping
// intervals are accepted; duplicates are kept as distinct entries.
//
// Every outstanding iterator over the map is invalidated: a split may
// relocate entries between nodes, and even a plain insert shifts entries
// within a leaf. Using a stale iterator afterwards panics.
func (m *Map[K, V]) Insert(left, right K, value V, alloc *Allocator[K, V]) {
	if alloc == nil {
		panic("intervalmap: nil allocator")
	}
	if m.alloc != nil && m.alloc != alloc {
		panic("intervalmap: map fed two different allocators")
	}

	key := interval[K]{left: left, right: right}
	if m.length == 0 {
		m.bounds = key
	} else {
		if m.cmp(key.left, m.bounds.left) < 0 {
			m.bounds.left = key.left
		}
		if m.cmp(key.right, m.bounds.right) > 0 {
			m.bounds.right = key.right
		}
	}
	m.length++
	m.gen++

	if m.height == 0 {
		if int(m.inlineN) < rootLeafCapacity {
			slot := sort.Search(int(m.inlineN), func(i int) bool {
				return compareIntervals(m.cmp, key, m.inline[i].key) < 0
			})
			copy(m.inline[slot+1:int(m.inlineN)+1], m.inline[slot:int(m.inlineN)])
			m.inline[slot] = entry[K, V]{key: key, value: value}
			m.inlineN++
			return
		}
		// First overflow: move the inline entries into an allocated root
		// leaf and fall through to the normal path.
		m.alloc = alloc
		h, leaf := alloc.allocLeaf()
		copy(leaf.entries[:], m.inline[:m.inlineN])
		leaf.n = m.inlineN
		m.inline = [rootLeafCapacity]entry[K, V]{}
		m.inlineN = 0
		m.root = h
		m.height = 1
	}
	m.alloc = alloc

	if m.height == 1 {
		leaf := alloc.leaf(m.root)
		if int(leaf.n) < leafCapacity {
			leaf.insertAt(leaf.findSlot(m.cmp, key), entry[K, V]{key: key, value: value})
			return
		}
		// Root leaf overflow: split it and grow a branch root above.
		nh, next := alloc.allocLeaf()
		leaf.splitInto(next)
		bh, b := alloc.allocBranch()
		first, maxRight := leaf.summary(m.cmp)
		b.children[0] = childRef[K]{node: m.root, first: first, maxRight: maxRight}
		first, maxRight = next.summary(m.cmp)
		b.children[1] = childRef[K]{node: nh, first: first, maxRight: maxRight}
		b.n = 2
		m.root = bh
		m.height = 2
	}

	root := alloc.branch(m.root)
	if int(root.n) == branchCapacity {
		// Root branch overflow: split and grow the tree by one level.
		nh, next := alloc.allocBranch()
		root.splitInto(next)
		rh, newRoot := alloc.allocBranch()
		first, maxRight := root.summary(m.cmp)
		newRoot.children[0] = childRef[K]{node: m.root, first: first, maxRight: maxRight}
		first, maxRight = next.summary(m.cmp)
		newRoot.children[1] = childRef[K]{node: nh, first: first, maxRight: maxRight}
		newRoot.n = 2
		m.root = rh
		m.height++
		root = newRoot
	}
	m.insertInto(root, m.height-1, key, value, alloc)
}

// insertInto places the entry somewhere below b, which is guaranteed not
// to be full. level is the number of edges from b down to the leaves;
// level 1 means b's children are leaves. Full children are split on the
// way down, so no node is ever left overfull, and the chosen child's
// summary is refreshed on the way back out.
func (m *Map[K, V]) insertInto(b *branchNode[K], level int, key interval[K], value V, alloc *Allocator[K, V]) {
	ci := b.findChild(m.cmp, key)

	if level == 1 {
		leaf := alloc.leaf(b.children[ci].node)
		if int(leaf.n) == leafCapacity {
			nh, next := alloc.allocLeaf()
			leaf.splitInto(next)
			first, maxRight := leaf.summary(m.cmp)
			b.children[ci].first = first
			b.children[ci].maxRight = maxRight
			first, maxRight = next.summary(m.cmp)
			b.insertChildAt(ci+1, childRef[K]{node: nh, first: first, maxRight: maxRight})
			if compareIntervals(m.cmp, key, b.children[ci+1].first) >= 0 {
				ci++
				leaf = next
			}
		}
		leaf.insertAt(leaf.findSlot(m.cmp, key), entry[K, V]{key: key, value: value})
		first, maxRight := leaf.summary(m.cmp)
		b.children[ci].first = first
		b.children[ci].maxRight = maxRight
		return
	}

	child := alloc.branch(b.children[ci].node)
	if int(child.n) == branchCapacity {
		nh, next := alloc.allocBranch()
		child.splitInto(next)
		first, maxRight := child.summary(m.cmp)
		b.children[ci].first = first
		b.children[ci].maxRight = maxRight
		first, maxRight = next.summary(m.cmp)
		b.insertChildAt(ci+1, childRef[K]{node: nh, first: first, maxRight: maxRight})
		if compareIntervals(m.cmp, key, b.children[ci+1].first) >= 0 {
			ci++
			child = next
		}
	}
	m.insertInto(child, level-1, key, value, alloc)
	first, maxRight := child.summary(m.cmp)
	b.children[ci].first = first
	b.children[ci].maxRight = maxRight
}

// VisitOverlapping calls visit for every entry whose closed interval
// [entry.left, entry.right] intersects [left, right], in ascending entry
// order, until visit returns false. Subtrees whose cached summaries rule
// out an intersection are skipped.
func (m *Map[K, V]) VisitOverlapping(left, right K, visit func(left, right K, value V) bool) {
	if m.length == 0 {
		return
	}
	q := interval[K]{left: left, right: right}
	if m.height == 0 {
		for i := 0; i < int(m.inlineN); i++ {
			e := &m.inline[i]
			if m.cmp(e.key.left, q.right) > 0 {
				return
			}
			if m.cmp(q.left, e.key.right) <= 0 && !visit(e.key.left, e.key.right, e.value) {
				return
			}
		}
		return
	}
	m.visitNode(m.root, m.height, q, visit)
}

// visitNode walks the subtree rooted at h, which spans level node levels;
// h itself is a leaf when level is 1. It reports false when the walk
// should stop, either because an entry's left endpoint already exceeds
// the query or because visit asked to stop.
func (m *Map[K, V]) visitNode(h arena.Handle, level int, q interval[K], visit func(K, K, V) bool) bool {
	if level == 1 {
		leaf := m.alloc.leaf(h)
		for i := 0; i < int(leaf.n); i++ {
			e := &leaf.entries[i]
			if m.cmp(e.key.left, q.right) > 0 {
				return false
			}
			if m.cmp(q.left, e.key.right) <= 0 && !visit(e.key.left, e.key.right, e.value) {
				return false
			}
		}
		return true
	}
	b := m.alloc.branch(h)
	for i := 0; i < int(b.n); i++ {
		c := &b.children[i]
		if m.cmp(c.first.left, q.right) > 0 {
			// Every later subtree starts even further right.
			return false
		}
		if m.cmp(q.left, c.maxRight) > 0 {
			continue
		}
		if !m.visitNode(c.node, level-1, q, visit) {
			return false
		}
	}
	return true
}
