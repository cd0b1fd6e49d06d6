package intervalmap

import (
	"fmt"

	"github.com/henderiw/intervalmap/pkg/arena"
)

// Verify checks the structural invariants of the whole tree: global entry
// order, exact child summaries, node occupancy bounds, and the cached
// length and bounds of the handle. Uniform leaf depth is implied by the
// level-counted walk. Verify is meant for tests and debugging; nothing on
// the insertion or iteration path depends on it.
func (m *Map[K, V]) Verify() error {
	c := &treeChecker[K, V]{m: m}

	var first interval[K]
	var maxRight K
	var err error
	switch {
	case m.height == 0:
		if int(m.inlineN) != m.length {
			return fmt.Errorf("inline map length %d does not match %d entries", m.length, m.inlineN)
		}
		if m.length == 0 {
			return nil
		}
		for i := 0; i < int(m.inlineN); i++ {
			if err := c.entry(m.inline[i].key); err != nil {
				return err
			}
		}
		first = m.inline[0].key
		maxRight = m.inline[0].key.right
		for i := 1; i < int(m.inlineN); i++ {
			if m.cmp(m.inline[i].key.right, maxRight) > 0 {
				maxRight = m.inline[i].key.right
			}
		}
	case m.height == 1:
		first, maxRight, err = c.checkLeaf(m.root, true)
	default:
		first, maxRight, err = c.checkBranch(m.root, m.height-1, true)
	}
	if err != nil {
		return err
	}
	if c.seen != m.length {
		return fmt.Errorf("map length %d does not match %d entries in the tree", m.length, c.seen)
	}
	if m.cmp(first.left, m.bounds.left) != 0 || m.cmp(maxRight, m.bounds.right) != 0 {
		return fmt.Errorf("cached bounds (%v, %v) differ from tree bounds (%v, %v)",
			m.bounds.left, m.bounds.right, first.left, maxRight)
	}
	return nil
}

// treeChecker carries the in-order walk state so that entry order is
// checked across node boundaries, not just within one node.
type treeChecker[K, V any] struct {
	m    *Map[K, V]
	prev interval[K]
	seen int
}

func (c *treeChecker[K, V]) entry(key interval[K]) error {
	if c.seen > 0 && compareIntervals(c.m.cmp, key, c.prev) < 0 {
		return fmt.Errorf("entries out of order: (%v, %v) after (%v, %v)",
			key.left, key.right, c.prev.left, c.prev.right)
	}
	c.prev = key
	c.seen++
	return nil
}

func (c *treeChecker[K, V]) checkLeaf(h arena.Handle, isRoot bool) (first interval[K], maxRight K, err error) {
	leaf := c.m.alloc.leaf(h)
	minOcc := leafCapacity / 2
	if isRoot {
		minOcc = 1
	}
	if int(leaf.n) < minOcc || int(leaf.n) > leafCapacity {
		return first, maxRight, fmt.Errorf("leaf %d holds %d entries, want %d..%d", h, leaf.n, minOcc, leafCapacity)
	}
	for i := 0; i < int(leaf.n); i++ {
		if err := c.entry(leaf.entries[i].key); err != nil {
			return first, maxRight, err
		}
	}
	first, maxRight = leaf.summary(c.m.cmp)
	return first, maxRight, nil
}

func (c *treeChecker[K, V]) checkBranch(h arena.Handle, level int, isRoot bool) (first interval[K], maxRight K, err error) {
	b := c.m.alloc.branch(h)
	minOcc := branchCapacity / 2
	if isRoot {
		minOcc = 2
	}
	if int(b.n) < minOcc || int(b.n) > branchCapacity {
		return first, maxRight, fmt.Errorf("branch %d holds %d children, want %d..%d", h, b.n, minOcc, branchCapacity)
	}
	for i := 0; i < int(b.n); i++ {
		ref := b.children[i]
		if i > 0 && compareIntervals(c.m.cmp, ref.first, b.children[i-1].first) < 0 {
			return first, maxRight, fmt.Errorf("children of branch %d out of order at slot %d", h, i)
		}
		var cf interval[K]
		var cm K
		var cerr error
		if level == 1 {
			cf, cm, cerr = c.checkLeaf(ref.node, false)
		} else {
			cf, cm, cerr = c.checkBranch(ref.node, level-1, false)
		}
		if cerr != nil {
			return first, maxRight, cerr
		}
		if compareIntervals(c.m.cmp, cf, ref.first) != 0 || c.m.cmp(cm, ref.maxRight) != 0 {
			return first, maxRight, fmt.Errorf("stale summary for child %d of branch %d", i, h)
		}
	}
	first, maxRight = b.summary(c.m.cmp)
	return first, maxRight, nil
}
