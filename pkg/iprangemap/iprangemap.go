// Package iprangemap associates values with arbitrary IP ranges, not
// just CIDR prefixes, ordered by (from, to) and queryable by address or
// range overlap.
package iprangemap

import (
	"fmt"
	"net/netip"

	"github.com/henderiw/intervalmap/pkg/arena"
	"github.com/henderiw/intervalmap/pkg/intervalmap"
	"go4.org/netipx"
)

type Map[V any] struct {
	arena *arena.Arena
	alloc *intervalmap.Allocator[netip.Addr, V]
	table *intervalmap.Map[netip.Addr, V]
}

func New[V any]() *Map[V] {
	a := arena.New()
	return &Map[V]{
		arena: a,
		alloc: intervalmap.NewAllocator[netip.Addr, V](a),
		table: intervalmap.New[netip.Addr, V](netip.Addr.Compare),
	}
}

// Insert adds one entry for the given range. Overlapping and duplicate
// ranges are kept as distinct entries.
func (r *Map[V]) Insert(ipRange netipx.IPRange, v V) error {
	if !ipRange.IsValid() {
		return fmt.Errorf("invalid ip range %s", ipRange)
	}
	r.table.Insert(ipRange.From(), ipRange.To(), v, r.alloc)
	return nil
}

// Lookup returns the values of all ranges containing addr, in range
// order.
func (r *Map[V]) Lookup(addr netip.Addr) []V {
	return r.LookupRange(netipx.IPRangeFrom(addr, addr))
}

// LookupRange returns the values of all ranges overlapping ipRange, in
// range order.
func (r *Map[V]) LookupRange(ipRange netipx.IPRange) []V {
	var out []V
	if !ipRange.IsValid() {
		return out
	}
	r.table.VisitOverlapping(ipRange.From(), ipRange.To(), func(_, _ netip.Addr, v V) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (r *Map[V]) Count() int { return r.table.Len() }

// Bounds returns the range covering the lowest From to the highest To,
// or false for an empty map.
func (r *Map[V]) Bounds() (netipx.IPRange, bool) {
	if r.table.Empty() {
		return netipx.IPRange{}, false
	}
	from, to := r.table.Bounds()
	return netipx.IPRangeFrom(from, to), true
}

func (r *Map[V]) Iterate() *Iterator[V] {
	return &Iterator[V]{iter: r.table.Begin()}
}

// Iterator walks the map in ascending range order.
type Iterator[V any] struct {
	iter    *intervalmap.Iterator[netip.Addr, V]
	started bool
}

func (i *Iterator[V]) Next() bool {
	if !i.started {
		i.started = true
	} else if i.iter.Valid() {
		i.iter.Next()
	}
	return i.iter.Valid()
}

func (i *Iterator[V]) Range() netipx.IPRange {
	return netipx.IPRangeFrom(i.iter.Left(), i.iter.Right())
}

func (i *Iterator[V]) Value() V {
	return i.iter.Value()
}
