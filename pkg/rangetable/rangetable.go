// Package rangetable provides a bounded table of possibly-overlapping
// id ranges carrying label sets, with selector based queries. Ranges are
// kept in ascending (from, to) order.
package rangetable

import (
	"fmt"
	"sync"

	"github.com/henderiw/intervalmap/pkg/arena"
	"github.com/henderiw/intervalmap/pkg/intervalmap"
	"k8s.io/apimachinery/pkg/labels"
)

type RangeTable interface {
	Claim(from, to int64, d labels.Set) error
	ClaimRange(s string, d labels.Set) error
	Get(from, to int64) (Entries, error)
	GetByLabel(selector labels.Selector) Entries
	GetOverlaps(from, to int64) Entries
	GetAll() Entries

	Count() int
	Bounds() (Range, error)

	Iterate() *Iterator
}

// New creates a table accepting ranges within [0, max].
func New(max int64) (RangeTable, error) {
	if max < 0 {
		return nil, fmt.Errorf("max id must be positive, got %d", max)
	}
	a := arena.New()
	return &rangeTable{
		m:     new(sync.RWMutex),
		arena: a,
		alloc: intervalmap.NewAllocator[int64, labels.Set](a),
		table: intervalmap.NewOrdered[int64, labels.Set](),
		max:   max,
	}, nil
}

type rangeTable struct {
	m     *sync.RWMutex
	arena *arena.Arena
	alloc *intervalmap.Allocator[int64, labels.Set]
	table *intervalmap.Map[int64, labels.Set]
	max   int64
}

func (r *rangeTable) validate(from, to int64) error {
	if from < 0 || from > to {
		return fmt.Errorf("invalid range %d-%d", from, to)
	}
	if to > r.max {
		return fmt.Errorf("max id allowed is %d, got %d", r.max, to)
	}
	return nil
}

func (r *rangeTable) Claim(from, to int64, d labels.Set) error {
	if err := r.validate(from, to); err != nil {
		return err
	}
	r.m.Lock()
	defer r.m.Unlock()
	r.table.Insert(from, to, d, r.alloc)
	return nil
}

func (r *rangeTable) ClaimRange(s string, d labels.Set) error {
	rng, err := ParseRange(s)
	if err != nil {
		return err
	}
	return r.Claim(rng.From, rng.To, d)
}

func (r *rangeTable) Get(from, to int64) (Entries, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := Entries{}
	want := Range{From: from, To: to}
	iter := r.iterate()
	for iter.Next() {
		if iter.Entry().Range() == want {
			entries = append(entries, iter.Entry())
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no entry for range %s", want)
	}
	return entries, nil
}

func (r *rangeTable) GetByLabel(selector labels.Selector) Entries {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := Entries{}
	iter := r.iterate()
	for iter.Next() {
		if selector.Matches(iter.Entry().Labels()) {
			entries = append(entries, iter.Entry())
		}
	}
	return entries
}

// GetOverlaps returns all entries whose range intersects [from, to].
func (r *rangeTable) GetOverlaps(from, to int64) Entries {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := Entries{}
	r.table.VisitOverlapping(from, to, func(left, right int64, d labels.Set) bool {
		entries = append(entries, NewEntry(Range{From: left, To: right}, d))
		return true
	})
	return entries
}

func (r *rangeTable) GetAll() Entries {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := Entries{}
	iter := r.iterate()
	for iter.Next() {
		entries = append(entries, iter.Entry())
	}
	return entries
}

func (r *rangeTable) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.table.Len()
}

// Bounds returns the covering range from the lowest From to the highest
// To in the table.
func (r *rangeTable) Bounds() (Range, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	if r.table.Empty() {
		return Range{}, fmt.Errorf("empty table has no bounds")
	}
	from, to := r.table.Bounds()
	return Range{From: from, To: to}, nil
}

func (r *rangeTable) Iterate() *Iterator {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.iterate()
}

func (r *rangeTable) iterate() *Iterator {
	return &Iterator{iter: r.table.Begin()}
}

// Iterator walks the table in ascending range order.
type Iterator struct {
	iter    *intervalmap.Iterator[int64, labels.Set]
	started bool
}

func (i *Iterator) Next() bool {
	if !i.started {
		i.started = true
	} else if i.iter.Valid() {
		i.iter.Next()
	}
	return i.iter.Valid()
}

func (i *Iterator) Entry() Entry {
	return NewEntry(Range{From: i.iter.Left(), To: i.iter.Right()}, i.iter.Value())
}
