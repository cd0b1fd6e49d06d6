package main

import (
	"fmt"

	"github.com/henderiw/intervalmap/pkg/arena"
	"github.com/henderiw/intervalmap/pkg/intervalmap"
	"github.com/henderiw/intervalmap/pkg/rangetable"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
)

var values = []struct {
	from   int64
	to     int64
	labels map[string]string
}{
	{from: 100, to: 199, labels: map[string]string{"pool": "a"}},
	{from: 150, to: 250, labels: map[string]string{"pool": "a"}},
	{from: 200, to: 299, labels: map[string]string{"pool": "b"}},
	{from: 3000, to: 3999, labels: map[string]string{"pool": "b"}},
	{from: 120, to: 130, labels: map[string]string{"pool": "c"}},
}

func main() {
	a := arena.New()
	alloc := intervalmap.NewAllocator[int64, string](a)
	m := intervalmap.NewOrdered[int64, string]()

	for _, v := range values {
		m.Insert(v.from, v.to, v.labels["pool"], alloc)
	}

	for it := m.Begin(); it.Valid(); it.Next() {
		fmt.Println("entry", it.Left(), it.Right(), it.Value())
	}
	lo, hi := m.Bounds()
	fmt.Println("bounds", lo, hi)

	m.VisitOverlapping(200, 500, func(left, right int64, pool string) bool {
		fmt.Println("overlap", left, right, pool)
		return true
	})

	rt, err := rangetable.New(4095)
	if err != nil {
		panic(err)
	}
	for _, v := range values {
		if err := rt.Claim(v.from, v.to, v.labels); err != nil {
			panic(err)
		}
	}

	req, err := labels.NewRequirement("pool", selection.Equals, []string{"a"})
	if err != nil {
		panic(err)
	}
	for _, e := range rt.GetByLabel(labels.NewSelector().Add(*req)) {
		fmt.Println("selected", e.String())
	}
}
