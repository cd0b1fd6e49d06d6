package rangetable

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/labels"
)

// Range is a closed interval of int64 ids.
type Range struct {
	From int64
	To   int64
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// ParseRange parses a "from-to" string.
func ParseRange(s string) (Range, error) {
	h := strings.IndexByte(s, '-')
	if h == -1 {
		return Range{}, fmt.Errorf("no hyphen in range %q", s)
	}
	from, err := strconv.ParseInt(s[:h], 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid from id %q in range %q", s[:h], s)
	}
	to, err := strconv.ParseInt(s[h+1:], 10, 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid to id %q in range %q", s[h+1:], s)
	}
	return Range{From: from, To: to}, nil
}

type Entry interface {
	Range() Range
	Labels() labels.Set
	String() string
	Equal(e2 Entry) bool
}

type Entries []Entry

type entry struct {
	r      Range
	labels labels.Set
}

func NewEntry(r Range, labels labels.Set) Entry {
	return entry{
		r:      r,
		labels: labels,
	}
}

func (r entry) Range() Range       { return r.r }
func (r entry) Labels() labels.Set { return r.labels }
func (r entry) String() string {
	return fmt.Sprintf("range: %s, labels: %s", r.r.String(), r.labels.String())
}
func (r entry) Equal(e2 Entry) bool {
	return r.r == e2.Range() && r.labels.String() == e2.Labels().String()
}
