package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Membership is the set of dataset positions assigned to each cluster.
type Membership struct {
	sets []*roaring.Bitmap
}

// NewMembership creates an empty membership for k clusters.
func NewMembership(k int) *Membership {
	sets := make([]*roaring.Bitmap, k)
	for i := range sets {
		sets[i] = roaring.New()
	}
	return &Membership{sets: sets}
}

// FromAssignment builds a membership from a point->cluster assignment.
// Entries outside [0,k) are ignored.
func FromAssignment(assignment []int, k int) *Membership {
	m := NewMembership(k)
	for idx, c := range assignment {
		if c >= 0 && c < k {
			m.Add(c, idx)
		}
	}
	return m
}

// K returns the number of clusters.
func (m *Membership) K() int { return len(m.sets) }

// Add records dataset position idx as a member of cluster c.
func (m *Membership) Add(c, idx int) {
	m.sets[c].Add(uint32(idx))
}

// Cardinality returns the member count of cluster c.
func (m *Membership) Cardinality(c int) int {
	return int(m.sets[c].GetCardinality())
}

// Total returns the member count across all clusters.
func (m *Membership) Total() int {
	n := 0
	for _, s := range m.sets {
		n += int(s.GetCardinality())
	}
	return n
}

// Members returns the dataset positions of cluster c in ascending order.
func (m *Membership) Members(c int) []int {
	arr := m.sets[c].ToArray()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}

// Empty returns the indices of clusters without members, ascending.
func (m *Membership) Empty() []int {
	var out []int
	for c, s := range m.sets {
		if s.IsEmpty() {
			out = append(out, c)
		}
	}
	return out
}

// Moved counts members whose cluster differs from prev. A nil prev, or one
// with a different cluster count, treats every member as moved.
func (m *Membership) Moved(prev *Membership) int {
	total := m.Total()
	if prev == nil || prev.K() != m.K() {
		return total
	}
	stayed := 0
	for c, s := range m.sets {
		stayed += int(s.AndCardinality(prev.sets[c]))
	}
	return total - stayed
}
