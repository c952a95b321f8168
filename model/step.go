package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Cluster is the membership of one cluster index within a Step.
type Cluster struct {
	// Points are the member coordinates in dataset order.
	Points []Point `json:"points"`
	// Indices are the dataset positions of Points.
	Indices []int `json:"indices,omitempty"`
	// Color is the presentation token for this cluster index.
	Color string `json:"color"`
}

// Len returns the number of member points.
func (c Cluster) Len() int { return len(c.Points) }

// Clusters holds the clusters of a Step ordered by cluster index.
//
// On the wire it is an object keyed by the decimal cluster index
// ({"0": {...}, "1": {...}}).
type Clusters []Cluster

// MarshalJSON encodes the clusters as an object keyed by index.
func (cs Clusters) MarshalJSON() ([]byte, error) {
	if cs == nil {
		return []byte("{}"), nil
	}
	buf := make([]byte, 0, 64*len(cs))
	buf = append(buf, '{')
	for i, c := range cs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '"')
		buf = strconv.AppendInt(buf, int64(i), 10)
		buf = append(buf, '"', ':')
		b, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// UnmarshalJSON decodes an object keyed by index. Keys must cover 0..n-1.
func (cs *Clusters) UnmarshalJSON(data []byte) error {
	var raw map[string]Cluster
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys := make([]int, 0, len(raw))
	byIndex := make(map[int]Cluster, len(raw))
	for k, c := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("cluster key %q: %w", k, err)
		}
		keys = append(keys, idx)
		byIndex[idx] = c
	}
	sort.Ints(keys)
	out := make(Clusters, len(keys))
	for i, k := range keys {
		if k != i {
			return fmt.Errorf("cluster keys are not contiguous: missing index %d", i)
		}
		out[i] = byIndex[k]
	}
	*cs = out
	return nil
}

// Step is one snapshot of the iteration history.
type Step struct {
	// Centroids are the positions used for this step's assignment, ordered by
	// cluster index.
	Centroids []Point `json:"centroids"`
	// Clusters are the assignment results, ordered by cluster index.
	Clusters Clusters `json:"clusters"`
	// Inertia is the sum of squared distances between each point and its
	// assigned centroid.
	Inertia float64 `json:"inertia"`
	// Reassigned counts points whose cluster differs from the previous step.
	// On the first step every point counts as reassigned.
	Reassigned int `json:"reassigned"`
}

// K returns the number of clusters in the step.
func (s Step) K() int { return len(s.Centroids) }

// Size returns the number of points assigned across all clusters.
func (s Step) Size() int {
	n := 0
	for _, c := range s.Clusters {
		n += c.Len()
	}
	return n
}

// Clone returns a deep copy of s.
func (s Step) Clone() Step {
	out := Step{
		Centroids:  ClonePoints(s.Centroids),
		Inertia:    s.Inertia,
		Reassigned: s.Reassigned,
	}
	if s.Clusters != nil {
		out.Clusters = make(Clusters, len(s.Clusters))
		for i, c := range s.Clusters {
			out.Clusters[i] = Cluster{
				Points: ClonePoints(c.Points),
				Color:  c.Color,
			}
			if c.Indices != nil {
				out.Clusters[i].Indices = append([]int(nil), c.Indices...)
			}
		}
	}
	return out
}

// Run is the ordered sequence of Steps produced by one invocation.
type Run struct {
	Steps []Step `json:"steps"`
	// Converged is false when the iteration cap stopped the run.
	Converged bool `json:"converged"`
	// Iterations is the number of update phases executed.
	Iterations int `json:"iterations"`
	// InitMethod is the initialization strategy that produced Steps[0].
	InitMethod string `json:"init_method"`
	// Seed is the random seed used by the run.
	Seed int64 `json:"seed"`
}

// Final returns the last step of the run. ok is false for an empty run.
func (r *Run) Final() (Step, bool) {
	if r == nil || len(r.Steps) == 0 {
		return Step{}, false
	}
	return r.Steps[len(r.Steps)-1], true
}

// Clone returns a deep copy of r.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	out := *r
	out.Steps = make([]Step, len(r.Steps))
	for i, s := range r.Steps {
		out.Steps[i] = s.Clone()
	}
	return &out
}
