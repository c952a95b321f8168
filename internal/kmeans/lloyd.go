package kmeans

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/kmviz/distance"
	"github.com/hupe1980/kmviz/internal/bitmap"
	"github.com/hupe1980/kmviz/model"
	"github.com/hupe1980/kmviz/util"
)

// State is a phase of the run state machine.
type State int

const (
	StateInitializing State = iota
	StateAssigning
	StateUpdating
	StateConverged
	// StateExhausted is terminal: the iteration cap was reached before
	// convergence.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "INITIALIZING"
	case StateAssigning:
		return "ASSIGNING"
	case StateUpdating:
		return "UPDATING"
	case StateConverged:
		return "CONVERGED"
	case StateExhausted:
		return "EXHAUSTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the run stops in s.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateExhausted
}

// Iteration is the record of one assignment phase.
type Iteration struct {
	// Centroids are the positions the points were assigned against.
	Centroids []model.Point
	// Assignment maps each dataset position to its cluster index.
	Assignment []int
	// Membership holds the same assignment grouped by cluster.
	Membership *bitmap.Membership
	// Inertia is the sum of squared distances to the assigned centroids.
	Inertia float64
	// Reassigned counts points whose cluster changed since the previous
	// iteration; all points on the first one.
	Reassigned int
}

// Result is the complete history of one run.
type Result struct {
	Iterations []Iteration
	// Converged is false when the run stopped at the iteration cap.
	Converged bool
	// Updates is the number of update phases executed.
	Updates int
	// Final holds the centroids produced by the last update phase.
	Final []model.Point
}

// Assign writes the nearest centroid of every point into assignment and
// returns the inertia. assignment must have len(data) entries.
func Assign(data, centroids []model.Point, assignment []int) float64 {
	dists := make([]float64, len(data))
	for i, p := range data {
		assignment[i], dists[i] = distance.Nearest(p, centroids)
	}
	return floats.Sum(dists)
}

// Update returns new centroids: the mean of each cluster's members. Empty
// clusters are handled by policy; prev supplies their previous positions.
func Update(data []model.Point, m *bitmap.Membership, prev []model.Point, policy EmptyClusterPolicy) []model.Point {
	k := m.K()
	next := make([]model.Point, k)
	var empty []int
	xs := make([]float64, 0, len(data))
	ys := make([]float64, 0, len(data))
	for c := 0; c < k; c++ {
		members := m.Members(c)
		if len(members) == 0 {
			next[c] = prev[c]
			empty = append(empty, c)
			continue
		}
		xs, ys = xs[:0], ys[:0]
		for _, idx := range members {
			xs = append(xs, data[idx][0])
			ys = append(ys, data[idx][1])
		}
		next[c] = model.Pt(stat.Mean(xs, nil), stat.Mean(ys, nil))
	}

	if policy == ReseedFarthest && len(empty) > 0 {
		reseedEmpty(data, next, empty)
	}
	return next
}

// reseedEmpty moves each empty cluster's centroid, in index order, to the
// dataset point farthest from its nearest surviving centroid. Reseeded
// centroids count as survivors for later empty clusters.
func reseedEmpty(data []model.Point, next []model.Point, empty []int) {
	isEmpty := make(map[int]bool, len(empty))
	for _, c := range empty {
		isEmpty[c] = true
	}
	survivors := make([]model.Point, 0, len(next))
	for c, p := range next {
		if !isEmpty[c] {
			survivors = append(survivors, p)
		}
	}
	for _, c := range empty {
		best := 0
		bestDist := -1.0
		for i, p := range data {
			if d := distance.NearestDistance(p, survivors); d > bestDist {
				best = i
				bestDist = d
			}
		}
		next[c] = data[best]
		survivors = append(survivors, data[best])
	}
}

// CentroidsEqual reports whether a and b match coordinate-wise within tol.
func CentroidsEqual(a, b []model.Point, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !scalar.EqualWithinAbs(a[i][0], b[i][0], tol) ||
			!scalar.EqualWithinAbs(a[i][1], b[i][1], tol) {
			return false
		}
	}
	return true
}

// machine drives one run through its states.
type machine struct {
	data      []model.Point
	cfg       Config
	rng       *util.RNG
	state     State
	centroids []model.Point
	prev      *bitmap.Membership
	result    Result
}

func (m *machine) step() {
	switch m.state {
	case StateInitializing:
		m.centroids = Initialize(m.data, m.cfg, m.rng)
		m.state = StateAssigning

	case StateAssigning:
		assignment := make([]int, len(m.data))
		inertia := Assign(m.data, m.centroids, assignment)
		membership := bitmap.FromAssignment(assignment, m.cfg.K)
		m.result.Iterations = append(m.result.Iterations, Iteration{
			Centroids:  m.centroids,
			Assignment: assignment,
			Membership: membership,
			Inertia:    inertia,
			Reassigned: membership.Moved(m.prev),
		})
		m.prev = membership
		m.state = StateUpdating

	case StateUpdating:
		next := Update(m.data, m.prev, m.centroids, m.cfg.EmptyPolicy)
		m.result.Updates++
		m.result.Final = next
		switch {
		case CentroidsEqual(m.centroids, next, m.cfg.Tolerance):
			m.result.Converged = true
			m.state = StateConverged
		case len(m.result.Iterations) >= m.cfg.maxIterations():
			m.state = StateExhausted
		default:
			m.centroids = next
			m.state = StateAssigning
		}
	}
}

// Run validates cfg and executes Lloyd's algorithm until convergence or the
// iteration cap. The returned Result always holds at least one Iteration.
func Run(data []model.Point, cfg Config, rng *util.RNG) (*Result, error) {
	if err := Validate(data, cfg); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = util.NewRNG(util.NewSeed())
	}
	m := &machine{
		data:  data,
		cfg:   cfg,
		rng:   rng,
		state: StateInitializing,
	}
	for !m.state.Terminal() {
		m.step()
	}
	return &m.result, nil
}
