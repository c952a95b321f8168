package kmeans

import (
	"fmt"
	"math"

	"github.com/hupe1980/kmviz/model"
)

const (
	// DefaultMaxIterations caps the number of recorded iterations.
	DefaultMaxIterations = 100

	// DefaultTolerance is the per-coordinate tolerance of the convergence check.
	DefaultTolerance = 1e-9
)

// InitMethod selects how the initial centroids are chosen.
type InitMethod int

const (
	InitKMeansPlusPlus InitMethod = iota
	InitRandom
	InitManual
	InitFarthestFirst
)

// String returns the wire name of the method.
func (m InitMethod) String() string {
	switch m {
	case InitKMeansPlusPlus:
		return "kmeans++"
	case InitRandom:
		return "random"
	case InitManual:
		return "manual"
	case InitFarthestFirst:
		return "farthest_first"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParseInitMethod resolves a wire name. The empty string selects k-means++.
func ParseInitMethod(s string) (InitMethod, error) {
	switch s {
	case "", "kmeans++", "k-means++", "kmeanspp":
		return InitKMeansPlusPlus, nil
	case "random":
		return InitRandom, nil
	case "manual":
		return InitManual, nil
	case "farthest_first", "farthest-first":
		return InitFarthestFirst, nil
	default:
		return 0, configErrorf("init_method", "unknown method %q", s)
	}
}

// EmptyClusterPolicy decides where the centroid of an empty cluster goes.
type EmptyClusterPolicy int

const (
	// KeepInPlace leaves the centroid at its previous position.
	KeepInPlace EmptyClusterPolicy = iota
	// ReseedFarthest moves the centroid to the dataset point farthest from
	// its nearest surviving centroid.
	ReseedFarthest
)

func (p EmptyClusterPolicy) String() string {
	switch p {
	case KeepInPlace:
		return "keep"
	case ReseedFarthest:
		return "reseed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// RandomPolicy decides where random initialization samples from.
type RandomPolicy int

const (
	// SampleDataset draws k distinct dataset points without replacement.
	SampleDataset RandomPolicy = iota
	// SampleBounds draws k points uniformly inside the dataset bounding box.
	SampleBounds
)

func (p RandomPolicy) String() string {
	switch p {
	case SampleDataset:
		return "dataset"
	case SampleBounds:
		return "bounds"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Config holds the parameters of one run.
type Config struct {
	// K is the number of clusters.
	K int
	// Method is the initialization strategy.
	Method InitMethod
	// Seeds are the initial centroids for InitManual, one per cluster.
	Seeds []model.Point
	// MaxIterations caps the number of iterations. Zero selects
	// DefaultMaxIterations.
	MaxIterations int
	// Tolerance is the per-coordinate convergence tolerance. Zero demands
	// exact equality.
	Tolerance float64
	// EmptyPolicy applies to every empty cluster of the run.
	EmptyPolicy EmptyClusterPolicy
	// RandomPolicy applies to InitRandom.
	RandomPolicy RandomPolicy
}

func (c Config) maxIterations() int {
	if c.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

// MaxCoordinate bounds the magnitude of data and seed coordinates. Squared
// distances and inertia sums of larger values can overflow to +Inf.
const MaxCoordinate = 1e100

func inRange(p model.Point) bool {
	return math.Abs(p[0]) <= MaxCoordinate && math.Abs(p[1]) <= MaxCoordinate
}

// ValidateSize checks the dataset and the cluster count, the first checks
// Validate performs.
func ValidateSize(data []model.Point, k int) error {
	if len(data) == 0 {
		return ErrEmptyDataset
	}
	if k <= 0 {
		return configErrorf("num_clusters", "must be positive, got %d", k)
	}
	if k > len(data) {
		return configErrorf("num_clusters", "%d exceeds dataset size %d", k, len(data))
	}
	return nil
}

// Validate checks cfg against data. It reports ErrEmptyDataset before any
// configuration problem.
func Validate(data []model.Point, cfg Config) error {
	if err := ValidateSize(data, cfg.K); err != nil {
		return err
	}
	switch cfg.Method {
	case InitKMeansPlusPlus, InitRandom, InitFarthestFirst:
	case InitManual:
		if len(cfg.Seeds) != cfg.K {
			return configErrorf("manual_centroids", "got %d seeds, want %d", len(cfg.Seeds), cfg.K)
		}
		for i, s := range cfg.Seeds {
			if !s.IsFinite() {
				return configErrorf("manual_centroids", "seed %d is not finite", i)
			}
			if !inRange(s) {
				return configErrorf("manual_centroids", "seed %d exceeds magnitude %g", i, MaxCoordinate)
			}
		}
	default:
		return configErrorf("init_method", "unknown method %s", cfg.Method)
	}
	for i, p := range data {
		if !p.IsFinite() {
			return configErrorf("data", "point %d is not finite", i)
		}
		if !inRange(p) {
			return configErrorf("data", "point %d exceeds magnitude %g", i, MaxCoordinate)
		}
	}
	if cfg.MaxIterations < 0 {
		return configErrorf("max_iterations", "must not be negative, got %d", cfg.MaxIterations)
	}
	if math.IsNaN(cfg.Tolerance) || cfg.Tolerance < 0 {
		return configErrorf("tolerance", "must be a non-negative number, got %g", cfg.Tolerance)
	}
	if cfg.EmptyPolicy != KeepInPlace && cfg.EmptyPolicy != ReseedFarthest {
		return configErrorf("empty_cluster_policy", "unknown policy %s", cfg.EmptyPolicy)
	}
	if cfg.RandomPolicy != SampleDataset && cfg.RandomPolicy != SampleBounds {
		return configErrorf("random_policy", "unknown policy %s", cfg.RandomPolicy)
	}
	return nil
}
