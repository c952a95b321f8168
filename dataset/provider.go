package dataset

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/hupe1980/kmviz/model"
	"github.com/hupe1980/kmviz/util"
)

// ErrNegativeCount is returned when a negative point count is requested.
var ErrNegativeCount = errors.New("dataset: negative count")

// Provider generates point sets.
type Provider interface {
	// Generate returns count points. count == 0 yields an empty set.
	Generate(count int) ([]model.Point, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(count int) ([]model.Point, error)

// Generate implements Provider.
func (f ProviderFunc) Generate(count int) ([]model.Point, error) {
	return f(count)
}

func checkCount(count int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}
	return nil
}

// StandardNormal draws both coordinates from a standard normal distribution.
type StandardNormal struct {
	rng *util.RNG
}

// NewStandardNormal creates a StandardNormal provider seeded with seed.
func NewStandardNormal(seed int64) *StandardNormal {
	return &StandardNormal{rng: util.NewRNG(seed)}
}

// Generate implements Provider.
func (s *StandardNormal) Generate(count int) ([]model.Point, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	points := make([]model.Point, count)
	for i := range points {
		points[i] = model.Pt(s.rng.NormFloat64(), s.rng.NormFloat64())
	}
	return points, nil
}

// Uniform draws points uniformly inside a bound.
type Uniform struct {
	bound orb.Bound
	rng   *util.RNG
}

// NewUniform creates a Uniform provider over bound seeded with seed.
func NewUniform(bound orb.Bound, seed int64) *Uniform {
	return &Uniform{bound: bound, rng: util.NewRNG(seed)}
}

// Generate implements Provider.
func (u *Uniform) Generate(count int) ([]model.Point, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	points := make([]model.Point, count)
	for i := range points {
		points[i] = model.Pt(
			u.rng.Uniform(u.bound.Min[0], u.bound.Max[0]),
			u.rng.Uniform(u.bound.Min[1], u.bound.Max[1]),
		)
	}
	return points, nil
}

// Blobs draws points from isotropic Gaussian blobs. Points are distributed
// round-robin over the centers, so blob sizes differ by at most one.
type Blobs struct {
	centers []model.Point
	stddev  float64
	rng     *util.RNG
}

// NewBlobs creates a Blobs provider.
func NewBlobs(centers []model.Point, stddev float64, seed int64) (*Blobs, error) {
	if len(centers) == 0 {
		return nil, errors.New("dataset: blobs need at least one center")
	}
	if stddev < 0 {
		return nil, fmt.Errorf("dataset: negative stddev %g", stddev)
	}
	return &Blobs{
		centers: model.ClonePoints(centers),
		stddev:  stddev,
		rng:     util.NewRNG(seed),
	}, nil
}

// Generate implements Provider.
func (b *Blobs) Generate(count int) ([]model.Point, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	points := make([]model.Point, count)
	for i := range points {
		c := b.centers[i%len(b.centers)]
		points[i] = model.Pt(
			c[0]+b.rng.NormFloat64()*b.stddev,
			c[1]+b.rng.NormFloat64()*b.stddev,
		)
	}
	return points, nil
}

// Static returns a provider that serves prefixes of a fixed point set.
// Requests beyond its size return the whole set.
func Static(points []model.Point) Provider {
	fixed := model.ClonePoints(points)
	return ProviderFunc(func(count int) ([]model.Point, error) {
		if err := checkCount(count); err != nil {
			return nil, err
		}
		if count > len(fixed) {
			count = len(fixed)
		}
		return model.ClonePoints(fixed[:count]), nil
	})
}
