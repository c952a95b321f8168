package kmviz

import (
	"log/slog"
	"math"

	"github.com/hupe1980/kmviz/codec"
	"github.com/hupe1980/kmviz/internal/kmeans"
	"github.com/hupe1980/kmviz/palette"
)

// Initialization method names accepted in Request.InitMethod.
const (
	InitKMeansPlusPlus = "kmeans++"
	InitRandom         = "random"
	InitManual         = "manual"
	InitFarthestFirst  = "farthest_first"
)

// EmptyClusterPolicy decides where the centroid of a cluster that lost all
// its points goes.
type EmptyClusterPolicy = kmeans.EmptyClusterPolicy

const (
	// KeepInPlace leaves the centroid where it was. This is the default.
	KeepInPlace = kmeans.KeepInPlace
	// ReseedFarthest moves the centroid to the point farthest from its
	// nearest surviving centroid.
	ReseedFarthest = kmeans.ReseedFarthest
)

// RandomPolicy decides where "random" initialization samples from.
type RandomPolicy = kmeans.RandomPolicy

const (
	// SampleDataset picks k distinct dataset points. This is the default.
	SampleDataset = kmeans.SampleDataset
	// SampleBounds picks k points uniformly inside the dataset bounding box.
	SampleBounds = kmeans.SampleBounds
)

const (
	// DefaultMaxIterations caps the number of Steps in a Run.
	DefaultMaxIterations = kmeans.DefaultMaxIterations
	// DefaultTolerance is the per-coordinate convergence tolerance.
	DefaultTolerance = kmeans.DefaultTolerance
)

type options struct {
	maxIterations     int
	tolerance         float64
	seed              *int64
	emptyPolicy       EmptyClusterPolicy
	randomPolicy      RandomPolicy
	palette           palette.Palette
	codec             codec.Codec
	cacheBytes        int64
	maxConcurrentRuns int
	metricsCollector  MetricsCollector
	logger            *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithMaxIterations caps the number of Steps per Run. A Run that reaches
// the cap is returned with Converged == false.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the per-coordinate tolerance used to decide that two
// centroid sets are equal. Zero requires exact equality.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithSeed fixes the random seed of every Run, making "random", "kmeans++"
// and "farthest_first" runs reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithEmptyClusterPolicy selects the empty cluster policy for every Run.
func WithEmptyClusterPolicy(p EmptyClusterPolicy) Option {
	return func(o *options) {
		o.emptyPolicy = p
	}
}

// WithRandomPolicy selects the sampling policy of "random" initialization.
func WithRandomPolicy(p RandomPolicy) Option {
	return func(o *options) {
		o.randomPolicy = p
	}
}

// WithPalette sets the cluster colors. If nil is passed, palette.Default is
// used.
func WithPalette(p palette.Palette) Option {
	return func(o *options) {
		if len(p) == 0 {
			p = palette.Default
		}
		o.palette = p
	}
}

// WithCodec configures the codec returned by Engine.Codec for transports.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCache enables memoization of deterministic Runs (manual mode, or any
// mode with WithSeed) in an LRU bounded to capacityBytes.
//
// Example:
//
//	engine, _ := kmviz.New(kmviz.WithSeed(1), kmviz.WithCache(64<<20))
func WithCache(capacityBytes int64) Option {
	return func(o *options) {
		o.cacheBytes = capacityBytes
	}
}

// WithMaxConcurrentRuns bounds the number of Runs executing at once across
// Run and RunBatch. Zero means unlimited.
func WithMaxConcurrentRuns(n int) Option {
	return func(o *options) {
		o.maxConcurrentRuns = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kmviz.BasicMetricsCollector{}
//	engine, _ := kmviz.New(kmviz.WithMetricsCollector(metrics))
//	// ... use engine ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.RunCount, stats.RunAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		emptyPolicy:   KeepInPlace,
		randomPolicy:  SampleDataset,
		palette:       palette.Default,
		codec:         codec.Default,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

func (o options) validate() error {
	if o.maxIterations < 0 {
		return configErrorf("max_iterations", "must not be negative, got %d", o.maxIterations)
	}
	if o.tolerance < 0 || math.IsNaN(o.tolerance) {
		return configErrorf("tolerance", "must be a non-negative number, got %g", o.tolerance)
	}
	if o.emptyPolicy != KeepInPlace && o.emptyPolicy != ReseedFarthest {
		return configErrorf("empty_cluster_policy", "unknown policy %s", o.emptyPolicy)
	}
	if o.randomPolicy != SampleDataset && o.randomPolicy != SampleBounds {
		return configErrorf("random_policy", "unknown policy %s", o.randomPolicy)
	}
	if o.cacheBytes < 0 {
		return configErrorf("cache_bytes", "must not be negative, got %d", o.cacheBytes)
	}
	if o.maxConcurrentRuns < 0 {
		return configErrorf("max_concurrent_runs", "must not be negative, got %d", o.maxConcurrentRuns)
	}
	return nil
}
