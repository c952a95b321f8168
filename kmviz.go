package kmviz

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/kmviz/codec"
	"github.com/hupe1980/kmviz/dataset"
	"github.com/hupe1980/kmviz/internal/cache"
	"github.com/hupe1980/kmviz/internal/hash"
	"github.com/hupe1980/kmviz/internal/kmeans"
	"github.com/hupe1980/kmviz/internal/resource"
	"github.com/hupe1980/kmviz/model"
	"github.com/hupe1980/kmviz/util"
)

// Engine computes K-Means Runs. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	opts  options
	rc    *resource.Controller
	cache *cache.RunCache // nil when caching is disabled
}

// New creates an Engine.
func New(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		opts: o,
		rc: resource.NewController(resource.Config{
			MaxConcurrentRuns: int64(o.maxConcurrentRuns),
			MemoryLimitBytes:  o.cacheBytes,
		}),
	}
	if o.cacheBytes > 0 {
		e.cache = cache.NewRunCache(o.cacheBytes, e.rc)
	}
	return e, nil
}

// Codec returns the codec configured with WithCodec.
func (e *Engine) Codec() codec.Codec {
	return e.opts.codec
}

// Run computes the Steps of Lloyd's algorithm for req.
//
// Invalid requests fail before any work with ErrEmptyDataset or a
// *ConfigError. Once started, a Run always completes; ctx only bounds the
// wait for a run slot (see WithMaxConcurrentRuns).
func (e *Engine) Run(ctx context.Context, req Request) (run *model.Run, err error) {
	start := time.Now()
	k := int(req.NumClusters)
	method := req.InitMethod
	defer func() {
		steps, converged := 0, false
		if run != nil {
			steps, converged = len(run.Steps), run.Converged
		}
		e.opts.metricsCollector.RecordRun(k, steps, converged, time.Since(start), err)
		e.opts.logger.LogRun(ctx, method, k, len(req.Data), steps, converged, err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := model.ClonePoints(req.Data)
	if err := kmeans.ValidateSize(data, k); err != nil {
		return nil, translateError(err)
	}
	cfg, err := e.config(ctx, req)
	if err != nil {
		return nil, err
	}
	method = cfg.Method.String()
	if err := kmeans.Validate(data, cfg); err != nil {
		return nil, translateError(err)
	}

	seed := e.seed()
	var key []byte
	if e.cache != nil && e.deterministic(cfg) {
		key = canonicalKey(data, cfg, seed)
		cached, ok := e.cache.Get(key)
		e.opts.metricsCollector.RecordCache(ok)
		e.opts.logger.LogCache(ctx, ok)
		if ok {
			cached.Seed = seed
			return cached, nil
		}
	}

	if err := e.rc.AcquireRun(ctx); err != nil {
		return nil, fmt.Errorf("acquire run slot: %w", err)
	}
	res, err := kmeans.Run(data, cfg, util.NewRNG(seed))
	e.rc.ReleaseRun()
	if err != nil {
		return nil, translateError(err)
	}

	run = &model.Run{
		Steps:      packageSteps(data, res, e.opts.palette.Colors(cfg.K)),
		Converged:  res.Converged,
		Iterations: res.Updates,
		InitMethod: method,
		Seed:       seed,
	}
	if key != nil {
		e.cache.Set(key, run)
	}
	return run, nil
}

// config translates req and the engine options into a core configuration.
func (e *Engine) config(ctx context.Context, req Request) (kmeans.Config, error) {
	method, err := kmeans.ParseInitMethod(req.InitMethod)
	if err != nil {
		return kmeans.Config{}, translateError(err)
	}
	cfg := kmeans.Config{
		K:             int(req.NumClusters),
		Method:        method,
		MaxIterations: e.opts.maxIterations,
		Tolerance:     e.opts.tolerance,
		EmptyPolicy:   e.opts.emptyPolicy,
		RandomPolicy:  e.opts.randomPolicy,
	}
	switch {
	case method == kmeans.InitManual:
		cfg.Seeds = model.ClonePoints(req.ManualCentroids)
	case len(req.ManualCentroids) > 0:
		e.opts.logger.WithK(cfg.K).WithInitMethod(method.String()).DebugContext(ctx,
			"ignoring manual centroids",
			"count", len(req.ManualCentroids),
		)
	}
	return cfg, nil
}

func (e *Engine) seed() int64 {
	if e.opts.seed != nil {
		return *e.opts.seed
	}
	return util.NewSeed()
}

// deterministic reports whether identical inputs yield identical Runs.
// Manual runs draw no random numbers.
func (e *Engine) deterministic(cfg kmeans.Config) bool {
	return cfg.Method == kmeans.InitManual || e.opts.seed != nil
}

const cacheKeyVersion = 1

// canonicalKey encodes everything that determines a Run for this engine.
// The seed is left out of manual runs.
func canonicalKey(data []model.Point, cfg kmeans.Config, seed int64) []byte {
	buf := make([]byte, 0, 40+16*(len(data)+len(cfg.Seeds)))
	buf = append(buf, cacheKeyVersion, byte(cfg.Method))
	buf = hash.AppendInt64(buf, int64(cfg.K))
	if cfg.Method != kmeans.InitManual {
		buf = hash.AppendInt64(buf, seed)
	}
	buf = hash.AppendInt64(buf, int64(len(data)))
	for _, p := range data {
		buf = hash.AppendFloat64(buf, p[0])
		buf = hash.AppendFloat64(buf, p[1])
	}
	buf = hash.AppendInt64(buf, int64(len(cfg.Seeds)))
	for _, p := range cfg.Seeds {
		buf = hash.AppendFloat64(buf, p[0])
		buf = hash.AppendFloat64(buf, p[1])
	}
	return buf
}

// BatchResult is the outcome of one request in RunBatch.
type BatchResult struct {
	Run *model.Run
	Err error
}

// RunBatch computes the Runs of independent requests in parallel. Results
// are returned in input order; a failing request does not affect the others.
func (e *Engine) RunBatch(ctx context.Context, reqs []Request) []BatchResult {
	start := time.Now()
	results := make([]BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i := range reqs {
		g.Go(func() error {
			run, err := e.Run(gctx, reqs[i])
			results[i] = BatchResult{Run: run, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.opts.metricsCollector.RecordBatch(len(reqs), failed, time.Since(start))
	e.opts.logger.LogBatch(ctx, len(reqs), failed)
	return results
}

func (e *Engine) workers() int {
	if e.opts.maxConcurrentRuns > 0 {
		return e.opts.maxConcurrentRuns
	}
	return runtime.GOMAXPROCS(0)
}

// Generate draws a dataset of count points from p. count == 0 yields an
// empty dataset; a negative count is an invalid configuration.
func (e *Engine) Generate(ctx context.Context, p dataset.Provider, count int) (points []model.Point, err error) {
	start := time.Now()
	defer func() {
		e.opts.metricsCollector.RecordGenerate(len(points), time.Since(start), err)
		e.opts.logger.LogGenerate(ctx, count, err)
	}()

	if p == nil {
		return nil, configErrorf("provider", "must not be nil")
	}
	if count < 0 {
		return nil, configErrorf("count", "must not be negative, got %d", count)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points, err = p.Generate(count)
	if err != nil {
		return nil, fmt.Errorf("generate %d points: %w", count, err)
	}
	for i, pt := range points {
		if !pt.IsFinite() {
			return nil, fmt.Errorf("generate: point %d is not finite", i)
		}
	}
	return points, nil
}
