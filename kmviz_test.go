package kmviz_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmviz"
	"github.com/hupe1980/kmviz/dataset"
	"github.com/hupe1980/kmviz/model"
	"github.com/hupe1980/kmviz/palette"
	"github.com/hupe1980/kmviz/testutil"
)

func newEngine(t *testing.T, opts ...kmviz.Option) *kmviz.Engine {
	t.Helper()
	e, err := kmviz.New(opts...)
	require.NoError(t, err)
	return e
}

func manualRequest() kmviz.Request {
	return kmviz.Request{
		Data:            testutil.FourPoints(),
		NumClusters:     2,
		InitMethod:      kmviz.InitManual,
		ManualCentroids: []model.Point{model.Pt(0, 0), model.Pt(10, 0)},
	}
}

func TestRun_ManualScenario(t *testing.T) {
	e := newEngine(t)

	run, err := e.Run(context.Background(), manualRequest())
	require.NoError(t, err)
	require.Len(t, run.Steps, 2)
	assert.True(t, run.Converged)
	assert.Equal(t, 2, run.Iterations)
	assert.Equal(t, kmviz.InitManual, run.InitMethod)

	first := run.Steps[0]
	assert.Equal(t, []model.Point{model.Pt(0, 0), model.Pt(10, 0)}, first.Centroids)
	assert.Equal(t, []model.Point{model.Pt(0, 0), model.Pt(0, 1)}, first.Clusters[0].Points)
	assert.Equal(t, []model.Point{model.Pt(10, 0), model.Pt(10, 1)}, first.Clusters[1].Points)
	assert.Equal(t, 4, first.Reassigned)
	assert.InDelta(t, 2.0, first.Inertia, 1e-12)

	last := run.Steps[1]
	assert.Equal(t, []model.Point{model.Pt(0, 0.5), model.Pt(10, 0.5)}, last.Centroids)
	assert.Equal(t, 0, last.Reassigned)
	assert.InDelta(t, 1.0, last.Inertia, 1e-12)

	testutil.AssertStepInvariants(t, testutil.FourPoints(), 2, run.Steps)
}

func TestRun_Errors(t *testing.T) {
	e := newEngine(t)
	data := testutil.FourPoints()

	tests := []struct {
		name  string
		req   kmviz.Request
		empty bool
		field string
	}{
		{
			name:  "EmptyDataset",
			req:   kmviz.Request{NumClusters: 2, InitMethod: "bogus"},
			empty: true,
		},
		{
			name:  "SeedCountMismatch",
			req:   kmviz.Request{Data: data, NumClusters: 3, InitMethod: kmviz.InitManual, ManualCentroids: data[:2]},
			field: "manual_centroids",
		},
		{
			name:  "ZeroClusters",
			req:   kmviz.Request{Data: data, NumClusters: 0, InitMethod: "bogus"},
			field: "num_clusters",
		},
		{
			name:  "TooManyClusters",
			req:   kmviz.Request{Data: data, NumClusters: 5},
			field: "num_clusters",
		},
		{
			name:  "UnknownMethod",
			req:   kmviz.Request{Data: data, NumClusters: 2, InitMethod: "bogus"},
			field: "init_method",
		},
		{
			name:  "CoordinateOverflow",
			req:   kmviz.Request{Data: []model.Point{model.Pt(1e200, 0), model.Pt(-1e200, 0)}, NumClusters: 1},
			field: "data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := e.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, run)
			if tt.empty {
				assert.ErrorIs(t, err, kmviz.ErrEmptyDataset)
				return
			}
			assert.ErrorIs(t, err, kmviz.ErrInvalidConfiguration)
			var ce *kmviz.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestRun_SingleCluster(t *testing.T) {
	e := newEngine(t)
	data := testutil.FourPoints()

	run, err := e.Run(context.Background(), kmviz.Request{
		Data:            data,
		NumClusters:     1,
		InitMethod:      kmviz.InitManual,
		ManualCentroids: []model.Point{model.Pt(0, 0)},
	})
	require.NoError(t, err)
	assert.True(t, run.Converged)
	assert.Len(t, run.Steps, 2)

	last, ok := run.Final()
	require.True(t, ok)
	assert.Equal(t, []model.Point{model.Pt(5, 0.5)}, last.Centroids)
	assert.Len(t, last.Clusters[0].Points, 4)
}

func TestRun_EachPointItsOwnCluster(t *testing.T) {
	e := newEngine(t, kmviz.WithSeed(3))
	data := testutil.FourPoints()

	for _, method := range []string{kmviz.InitKMeansPlusPlus, kmviz.InitRandom, kmviz.InitFarthestFirst} {
		t.Run(method, func(t *testing.T) {
			run, err := e.Run(context.Background(), kmviz.Request{Data: data, NumClusters: 4, InitMethod: method})
			require.NoError(t, err)
			require.Len(t, run.Steps, 1)
			assert.True(t, run.Converged)
			for _, c := range run.Steps[0].Clusters {
				assert.Len(t, c.Points, 1)
			}
			assert.ElementsMatch(t, data, run.Steps[0].Centroids)
		})
	}
}

func TestRun_Invariants(t *testing.T) {
	rng := testutil.NewRNG(11)
	data := rng.Blobs([]model.Point{model.Pt(0, 0), model.Pt(5, 5), model.Pt(-5, 5)}, 20, 1)
	e := newEngine(t, kmviz.WithSeed(5))

	for _, method := range []string{kmviz.InitKMeansPlusPlus, kmviz.InitRandom, kmviz.InitFarthestFirst} {
		for k := 1; k <= 6; k++ {
			run, err := e.Run(context.Background(), kmviz.Request{Data: data, NumClusters: kmviz.ClusterCount(k), InitMethod: method})
			require.NoError(t, err)
			testutil.AssertStepInvariants(t, data, k, run.Steps)
			for _, s := range run.Steps {
				assert.InDelta(t, testutil.Inertia(s), s.Inertia, 1e-9)
			}
		}
	}
}

func TestRun_Determinism(t *testing.T) {
	data := testutil.NewRNG(2).UniformPoints(80, -10, 10)

	for _, method := range []string{kmviz.InitKMeansPlusPlus, kmviz.InitRandom, kmviz.InitFarthestFirst} {
		t.Run(method, func(t *testing.T) {
			req := kmviz.Request{Data: data, NumClusters: 4, InitMethod: method}
			a, err := newEngine(t, kmviz.WithSeed(99)).Run(context.Background(), req)
			require.NoError(t, err)
			b, err := newEngine(t, kmviz.WithSeed(99)).Run(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, a, b)
			assert.Equal(t, int64(99), a.Seed)
		})
	}
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	e := newEngine(t)
	req := manualRequest()

	run, err := e.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, testutil.FourPoints(), req.Data)

	run.Steps[0].Clusters[0].Points[0] = model.Pt(99, 99)
	assert.Equal(t, testutil.FourPoints(), req.Data)
	assert.Equal(t, []model.Point{model.Pt(0, 0), model.Pt(10, 0)}, req.ManualCentroids)
}

func TestRun_IterationCap(t *testing.T) {
	e := newEngine(t, kmviz.WithMaxIterations(1))

	run, err := e.Run(context.Background(), manualRequest())
	require.NoError(t, err)
	assert.False(t, run.Converged)
	assert.Len(t, run.Steps, 1)
	assert.Equal(t, 1, run.Iterations)
}

func TestRun_EmptyClusterPolicy(t *testing.T) {
	req := kmviz.Request{
		Data:            testutil.Duplicates(model.Pt(0, 0), 4),
		NumClusters:     2,
		InitMethod:      kmviz.InitManual,
		ManualCentroids: []model.Point{model.Pt(0, 0), model.Pt(5, 5)},
	}

	keep, err := newEngine(t).Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, keep.Steps, 1)
	assert.Equal(t, model.Pt(5, 5), keep.Steps[0].Centroids[1])
	assert.Empty(t, keep.Steps[0].Clusters[1].Points)
	assert.NotNil(t, keep.Steps[0].Clusters[1].Points)

	reseed, err := newEngine(t, kmviz.WithEmptyClusterPolicy(kmviz.ReseedFarthest)).Run(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, reseed.Converged)
	last, _ := reseed.Final()
	assert.Equal(t, []model.Point{model.Pt(0, 0), model.Pt(0, 0)}, last.Centroids)
}

func TestRun_ManualCentroidsIgnored(t *testing.T) {
	e := newEngine(t, kmviz.WithSeed(1))
	req := manualRequest()
	req.InitMethod = kmviz.InitKMeansPlusPlus
	req.ManualCentroids = req.ManualCentroids[:1]

	run, err := e.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, kmviz.InitKMeansPlusPlus, run.InitMethod)

	var buf bytes.Buffer
	logger := kmviz.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e = newEngine(t, kmviz.WithSeed(1), kmviz.WithLogger(logger))
	_, err = e.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"ignoring manual centroids","k":2,"init_method":"kmeans++","count":1`)
}

func TestRun_Palette(t *testing.T) {
	p := palette.Palette{"red"}
	e := newEngine(t, kmviz.WithPalette(p))

	run, err := e.Run(context.Background(), manualRequest())
	require.NoError(t, err)
	for _, s := range run.Steps {
		assert.Equal(t, "red", s.Clusters[0].Color)
		assert.Equal(t, "red", s.Clusters[1].Color)
	}

	run, err = newEngine(t).Run(context.Background(), manualRequest())
	require.NoError(t, err)
	assert.Equal(t, palette.Default[0], run.Steps[0].Clusters[0].Color)
	assert.Equal(t, palette.Default[1], run.Steps[0].Clusters[1].Color)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(t).Run(ctx, manualRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Cache(t *testing.T) {
	metrics := &kmviz.BasicMetricsCollector{}
	e := newEngine(t, kmviz.WithSeed(7), kmviz.WithCache(1<<20), kmviz.WithMetricsCollector(metrics))
	req := kmviz.Request{Data: testutil.NewRNG(3).UniformPoints(30, 0, 1), NumClusters: 3}

	first, err := e.Run(context.Background(), req)
	require.NoError(t, err)
	first.Steps[0].Centroids[0] = model.Pt(-1, -1)

	second, err := e.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, model.Pt(-1, -1), second.Steps[0].Centroids[0])

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(2), stats.RunCount)
}

func TestRun_CacheSkipsRandomSeeds(t *testing.T) {
	metrics := &kmviz.BasicMetricsCollector{}
	e := newEngine(t, kmviz.WithCache(1<<20), kmviz.WithMetricsCollector(metrics))
	req := kmviz.Request{Data: testutil.FourPoints(), NumClusters: 2, InitMethod: kmviz.InitRandom}

	for i := 0; i < 3; i++ {
		_, err := e.Run(context.Background(), req)
		require.NoError(t, err)
	}
	stats := metrics.GetStats()
	assert.Zero(t, stats.CacheHits+stats.CacheMisses)

	// Manual runs draw no random numbers and are cached without a seed.
	for i := 0; i < 2; i++ {
		_, err := e.Run(context.Background(), manualRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), metrics.GetStats().CacheHits)
}

func TestRunBatch(t *testing.T) {
	metrics := &kmviz.BasicMetricsCollector{}
	e := newEngine(t, kmviz.WithMaxConcurrentRuns(2), kmviz.WithMetricsCollector(metrics))

	reqs := []kmviz.Request{
		manualRequest(),
		{NumClusters: 1},
		{Data: testutil.FourPoints(), NumClusters: 9},
		manualRequest(),
	}
	results := e.RunBatch(context.Background(), reqs)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, kmviz.ErrEmptyDataset)
	assert.ErrorIs(t, results[2].Err, kmviz.ErrInvalidConfiguration)
	assert.NoError(t, results[3].Err)
	assert.Equal(t, results[0].Run.Steps, results[3].Run.Steps)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(4), stats.BatchItems)
	assert.Equal(t, int64(2), stats.BatchFailed)
}

func TestGenerate(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	points, err := e.Generate(ctx, dataset.NewStandardNormal(1), 25)
	require.NoError(t, err)
	assert.Len(t, points, 25)

	points, err = e.Generate(ctx, dataset.NewStandardNormal(1), 0)
	require.NoError(t, err)
	assert.Empty(t, points)

	_, err = e.Generate(ctx, dataset.NewStandardNormal(1), -1)
	assert.ErrorIs(t, err, kmviz.ErrInvalidConfiguration)

	_, err = e.Generate(ctx, nil, 3)
	assert.ErrorIs(t, err, kmviz.ErrInvalidConfiguration)
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  kmviz.Option
	}{
		{"NegativeIterations", kmviz.WithMaxIterations(-1)},
		{"NegativeTolerance", kmviz.WithTolerance(-1)},
		{"UnknownPolicy", kmviz.WithEmptyClusterPolicy(kmviz.EmptyClusterPolicy(9))},
		{"UnknownRandomPolicy", kmviz.WithRandomPolicy(kmviz.RandomPolicy(9))},
		{"NegativeCache", kmviz.WithCache(-1)},
		{"NegativeWorkers", kmviz.WithMaxConcurrentRuns(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := kmviz.New(tt.opt)
			assert.ErrorIs(t, err, kmviz.ErrInvalidConfiguration)
		})
	}
}
