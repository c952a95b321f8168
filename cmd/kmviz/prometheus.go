package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/kmviz"
)

// prometheusCollector implements kmviz.MetricsCollector.
type prometheusCollector struct {
	opLatency *prometheus.HistogramVec
	runs      *prometheus.CounterVec
	runSteps  prometheus.Histogram
	batches   *prometheus.CounterVec
	cache     *prometheus.CounterVec
	generated prometheus.Counter
}

var _ kmviz.MetricsCollector = (*prometheusCollector)(nil)

func newPrometheusCollector(reg prometheus.Registerer) *prometheusCollector {
	p := &prometheusCollector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kmviz_operation_latency_seconds",
			Help:    "Latency of engine operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kmviz_runs_total",
			Help: "Runs by outcome",
		}, []string{"outcome"}),
		runSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kmviz_run_steps",
			Help:    "Steps recorded per successful run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kmviz_batch_requests_total",
			Help: "Requests evaluated in batches",
		}, []string{"status"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kmviz_cache_lookups_total",
			Help: "Run cache lookups",
		}, []string{"result"}),
		generated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kmviz_generated_points_total",
			Help: "Points produced by dataset generation",
		}),
	}

	reg.MustRegister(p.opLatency, p.runs, p.runSteps, p.batches, p.cache, p.generated)
	return p
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (p *prometheusCollector) RecordRun(k, steps int, converged bool, d time.Duration, err error) {
	p.opLatency.WithLabelValues("run", status(err)).Observe(d.Seconds())
	switch {
	case err != nil:
		p.runs.WithLabelValues("error").Inc()
		return
	case converged:
		p.runs.WithLabelValues("converged").Inc()
	default:
		p.runs.WithLabelValues("exhausted").Inc()
	}
	p.runSteps.Observe(float64(steps))
}

func (p *prometheusCollector) RecordBatch(count, failed int, d time.Duration) {
	p.opLatency.WithLabelValues("batch", "success").Observe(d.Seconds())
	p.batches.WithLabelValues("success").Add(float64(count - failed))
	p.batches.WithLabelValues("error").Add(float64(failed))
}

func (p *prometheusCollector) RecordCache(hit bool) {
	if hit {
		p.cache.WithLabelValues("hit").Inc()
	} else {
		p.cache.WithLabelValues("miss").Inc()
	}
}

func (p *prometheusCollector) RecordGenerate(count int, d time.Duration, err error) {
	p.opLatency.WithLabelValues("generate", status(err)).Observe(d.Seconds())
	p.generated.Add(float64(count))
}
