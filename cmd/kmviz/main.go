// Command kmviz serves the K-Means step engine over HTTP.
//
// Endpoints:
//
//	POST /generate_data   form num_points -> JSON array of [x, y]
//	POST /load_csv        CSV body -> JSON array of [x, y]
//	POST /run_kmeans      JSON request -> JSON array of steps
//	POST /replay_kmeans   JSON request -> steps as NDJSON, paced by ?interval=
//	POST /render          JSON request -> HTML page, one chart per step
//	GET  /metrics         Prometheus metrics
//	GET  /healthz         liveness
//
// Every flag can also be set through its KMVIZ_* environment variable.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"

	"github.com/hupe1980/kmviz"
	"github.com/hupe1980/kmviz/codec"
	"github.com/hupe1980/kmviz/playback"
)

// flag names
const (
	addrFlagName           = "addr"
	maxIterationsFlagName  = "max-iterations"
	seedFlagName           = "seed"
	logLevelFlagName       = "log-level"
	logFormatFlagName      = "log-format"
	cacheBytesFlagName     = "cache-bytes"
	workersFlagName        = "workers"
	pointsFlagName         = "points"
	codecFlagName          = "codec"
	replayIntervalFlagName = "replay-interval"
	reseedFlagName         = "reseed-empty"
)

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:    addrFlagName,
		Value:   ":3000",
		Usage:   "listen address",
		EnvVars: []string{"KMVIZ_ADDR"},
	},
	&cli.IntFlag{
		Name:    maxIterationsFlagName,
		Value:   kmviz.DefaultMaxIterations,
		Usage:   "maximum steps per run",
		EnvVars: []string{"KMVIZ_MAX_ITERATIONS"},
	},
	&cli.Int64Flag{
		Name:    seedFlagName,
		Usage:   "fixed random seed; unset draws a fresh seed per run",
		EnvVars: []string{"KMVIZ_SEED"},
	},
	&cli.StringFlag{
		Name:    logLevelFlagName,
		Value:   "info",
		Usage:   "debug, info, warn or error",
		EnvVars: []string{"KMVIZ_LOG_LEVEL"},
	},
	&cli.StringFlag{
		Name:    logFormatFlagName,
		Value:   "text",
		Usage:   "text or json",
		EnvVars: []string{"KMVIZ_LOG_FORMAT"},
	},
	&cli.Int64Flag{
		Name:    cacheBytesFlagName,
		Value:   64 << 20,
		Usage:   "run cache capacity in bytes, 0 disables",
		EnvVars: []string{"KMVIZ_CACHE_BYTES"},
	},
	&cli.IntFlag{
		Name:    workersFlagName,
		Usage:   "maximum concurrent runs, 0 is unlimited",
		EnvVars: []string{"KMVIZ_WORKERS"},
	},
	&cli.IntFlag{
		Name:    pointsFlagName,
		Value:   100,
		Usage:   "default num_points for /generate_data",
		EnvVars: []string{"KMVIZ_POINTS"},
	},
	&cli.StringFlag{
		Name:    codecFlagName,
		Value:   codec.Default.Name(),
		Usage:   "response codec (json, go-json)",
		EnvVars: []string{"KMVIZ_CODEC"},
	},
	&cli.DurationFlag{
		Name:    replayIntervalFlagName,
		Value:   playback.DefaultInterval,
		Usage:   "default delay between steps on /replay_kmeans",
		EnvVars: []string{"KMVIZ_REPLAY_INTERVAL"},
	},
	&cli.BoolFlag{
		Name:    reseedFlagName,
		Usage:   "reseed empty clusters at the farthest point instead of keeping them in place",
		EnvVars: []string{"KMVIZ_RESEED_EMPTY"},
	},
}

func main() {
	app := &cli.App{
		Name:   "kmviz",
		Usage:  "step-by-step K-Means over HTTP",
		Flags:  flags,
		Action: serve,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	logger, err := newLogger(c.String(logLevelFlagName), c.String(logFormatFlagName))
	if err != nil {
		return err
	}

	cdc, ok := codec.ByName(c.String(codecFlagName))
	if !ok {
		return fmt.Errorf("unknown codec %q", c.String(codecFlagName))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []kmviz.Option{
		kmviz.WithMaxIterations(c.Int(maxIterationsFlagName)),
		kmviz.WithCache(c.Int64(cacheBytesFlagName)),
		kmviz.WithMaxConcurrentRuns(c.Int(workersFlagName)),
		kmviz.WithCodec(cdc),
		kmviz.WithLogger(logger),
		kmviz.WithMetricsCollector(newPrometheusCollector(reg)),
	}
	var seed *int64
	if c.IsSet(seedFlagName) {
		s := c.Int64(seedFlagName)
		seed = &s
		opts = append(opts, kmviz.WithSeed(s))
	}
	if c.Bool(reseedFlagName) {
		opts = append(opts, kmviz.WithEmptyClusterPolicy(kmviz.ReseedFarthest))
	}

	engine, err := kmviz.New(opts...)
	if err != nil {
		return err
	}

	srv := newServer(engine, serverConfig{
		Logger:         logger,
		Registry:       reg,
		DefaultPoints:  c.Int(pointsFlagName),
		Seed:           seed,
		ReplayInterval: c.Duration(replayIntervalFlagName),
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              c.String(addrFlagName),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("shut down")
	return nil
}

func newLogger(level, format string) (*kmviz.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	switch format {
	case "text":
		return kmviz.NewTextLogger(lvl), nil
	case "json":
		return kmviz.NewJSONLogger(lvl), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
