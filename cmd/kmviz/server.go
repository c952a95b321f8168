package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/kmviz"
	"github.com/hupe1980/kmviz/codec"
	"github.com/hupe1980/kmviz/dataset"
	"github.com/hupe1980/kmviz/model"
	"github.com/hupe1980/kmviz/playback"
	"github.com/hupe1980/kmviz/render"
	"github.com/hupe1980/kmviz/util"
)

const maxBodyBytes = 32 << 20

// maxDecodedBytes bounds what a compressed request body may expand to.
const maxDecodedBytes = 4 * maxBodyBytes

type serverConfig struct {
	Logger         *kmviz.Logger
	Registry       *prometheus.Registry
	DefaultPoints  int
	Seed           *int64 // nil draws a fresh seed per dataset
	ReplayInterval time.Duration
}

type server struct {
	engine *kmviz.Engine
	codec  codec.Codec
	cfg    serverConfig
}

func newServer(engine *kmviz.Engine, cfg serverConfig) *server {
	if cfg.Logger == nil {
		cfg.Logger = kmviz.NoopLogger()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.ReplayInterval <= 0 {
		cfg.ReplayInterval = playback.DefaultInterval
	}
	cdc := engine.Codec()
	if cc, ok := cdc.(*codec.Compressed); ok {
		cdc = cc.WithMaxDecodedSize(maxDecodedBytes)
	}
	return &server{engine: engine, codec: cdc, cfg: cfg}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate_data", s.handleGenerate)
	mux.HandleFunc("POST /load_csv", s.handleLoadCSV)
	mux.HandleFunc("POST /run_kmeans", s.handleRun)
	mux.HandleFunc("POST /run_batch", s.handleBatch)
	mux.HandleFunc("POST /replay_kmeans", s.handleReplay)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	return mux
}

// requestError marks a malformed request body or form.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func httpStatus(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re), errors.Is(err, kmviz.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, kmviz.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	if code >= http.StatusInternalServerError {
		s.cfg.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	b, _ := codec.Default.Marshal(map[string]string{"error": err.Error()})
	_, _ = w.Write(b)
}

func (s *server) write(w http.ResponseWriter, r *http.Request, v any) {
	b, err := s.codec.Marshal(v)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

func (s *server) decode(r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return &requestError{err: fmt.Errorf("read body: %w", err)}
	}
	if err := s.codec.Unmarshal(body, v); err != nil {
		return &requestError{err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	count := s.cfg.DefaultPoints
	if v := r.FormValue("num_points"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, &requestError{err: fmt.Errorf("num_points: %w", err)})
			return
		}
		count = n
	}

	seed := util.NewSeed()
	if s.cfg.Seed != nil {
		seed = *s.cfg.Seed
	}
	points, err := s.engine.Generate(r.Context(), dataset.NewStandardNormal(seed), count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if points == nil {
		points = []model.Point{}
	}
	s.write(w, r, points)
}

func (s *server) handleLoadCSV(w http.ResponseWriter, r *http.Request) {
	points, err := dataset.ReadCSV(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, &requestError{err: err})
		return
	}
	s.write(w, r, points)
}

func (s *server) run(w http.ResponseWriter, r *http.Request) (*model.Run, bool) {
	var req kmviz.Request
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	run, err := s.engine.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	w.Header().Set("X-Kmeans-Converged", strconv.FormatBool(run.Converged))
	w.Header().Set("X-Kmeans-Seed", strconv.FormatInt(run.Seed, 10))
	return run, true
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.run(w, r)
	if !ok {
		return
	}
	s.write(w, r, run.Steps)
}

type batchItem struct {
	Run   *model.Run `json:"run,omitempty"`
	Error string     `json:"error,omitempty"`
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []kmviz.Request
	if err := s.decode(r, &reqs); err != nil {
		s.writeError(w, r, err)
		return
	}
	results := s.engine.RunBatch(r.Context(), reqs)
	out := make([]batchItem, len(results))
	for i, res := range results {
		out[i].Run = res.Run
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	s.write(w, r, out)
}

func (s *server) handleReplay(w http.ResponseWriter, r *http.Request) {
	interval := s.cfg.ReplayInterval
	if v := r.URL.Query().Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			s.writeError(w, r, &requestError{err: fmt.Errorf("interval: %w", err)})
			return
		}
		interval = d
	}

	run, ok := s.run(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)
	err := playback.Replay(r.Context(), run.Steps, interval, func(_ int, step model.Step) error {
		b, err := s.codec.Marshal(step)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		s.cfg.Logger.DebugContext(r.Context(), "replay stopped", "error", err)
	}
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	run, ok := s.run(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.Steps(&buf, run.Steps); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
