package main

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmviz"
	"github.com/hupe1980/kmviz/codec"
	"github.com/hupe1980/kmviz/model"
)

const manualBody = `{
	"data": [[0,0],[0,1],[10,0],[10,1]],
	"num_clusters": "2",
	"init_method": "manual",
	"manual_centroids": [[0,0],[10,0]]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	engine, err := kmviz.New(
		kmviz.WithSeed(1),
		kmviz.WithCache(1<<20),
		kmviz.WithMetricsCollector(newPrometheusCollector(reg)),
	)
	require.NoError(t, err)

	seed := int64(1)
	srv := httptest.NewServer(newServer(engine, serverConfig{
		Registry:      reg,
		DefaultPoints: 100,
		Seed:          &seed,
	}).routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGenerateData(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		form     url.Values
		status   int
		expected int
	}{
		{name: "Default", form: url.Values{}, status: http.StatusOK, expected: 100},
		{name: "Explicit", form: url.Values{"num_points": {"7"}}, status: http.StatusOK, expected: 7},
		{name: "Zero", form: url.Values{"num_points": {"0"}}, status: http.StatusOK, expected: 0},
		{name: "Negative", form: url.Values{"num_points": {"-1"}}, status: http.StatusBadRequest},
		{name: "NotANumber", form: url.Values{"num_points": {"abc"}}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.PostForm(srv.URL+"/generate_data", tt.form)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusOK {
				return
			}
			var points []model.Point
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
			assert.Len(t, points, tt.expected)
		})
	}
}

func TestRunKMeans(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/run_kmeans", manualBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Kmeans-Converged"))

	var steps []struct {
		Centroids [][2]float64 `json:"centroids"`
		Clusters  map[string]struct {
			Points [][2]float64 `json:"points"`
			Color  string       `json:"color"`
		} `json:"clusters"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&steps))
	require.Len(t, steps, 2)
	assert.Equal(t, [][2]float64{{0, 0}, {0, 1}}, steps[0].Clusters["0"].Points)
	assert.Equal(t, [][2]float64{{10, 0}, {10, 1}}, steps[0].Clusters["1"].Points)
	assert.Equal(t, [][2]float64{{0, 0.5}, {10, 0.5}}, steps[1].Centroids)
	assert.NotEmpty(t, steps[0].Clusters["0"].Color)
}

func TestRunKMeans_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"EmptyDataset", `{"data": [], "num_clusters": 2, "init_method": "random"}`, http.StatusUnprocessableEntity},
		{"SeedMismatch", `{"data": [[0,0],[1,1],[2,2]], "num_clusters": 3, "init_method": "manual", "manual_centroids": [[0,0],[1,1]]}`, http.StatusBadRequest},
		{"UnknownMethod", `{"data": [[0,0],[1,1]], "num_clusters": 1, "init_method": "nope"}`, http.StatusBadRequest},
		{"Malformed", `{"data": `, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/run_kmeans", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRunBatch(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/run_batch", `[`+manualBody+`, {"data": [], "num_clusters": 1}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []batchItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Run)
	assert.Len(t, items[0].Run.Steps, 2)
	assert.Empty(t, items[0].Error)
	assert.Nil(t, items[1].Run)
	assert.Contains(t, items[1].Error, "empty dataset")
}

func TestReplayKMeans(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/replay_kmeans?interval=1ms", manualBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var lines int
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var step model.Step
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &step))
		assert.Len(t, step.Centroids, 2)
		lines++
	}
	assert.Equal(t, 2, lines)

	resp = postJSON(t, srv, "/replay_kmeans?interval=soon", manualBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRender(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/render", manualBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var sb strings.Builder
	_, err := bufio.NewReader(resp.Body).WriteTo(&sb)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "Step 0")
	assert.Contains(t, sb.String(), "Step 1")
}

func TestLoadCSV(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/load_csv", "text/csv", strings.NewReader("x,y\n1,2\n3,4\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var points []model.Point
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	assert.Equal(t, []model.Point{model.Pt(1, 2), model.Pt(3, 4)}, points)

	resp2, err := http.Post(srv.URL+"/load_csv", "text/csv", strings.NewReader("x\n1\n"))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestMetricsAndHealth(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/run_kmeans", manualBody)
	postJSON(t, srv, "/run_kmeans", manualBody)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var sb strings.Builder
	_, err = bufio.NewReader(resp.Body).WriteTo(&sb)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), `kmviz_runs_total{outcome="converged"} 2`)
	assert.Contains(t, sb.String(), `kmviz_cache_lookups_total{result="hit"} 1`)

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	wrong, err := http.Get(srv.URL + "/run_kmeans")
	require.NoError(t, err)
	defer wrong.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, wrong.StatusCode)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug", "json")
	assert.NoError(t, err)
	_, err = newLogger("info", "text")
	assert.NoError(t, err)
	_, err = newLogger("loud", "text")
	assert.Error(t, err)
	_, err = newLogger("info", "xml")
	assert.Error(t, err)
}

func TestRunKMeans_CompressedBody(t *testing.T) {
	cdc := codec.NewCompressed(codec.JSON{}, codec.CompressionLZ4)
	engine, err := kmviz.New(kmviz.WithCodec(cdc))
	require.NoError(t, err)
	s := newServer(engine, serverConfig{})
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)

	sc, ok := s.codec.(*codec.Compressed)
	require.True(t, ok)
	assert.Equal(t, maxDecodedBytes, sc.MaxDecodedSize())

	var req kmviz.Request
	require.NoError(t, json.Unmarshal([]byte(manualBody), &req))
	body, err := cdc.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/run_kmeans", "application/octet-stream", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	bomb, err := http.Post(srv.URL+"/run_kmeans", "application/octet-stream", strings.NewReader("\x01\xff\xff\xff\xff"))
	require.NoError(t, err)
	defer bomb.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bomb.StatusCode)
}
