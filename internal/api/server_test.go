package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"phaseshift/adapters/polyfile"
	"phaseshift/adapters/rng"
	"phaseshift/app"
	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/domain/lfsr"
	"phaseshift/internal"
	"phaseshift/internal/config"
	"phaseshift/internal/errors"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := internal.NewLogger(internal.LogLevelError)
	polys := polyfile.NewSource(filepath.Join("..", "..", "polynomials"))
	svc := app.NewExperimentService(polys, rng.NewStateSource(), 2, logger)

	defaults := config.DefaultRunConfig()
	defaults.NumIntegers, defaults.BitWidth = 5, 4
	defaults.Cycles, defaults.Experiments = 20, 3
	return NewServer(svc, defaults, logger)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

type runResponse struct {
	RunID      string `json:"run_id"`
	Polynomial string `json:"polynomial"`
	Settings   struct {
		CS     int    `json:"cs"`
		Method string `json:"method"`
		Seed   int64  `json:"seed"`
	} `json:"settings"`
	Summary struct {
		Experiments int `json:"experiments"`
		Average     struct {
			Mean float64 `json:"mean_frequency"`
		} `json:"average"`
	} `json:"summary"`
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCreateAndFetchRun(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/runs", `{"method":"separated","seed":77}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.RunID)
	assert.Equal(t, "X^10 + X^3 + 1", created.Polynomial)
	assert.Equal(t, "separated", created.Settings.Method)
	assert.Equal(t, 20, created.Settings.CS)
	assert.Equal(t, int64(77), created.Settings.Seed)
	assert.Equal(t, 3, created.Summary.Experiments)
	assert.Greater(t, created.Summary.Average.Mean, 0.0)

	body := rec.Body.Bytes()
	assert.Equal(t, int64(3), gjson.GetBytes(body, "summary.per_experiment.#").Int())
	assert.Equal(t, int64(100), gjson.GetBytes(body, "summary.per_experiment.0.samples").Int())
	assert.True(t, gjson.GetBytes(body, "summary.last_histogram.counts").IsArray())
	assert.False(t, gjson.GetBytes(body, "settings.Polynomial").Exists())

	rec = do(t, s, http.MethodGet, "/api/runs/"+created.RunID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)

	rec = do(t, s, http.MethodGet, "/api/runs/"+created.RunID+"/histogram", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")

	rec = do(t, s, http.MethodGet, "/api/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.RunID)
}

func TestCreateRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"degree":`, http.StatusBadRequest, errors.CodeParseError},
		{"unknown field", `{"colour":"red"}`, http.StatusBadRequest, errors.CodeParseError},
		{"offsets overflow", `{"nc":10,"cs":200,"num_integers":5,"bit_width":2}`, http.StatusBadRequest, errors.CodeValidationError},
		{"single bit", `{"bit_width":1}`, http.StatusBadRequest, errors.CodeConfigInvalid},
		{"missing degree file", `{"degree":63}`, http.StatusNotFound, errors.CodeNotFound},
		{"entry past end", `{"entry":100000}`, http.StatusNotFound, errors.CodeIndexOutOfRange},
		{"too large", `{"cycles":1000000,"experiments":100}`, http.StatusBadRequest, errors.CodeValidationError},
		{"sample count wraps around", `{"degree":10,"num_integers":1,"bit_width":4,"cycles":4611686018427387904,"experiments":4}`, http.StatusBadRequest, errors.CodeValidationError},
		{"too many channels", `{"degree":64,"nc":1073741824,"cs":1,"num_integers":1,"bit_width":4}`, http.StatusBadRequest, errors.CodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, "/api/runs", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestUnknownRun(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/runs/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, fmt.Sprintf("/api/runs/%s/histogram", core.NewRunID()), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWithinSampleLimit(t *testing.T) {
	settings := func(cycles, experiments, ints int) experiment.Settings {
		return experiment.Settings{Cycles: cycles, Experiments: experiments, Layout: lfsr.Layout{NumIntegers: ints}}
	}
	assert.True(t, withinSampleLimit(settings(1000, 100, 100)))
	assert.True(t, withinSampleLimit(settings(MaxSamples, 1, 1)))
	assert.False(t, withinSampleLimit(settings(MaxSamples+1, 1, 1)))
	assert.False(t, withinSampleLimit(settings(1<<62, 4, 1)))
	assert.False(t, withinSampleLimit(settings(1<<32, 1<<32, 1)))
	assert.False(t, withinSampleLimit(settings(-1, 10, 10)))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.ValidationError("x")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.ConfigInvalid("x")))
	assert.Equal(t, http.StatusNotFound, StatusFor(errors.IndexOutOfRange("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.InternalError("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(fmt.Errorf("plain")))
	assert.Equal(t, statusClientClosedRequest, StatusFor(context.Canceled))
	assert.Equal(t, statusClientClosedRequest, StatusFor(fmt.Errorf("experiment 3: %w", context.Canceled)))
	assert.Equal(t, http.StatusGatewayTimeout, StatusFor(context.DeadlineExceeded))
}
