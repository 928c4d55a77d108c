package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/forecast-alert-service/internal/adapter/http"
	"github.com/couchcryptid/forecast-alert-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockSource struct {
	data []byte
	err  error
}

func (m *mockSource) Fetch(_ context.Context) ([]byte, error) { return m.data, m.err }
func (m *mockSource) Name() string                           { return "mock" }

const testSourceTag = "LSTM_Model_v1"

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, nil, slog.Default())
}

func newForecastServer(src *mockSource, metrics *observability.Metrics) *httpadapter.Server {
	api := httpadapter.NewForecastAPI(src, testSourceTag, metrics, slog.Default())
	return httpadapter.NewServer(":0", &mockReadiness{}, api, slog.Default())
}

func get(srv http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("not ready yet")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestForecastRouteAbsentWithoutAPI(t *testing.T) {
	rec := get(newTestServer(nil), "/api/forecast")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForecastReturnsAnnotatedEnvelope(t *testing.T) {
	doc := `[
		{"date":"2026-07-10","tmax":35,"rhum":45,"wspd":12},
		{"date":"2026-07-11","tmax":43,"rhum":15,"wspd":10}
	]`
	metrics := observability.NewMetricsForTesting()
	rec := get(newForecastServer(&mockSource{data: []byte(doc)}, metrics), "/api/forecast")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	want := `{
		"status": "success",
		"source": "LSTM_Model_v1",
		"data": [
			{"date":"2026-07-10","tmax":35,"rhum":45,"wspd":12,"alert":null},
			{"date":"2026-07-11","tmax":43,"rhum":15,"wspd":10,"alert":{
				"type":"HEATWAVE_CRITICAL",
				"level":"CRITICAL",
				"message":"Critical temperature detected: 43°C exceeds safety limit.",
				"date":"2026-07-11"
			}}
		]
	}`
	assert.JSONEq(t, want, rec.Body.String())

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.DaysAnnotated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.AlertsRaised.WithLabelValues("HEATWAVE_CRITICAL", "CRITICAL")), 0)
}

func TestForecastEmptyDocument(t *testing.T) {
	rec := get(newForecastServer(&mockSource{data: []byte(`[]`)}, observability.NewMetricsForTesting()), "/api/forecast")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","source":"LSTM_Model_v1","data":[]}`, rec.Body.String())
}

func TestForecastFailuresReturn500(t *testing.T) {
	tests := []struct {
		name string
		src  *mockSource
	}{
		{name: "source unavailable", src: &mockSource{err: errors.New("open forecast_data.json: no such file")}},
		{name: "malformed document", src: &mockSource{data: []byte(`{not json`)}},
		{name: "missing field", src: &mockSource{data: []byte(`[{"date":"2026-07-10","tmax":30,"rhum":40}]`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newForecastServer(tt.src, observability.NewMetricsForTesting()), "/api/forecast")

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "forecast_data.json")
		})
	}
}

func TestAllReady(t *testing.T) {
	pipelineErr := errors.New("pipeline has not processed any forecasts yet")
	sourceErr := errors.New("forecast upstream circuit breaker is open")

	tests := []struct {
		name     string
		checkers []httpadapter.ReadinessChecker
		wantErrs []error
	}{
		{name: "no checkers"},
		{name: "all ready", checkers: []httpadapter.ReadinessChecker{&mockReadiness{}, &mockReadiness{}}},
		{
			name:     "source not ready",
			checkers: []httpadapter.ReadinessChecker{&mockReadiness{}, &mockReadiness{err: sourceErr}},
			wantErrs: []error{sourceErr},
		},
		{
			name:     "both not ready",
			checkers: []httpadapter.ReadinessChecker{&mockReadiness{err: pipelineErr}, &mockReadiness{err: sourceErr}},
			wantErrs: []error{pipelineErr, sourceErr},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := httpadapter.AllReady(tt.checkers...).CheckReadiness(context.Background())
			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestReadyzReportsSourceFailureWhenPipelineReady(t *testing.T) {
	ready := httpadapter.AllReady(&mockReadiness{}, &mockReadiness{err: errors.New("forecast file unavailable")})
	srv := httpadapter.NewServer(":0", ready, nil, slog.Default())

	rec := get(srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "forecast file unavailable", body["error"])
}
