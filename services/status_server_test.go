package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EasterCompany/dex-welcome-service/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hc := NewHealthChecker(time.Minute, discardLogger())
	hc.Register("storage", func(context.Context) error { return nil })
	hc.CheckAll(context.Background())

	ss := NewStatusServer(0, "1.2.3", hc, func() int { return 4 }, discardLogger())
	srv := httptest.NewServer(ss.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestStatusServer_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatusServer_Status(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Service      string                      `json:"service"`
		Status       string                      `json:"status"`
		Version      string                      `json:"version"`
		Metrics      map[string]interface{}      `json:"metrics"`
		Dependencies map[string]DependencyStatus `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ServiceName, body.Service)
	assert.Equal(t, "operational", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, float64(4), body.Metrics["servers_loaded"])
	assert.Equal(t, StatusOK, body.Dependencies["storage"].Status)
}

func TestStatusServer_Metrics(t *testing.T) {
	srv := newTestServer(t)
	utils.IncrementCommands("init", "ok")

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dex_welcome_commands_total")
}

func TestHealthChecker_Degraded(t *testing.T) {
	hc := NewHealthChecker(time.Minute, discardLogger())
	var fail atomic.Bool
	fail.Store(true)
	hc.Register("redis", func(context.Context) error {
		if fail.Load() {
			return errors.New("connection refused")
		}
		return nil
	})
	assert.True(t, hc.Healthy(), "unchecked dependencies count as healthy")

	hc.CheckAll(context.Background())
	assert.False(t, hc.Healthy())
	deps := hc.GetAllDependencies()
	assert.Equal(t, StatusBad, deps["redis"].Status)
	assert.Equal(t, "connection refused", deps["redis"].Error)

	ss := NewStatusServer(0, "dev", hc, func() int { return 0 }, discardLogger())
	rec := httptest.NewRecorder()
	ss.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	fail.Store(false)
	hc.CheckAll(context.Background())
	assert.True(t, hc.Healthy())
}

func TestHealthChecker_StopIsIdempotent(t *testing.T) {
	hc := NewHealthChecker(time.Hour, discardLogger())
	hc.Start()
	hc.Stop()
	assert.NotPanics(t, hc.Stop)
}
