package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/EasterCompany/dex-welcome-service/system"
	"github.com/EasterCompany/dex-welcome-service/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceName is reported on /status.
const ServiceName = "dex-welcome-service"

// StatusServer provides HTTP status endpoint for this service
type StatusServer struct {
	startTime     time.Time
	port          int
	version       string
	healthChecker *HealthChecker
	servers       func() int
	logger        *slog.Logger
	server        *http.Server
}

// NewStatusServer creates a new status server. servers reports how many
// server configs are loaded.
func NewStatusServer(port int, version string, healthChecker *HealthChecker, servers func() int, logger *slog.Logger) *StatusServer {
	return &StatusServer{
		startTime:     time.Now(),
		port:          port,
		version:       version,
		healthChecker: healthChecker,
		servers:       servers,
		logger:        logger,
	}
}

// Handler returns the status routes.
func (ss *StatusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", ss.handleStatus)
	mux.HandleFunc("/health", ss.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(utils.Registry, promhttp.HandlerOpts{}))
	return mux
}

// Start begins the HTTP status server
func (ss *StatusServer) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", ss.port)
	ss.server = &http.Server{
		Addr:              addr,
		Handler:           ss.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ss.logger.Info("starting status server", "addr", "http://"+addr)

	go func() {
		if err := ss.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ss.logger.Error("status server error", "error", err)
		}
	}()

	return nil
}

// Shutdown stops the server, waiting for in-flight requests.
func (ss *StatusServer) Shutdown(ctx context.Context) error {
	if ss.server == nil {
		return nil
	}
	return ss.server.Shutdown(ctx)
}

// handleStatus returns detailed service status
func (ss *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status := "operational"
	if !ss.healthChecker.Healthy() {
		status = "degraded"
	}

	metrics := utils.GetMetrics()
	metrics["servers_loaded"] = ss.servers()
	metrics["goroutines"] = runtime.NumGoroutine()
	metrics["memory_alloc_mb"] = float64(m.Alloc) / 1024 / 1024
	metrics["gc_runs"] = m.NumGC

	ss.writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":      ServiceName,
		"status":       status,
		"version":      ss.version,
		"uptime":       time.Since(ss.startTime).Round(time.Second).String(),
		"timestamp":    time.Now().Format(time.RFC3339),
		"metrics":      metrics,
		"system":       system.Snapshot(),
		"dependencies": ss.healthChecker.GetAllDependencies(),
	})
}

// handleHealth returns simple health check (for load balancers)
func (ss *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !ss.healthChecker.Healthy() {
		ss.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	ss.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (ss *StatusServer) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ss.logger.Error("error encoding status response", "error", err)
	}
}
