package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dependency status values.
const (
	StatusOK      = "OK"
	StatusBad     = "BAD"
	StatusUnknown = "N/A"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// DependencyStatus is the last known health of a dependency.
type DependencyStatus struct {
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	LastCheck    time.Time `json:"last_check"`
	ResponseTime int64     `json:"response_time"` // milliseconds
}

type dependency struct {
	check  CheckFunc
	status DependencyStatus
}

// HealthChecker periodically probes the service's dependencies: the storage
// backend and the Discord gateway.
type HealthChecker struct {
	mu            sync.RWMutex
	deps          map[string]*dependency
	checkInterval time.Duration
	timeout       time.Duration
	logger        *slog.Logger
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewHealthChecker creates a new dependency health checker
func NewHealthChecker(checkInterval time.Duration, logger *slog.Logger) *HealthChecker {
	return &HealthChecker{
		deps:          make(map[string]*dependency),
		checkInterval: checkInterval,
		timeout:       2 * time.Second,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Register adds a dependency to monitor
func (hc *HealthChecker) Register(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.deps[name] = &dependency{
		check:  check,
		status: DependencyStatus{Name: name, Status: StatusUnknown, LastCheck: time.Now()},
	}
}

// Start begins monitoring all registered dependencies
func (hc *HealthChecker) Start() {
	go hc.monitorLoop()
	hc.logger.Info("dependency health checker started", "interval", hc.checkInterval)
}

// Stop halts the health checker
func (hc *HealthChecker) Stop() {
	hc.stopOnce.Do(func() { close(hc.stopChan) })
}

func (hc *HealthChecker) monitorLoop() {
	hc.CheckAll(context.Background())

	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hc.CheckAll(context.Background())
		case <-hc.stopChan:
			return
		}
	}
}

// CheckAll probes every dependency concurrently and waits for the results.
func (hc *HealthChecker) CheckAll(ctx context.Context) {
	hc.mu.RLock()
	checks := make(map[string]CheckFunc, len(hc.deps))
	for name, d := range hc.deps {
		checks[name] = d.check
	}
	hc.mu.RUnlock()

	var wg sync.WaitGroup
	for name, check := range checks {
		name, check := name, check
		wg.Add(1)
		go func() {
			defer wg.Done()
			hc.checkDependency(ctx, name, check)
		}()
	}
	wg.Wait()
}

func (hc *HealthChecker) checkDependency(ctx context.Context, name string, check CheckFunc) {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	elapsed := time.Since(start).Milliseconds()

	hc.mu.Lock()
	defer hc.mu.Unlock()

	d, ok := hc.deps[name]
	if !ok {
		return
	}
	previous := d.status.Status
	d.status.LastCheck = time.Now()
	d.status.ResponseTime = elapsed
	if err != nil {
		d.status.Status = StatusBad
		d.status.Error = err.Error()
		if previous != StatusBad {
			hc.logger.Warn("dependency unhealthy", "dependency", name, "error", err)
		}
		return
	}
	d.status.Status = StatusOK
	d.status.Error = ""
	if previous == StatusBad {
		hc.logger.Info("dependency recovered", "dependency", name)
	}
}

// Healthy reports whether no dependency is failing. Unchecked ones count as healthy.
func (hc *HealthChecker) Healthy() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	for _, d := range hc.deps {
		if d.status.Status == StatusBad {
			return false
		}
	}
	return true
}

// GetAllDependencies returns a copy of every dependency's status.
func (hc *HealthChecker) GetAllDependencies() map[string]DependencyStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	out := make(map[string]DependencyStatus, len(hc.deps))
	for name, d := range hc.deps {
		out[name] = d.status
	}
	return out
}
