// Package health provides liveness and readiness probes for a long-running
// simulation. Checks read state through callbacks, so they never touch a
// scene directly from the HTTP goroutine.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"
)

// Status values reported by checks and the aggregate
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds a readiness request
const DefaultCheckTimeout = 5 * time.Second

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated result of all checks.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of one check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks.
type HealthChecker struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	mu      sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks:  make(map[string]HealthCheck),
		timeout: DefaultCheckTimeout,
	}
}

// AddCheck registers a check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth runs every check. The aggregate is healthy only if all
// checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: StatusHealthy,
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = ComponentHealth{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: StatusHealthy}
	}

	return status
}

// LivenessHandler answers 200 while the process can serve requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs all checks and answers 200 when they pass and 503
// otherwise, with the per-check results as the body.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), hc.timeout)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status == StatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// Handler returns a mux serving /health and /ready.
func (hc *HealthChecker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hc.LivenessHandler)
	mux.HandleFunc("/ready", hc.ReadinessHandler)
	return mux
}

// SimulationHealthCheck passes while the simulation loop is running.
type SimulationHealthCheck struct {
	running func() bool
}

// NewSimulationHealthCheck creates a check backed by running.
func NewSimulationHealthCheck(running func() bool) *SimulationHealthCheck {
	return &SimulationHealthCheck{running: running}
}

func (s *SimulationHealthCheck) Name() string { return "simulation" }

func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	if !s.running() {
		return fmt.Errorf("simulation is not running")
	}
	return nil
}

// ProgressHealthCheck fails when the tick counter has not advanced for
// longer than the stall window.
type ProgressHealthCheck struct {
	ticks func() uint64
	stall time.Duration
	now   func() time.Time

	mu       sync.Mutex
	last     uint64
	lastSeen time.Time
}

// NewProgressHealthCheck creates a check that samples ticks on every call.
func NewProgressHealthCheck(ticks func() uint64, stall time.Duration) *ProgressHealthCheck {
	return &ProgressHealthCheck{
		ticks:    ticks,
		stall:    stall,
		now:      time.Now,
		lastSeen: time.Now(),
	}
}

func (p *ProgressHealthCheck) Name() string { return "progress" }

func (p *ProgressHealthCheck) Check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if t := p.ticks(); t != p.last {
		p.last = t
		p.lastSeen = now
		return nil
	}
	if idle := now.Sub(p.lastSeen); idle > p.stall {
		return fmt.Errorf("no tick for %s (stuck at %d)", idle.Round(time.Millisecond), p.last)
	}
	return nil
}

// FiniteStateHealthCheck fails once the sampled value, typically the total
// kinetic energy, stops being a finite number.
type FiniteStateHealthCheck struct {
	name   string
	sample func() float64
}

// NewFiniteStateHealthCheck creates a check named name over sample.
func NewFiniteStateHealthCheck(name string, sample func() float64) *FiniteStateHealthCheck {
	return &FiniteStateHealthCheck{name: name, sample: sample}
}

func (f *FiniteStateHealthCheck) Name() string { return f.name }

func (f *FiniteStateHealthCheck) Check(ctx context.Context) error {
	v := f.sample()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s is not finite: %v", f.name, v)
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

func (m *MemoryHealthCheck) Name() string { return "memory" }

func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
