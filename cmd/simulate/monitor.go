// cmd/simulate/monitor.go
package main

import (
	"sync"

	"github.com/opd-ai/go-physics2d/pkg/scenario"
)

// monitor copies scene stats out of the simulation goroutine for the health
// checks, which run on HTTP goroutines.
type monitor struct {
	mu     sync.RWMutex
	active bool
	stats  scenario.Stats
}

func newMonitor() *monitor {
	return &monitor{}
}

func (m *monitor) start(stats scenario.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = true
	m.stats = stats
}

func (m *monitor) update(stats scenario.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
}

func (m *monitor) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
}

func (m *monitor) running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *monitor) ticks() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.Ticks
}

func (m *monitor) kinetic() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.Kinetic
}
