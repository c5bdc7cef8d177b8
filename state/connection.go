package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aki307/frext/model"
)

const DefaultPollInterval = 30 * time.Second

type HealthChecker interface {
	TestConnection(ctx context.Context) *model.APIResponse[model.HealthStatus]
}

// ConnectionMonitor polls the health endpoint on a fixed interval and on
// Focus. There is no backoff.
type ConnectionMonitor struct {
	api      HealthChecker
	interval time.Duration
	logger   *slog.Logger
	focus    chan struct{}

	mu        sync.RWMutex
	connected bool
	checked   bool
	subs      listeners[bool]
}

func NewConnectionMonitor(api HealthChecker, interval time.Duration, logger *slog.Logger) *ConnectionMonitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionMonitor{
		api:      api,
		interval: interval,
		logger:   logger,
		focus:    make(chan struct{}, 1),
	}
}

// Check runs one health check and records the result.
func (m *ConnectionMonitor) Check(ctx context.Context) bool {
	resp := m.api.TestConnection(ctx)
	ok := resp.Success

	m.mu.Lock()
	changed := !m.checked || m.connected != ok
	m.connected = ok
	m.checked = true
	m.mu.Unlock()

	if changed {
		m.logger.Info("connection.changed", "connected", ok, "error", resp.Error)
		m.subs.emit(ok)
	}
	return ok
}

// Run checks immediately, then on every tick and every Focus, until ctx ends.
func (m *ConnectionMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		case <-m.focus:
			m.Check(ctx)
		}
	}
}

// Focus requests an immediate check, the way regaining window focus does.
func (m *ConnectionMonitor) Focus() {
	select {
	case m.focus <- struct{}{}:
	default:
	}
}

func (m *ConnectionMonitor) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// OnChange registers fn for connectivity transitions, including the first check.
func (m *ConnectionMonitor) OnChange(fn func(connected bool)) (unsubscribe func()) {
	return m.subs.add(fn)
}
