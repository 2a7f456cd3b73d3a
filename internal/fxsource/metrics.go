package fxsource

import (
	"sort"
	"sync"
	"time"
)

// SourceMetrics holds running counters for one rate source
type SourceMetrics struct {
	Source       string
	Attempts     int
	Successes    int
	Failures     int
	LastSuccess  time.Time
	LastFailure  time.Time
	LastError    string
	LastDuration time.Duration
}

// MetricsCollector collects fetch outcomes per source
type MetricsCollector struct {
	mu      sync.RWMutex
	sources map[string]*SourceMetrics
}

// NewMetricsCollector creates a new MetricsCollector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{sources: make(map[string]*SourceMetrics)}
}

func (mc *MetricsCollector) entry(source string) *SourceMetrics {
	m, ok := mc.sources[source]
	if !ok {
		m = &SourceMetrics{Source: source}
		mc.sources[source] = m
	}
	return m
}

// RecordSuccess records a successful fetch
func (mc *MetricsCollector) RecordSuccess(source string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	m := mc.entry(source)
	m.Attempts++
	m.Successes++
	m.LastSuccess = time.Now()
	m.LastDuration = duration
}

// RecordFailure records a failed fetch
func (mc *MetricsCollector) RecordFailure(source string, duration time.Duration, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	m := mc.entry(source)
	m.Attempts++
	m.Failures++
	m.LastFailure = time.Now()
	m.LastDuration = duration
	if err != nil {
		m.LastError = err.Error()
	}
}

// Snapshot returns a copy of every source's metrics, sorted by source name.
func (mc *MetricsCollector) Snapshot() []SourceMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]SourceMetrics, 0, len(mc.sources))
	for _, m := range mc.sources {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Source < result[j].Source })
	return result
}

// HealthStatus represents the health of the rate sources
type HealthStatus struct {
	Healthy          bool              `json:"healthy"`
	TotalSources     int               `json:"total_sources"`
	HealthySources   int               `json:"healthy_sources"`
	UnhealthySources []string          `json:"unhealthy_sources,omitempty"`
	SourceStatuses   map[string]string `json:"source_statuses"`
}

// GetHealthStatus treats a source as healthy when its most recent outcome was
// a success. The system is healthy when at least one source is.
func (mc *MetricsCollector) GetHealthStatus() HealthStatus {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	status := HealthStatus{
		TotalSources:   len(mc.sources),
		SourceStatuses: make(map[string]string, len(mc.sources)),
	}

	for name, m := range mc.sources {
		switch {
		case m.Successes > 0 && !m.LastSuccess.Before(m.LastFailure):
			status.HealthySources++
			status.SourceStatuses[name] = "healthy"
		case m.Attempts == 0:
			status.SourceStatuses[name] = "unknown"
		default:
			status.UnhealthySources = append(status.UnhealthySources, name)
			status.SourceStatuses[name] = "failing: " + m.LastError
		}
	}
	sort.Strings(status.UnhealthySources)
	status.Healthy = status.HealthySources > 0
	return status
}
