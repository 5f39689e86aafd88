package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registrations   map[string]uint64
	Logins          map[string]uint64
	UpstreamFetches map[string]uint64 // keyed by "provider/status"
	UpstreamTotalNs int64
	DroppedUnits    map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu              sync.Mutex
	registrations   map[string]uint64
	logins          map[string]uint64
	upstreamFetches map[string]uint64
	upstreamTotalNs int64
	droppedUnits    map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		registrations:   make(map[string]uint64),
		logins:          make(map[string]uint64),
		upstreamFetches: make(map[string]uint64),
		droppedUnits:    make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Registrations:   copyCounts(m.registrations),
		Logins:          copyCounts(m.logins),
		UpstreamFetches: copyCounts(m.upstreamFetches),
		UpstreamTotalNs: m.upstreamTotalNs,
		DroppedUnits:    copyCounts(m.droppedUnits),
	}
}

// IncRegistration increments the registration counter for status.
func (m *InMemoryRecorder) IncRegistration(status string) {
	m.mu.Lock()
	m.registrations[status]++
	m.mu.Unlock()
}

// IncLogin increments the login counter for status.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.mu.Lock()
	m.logins[status]++
	m.mu.Unlock()
}

// ObserveUpstreamFetch records one upstream call.
func (m *InMemoryRecorder) ObserveUpstreamFetch(provider, status string, duration time.Duration) {
	m.mu.Lock()
	m.upstreamFetches[provider+"/"+status]++
	m.upstreamTotalNs += duration.Nanoseconds()
	m.mu.Unlock()
}

// IncUpstreamUnitDropped increments the dropped unit counter for provider.
func (m *InMemoryRecorder) IncUpstreamUnitDropped(provider string) {
	m.mu.Lock()
	m.droppedUnits[provider]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
