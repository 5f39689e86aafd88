// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by the auth and upstream counters.
const (
	StatusSuccess  = "success"
	StatusInvalid  = "invalid"
	StatusConflict = "conflict"
	StatusError    = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncRegistration(status string) // status: "success", "invalid", "conflict", "error"
	IncLogin(status string)        // status: "success", "invalid", "error"

	// Upstream aggregation metrics
	ObserveUpstreamFetch(provider, status string, duration time.Duration)
	IncUpstreamUnitDropped(provider string)
}
