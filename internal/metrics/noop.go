package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(status string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// ObserveUpstreamFetch is a no-op.
func (n *NoopRecorder) ObserveUpstreamFetch(provider, status string, duration time.Duration) {}

// IncUpstreamUnitDropped is a no-op.
func (n *NoopRecorder) IncUpstreamUnitDropped(provider string) {}
