package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncDomainsLoad(status string)                  {}
func (n *NoopRecorder) IncFeedLoad(status string)                     {}
func (n *NoopRecorder) IncFeedStaleDiscarded()                        {}
func (n *NoopRecorder) IncPreferencesSave(status string)              {}
func (n *NoopRecorder) ObserveBackendDuration(duration time.Duration) {}
func (n *NoopRecorder) IncLogin(status string)                        {}
func (n *NoopRecorder) IncRegister(status string)                     {}
func (n *NoopRecorder) IncFeedServed(items int)                       {}
func (n *NoopRecorder) IncDomainsCacheHit()                           {}
func (n *NoopRecorder) IncDomainsCacheMiss()                          {}
