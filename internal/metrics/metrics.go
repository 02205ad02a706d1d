// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by the counters below.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Web client: feed synchronization
	// status: "success" or "failed"
	IncDomainsLoad(status string)
	IncFeedLoad(status string)
	IncPreferencesSave(status string)
	// IncFeedStaleDiscarded counts late results of superseded feed requests.
	IncFeedStaleDiscarded()
	ObserveBackendDuration(duration time.Duration)

	// Web client: auth screen
	IncLogin(status string)
	IncRegister(status string)

	// Backend API
	IncFeedServed(items int)
	IncDomainsCacheHit()
	IncDomainsCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
