package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	DomainsLoadSuccess     uint64
	DomainsLoadFailed      uint64
	FeedLoadSuccess        uint64
	FeedLoadFailed         uint64
	FeedStaleDiscarded     uint64
	PreferencesSaveSuccess uint64
	PreferencesSaveFailed  uint64
	BackendDurationCount   uint64
	BackendDurationTotalNs int64
	LoginSuccess           uint64
	LoginFailed            uint64
	RegisterSuccess        uint64
	RegisterFailed         uint64
	FeedsServed            uint64
	FeedItemsServed        uint64
	DomainsCacheHits       uint64
	DomainsCacheMisses     uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	domainsLoad     outcome
	feedLoad        outcome
	prefsSave       outcome
	login           outcome
	register        outcome
	staleDiscarded  atomic.Uint64
	backendCount    atomic.Uint64
	backendTotalNs  atomic.Int64
	feedsServed     atomic.Uint64
	feedItemsServed atomic.Uint64
	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
}

type outcome struct {
	success atomic.Uint64
	failed  atomic.Uint64
}

func (o *outcome) inc(status string) {
	if status == StatusSuccess {
		o.success.Add(1)
		return
	}
	o.failed.Add(1)
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		DomainsLoadSuccess:     m.domainsLoad.success.Load(),
		DomainsLoadFailed:      m.domainsLoad.failed.Load(),
		FeedLoadSuccess:        m.feedLoad.success.Load(),
		FeedLoadFailed:         m.feedLoad.failed.Load(),
		FeedStaleDiscarded:     m.staleDiscarded.Load(),
		PreferencesSaveSuccess: m.prefsSave.success.Load(),
		PreferencesSaveFailed:  m.prefsSave.failed.Load(),
		BackendDurationCount:   m.backendCount.Load(),
		BackendDurationTotalNs: m.backendTotalNs.Load(),
		LoginSuccess:           m.login.success.Load(),
		LoginFailed:            m.login.failed.Load(),
		RegisterSuccess:        m.register.success.Load(),
		RegisterFailed:         m.register.failed.Load(),
		FeedsServed:            m.feedsServed.Load(),
		FeedItemsServed:        m.feedItemsServed.Load(),
		DomainsCacheHits:       m.cacheHits.Load(),
		DomainsCacheMisses:     m.cacheMisses.Load(),
	}
}

// IncDomainsLoad counts a domain catalog load.
func (m *InMemoryRecorder) IncDomainsLoad(status string) { m.domainsLoad.inc(status) }

// IncFeedLoad counts a feed load.
func (m *InMemoryRecorder) IncFeedLoad(status string) { m.feedLoad.inc(status) }

// IncFeedStaleDiscarded counts a superseded feed result that was dropped.
func (m *InMemoryRecorder) IncFeedStaleDiscarded() { m.staleDiscarded.Add(1) }

// IncPreferencesSave counts a preference save.
func (m *InMemoryRecorder) IncPreferencesSave(status string) { m.prefsSave.inc(status) }

// ObserveBackendDuration records the duration of one backend call.
func (m *InMemoryRecorder) ObserveBackendDuration(duration time.Duration) {
	m.backendCount.Add(1)
	m.backendTotalNs.Add(duration.Nanoseconds())
}

// IncLogin counts a login attempt.
func (m *InMemoryRecorder) IncLogin(status string) { m.login.inc(status) }

// IncRegister counts a registration attempt.
func (m *InMemoryRecorder) IncRegister(status string) { m.register.inc(status) }

// IncFeedServed counts a feed response and its size.
func (m *InMemoryRecorder) IncFeedServed(items int) {
	m.feedsServed.Add(1)
	m.feedItemsServed.Add(uint64(items))
}

// IncDomainsCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncDomainsCacheHit() { m.cacheHits.Add(1) }

// IncDomainsCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncDomainsCacheMiss() { m.cacheMisses.Add(1) }
