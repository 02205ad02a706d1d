package feedsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/model"
)

// Registry holds the mounted Pages of this process, keyed by session ID.
type Registry struct {
	backend Backend
	logger  *slog.Logger
	metrics metrics.Recorder

	mu    sync.Mutex
	pages map[string]*mountedPage
	now   func() time.Time
}

type mountedPage struct {
	page     *Page
	lastSeen time.Time
}

// NewRegistry creates an empty Registry whose Pages share backend.
func NewRegistry(backend Backend, logger *slog.Logger, recorder metrics.Recorder) *Registry {
	return &Registry{
		backend: backend,
		logger:  logger,
		metrics: recorder,
		pages:   make(map[string]*mountedPage),
		now:     time.Now,
	}
}

// Get returns the Page mounted for sessionID.
func (r *Registry) Get(sessionID string) (*Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.pages[sessionID]
	if !ok {
		return nil, false
	}
	m.lastSeen = r.now()
	return m.page, true
}

// Mount returns the Page for sessionID, creating and mounting it first when
// none exists. Concurrent callers for the same session share one Page.
func (r *Registry) Mount(ctx context.Context, sessionID string, identity model.Identity) *Page {
	r.mu.Lock()
	m, ok := r.pages[sessionID]
	if !ok {
		m = &mountedPage{page: NewPage(&identity, r.backend, r.logger, r.metrics)}
		r.pages[sessionID] = m
	}
	m.lastSeen = r.now()
	p := m.page
	r.mu.Unlock()

	if !ok {
		r.logger.InfoContext(ctx, "feed screen mounted", "user_id", identity.UserID)
	}
	p.Mount(ctx)
	return p
}

// Unmount drops the Page of sessionID. In-flight loads finish against the
// detached Page and are never rendered.
func (r *Registry) Unmount(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pages, sessionID)
}

// Sweep unmounts every Page not used for idle and returns how many it
// dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	removed := 0
	for id, m := range r.pages {
		if m.lastSeen.Before(cutoff) {
			delete(r.pages, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of mounted Pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}
