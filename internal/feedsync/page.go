// Package feedsync keeps a user's domain selection and personalized feed in
// step with the backend. One Page exists per mounted Feed screen.
package feedsync

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/model"
)

// User-visible messages.
const (
	MsgDomainsFailed = "Could not load domains."
	MsgFeedFailed    = "Failed to fetch feed. Please check the backend connection."
	MsgSaveFailed    = "Failed to save preferences."
	MsgSaved         = "Preferences saved!"
)

// Backend is the subset of the API client a Page needs.
type Backend interface {
	Domains(ctx context.Context) ([]model.Domain, error)
	Feed(ctx context.Context, userID int64) ([]model.FeedItem, error)
	SetPreferences(ctx context.Context, userID int64, domainIDs []int64) error
}

// State is a point-in-time copy of a Page, safe to render.
type State struct {
	Identity    model.Identity
	Domains     []model.Domain
	SelectedIDs []int64
	Feed        []model.FeedItem
	Loading     bool
	Error       string
	Notice      string
}

// IsSelected reports whether id is in the selection.
func (s State) IsSelected(id int64) bool {
	return slices.Contains(s.SelectedIDs, id)
}

// Page holds the state of one Feed screen.
//
// Feed loads are numbered as they are issued. A finished load is applied,
// replacing the feed or setting the feed error and clearing the other, only
// when its number is newer than the last one applied.
//
// Domain, feed and save errors are kept apart and joined when rendered.
type Page struct {
	backend Backend
	logger  *slog.Logger
	metrics metrics.Recorder

	mu       sync.Mutex
	identity *model.Identity
	domains  []model.Domain
	selected []int64
	feed     []model.FeedItem
	loading  bool
	notice   string
	mounted  bool

	domainsErr string
	feedErr    string
	saveErr    string

	issued  uint64
	applied uint64
}

// NewPage creates a Page for identity. A nil identity yields a Page that
// never loads the feed.
func NewPage(identity *model.Identity, backend Backend, logger *slog.Logger, recorder metrics.Recorder) *Page {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	p := &Page{
		backend:  backend,
		logger:   logger.With("component", "feedsync"),
		metrics:  recorder,
		selected: []int64{},
		feed:     []model.FeedItem{},
	}
	if identity != nil {
		id := *identity
		p.identity = &id
		p.logger = p.logger.With("user_id", id.UserID)
	}
	return p
}

// Mount runs the initial domain and feed loads concurrently and returns once
// both finished. Only the first call does anything.
func (p *Page) Mount(ctx context.Context) {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	p.mu.Unlock()

	// Issued before the domain load starts so that issuing it does not clear
	// a domain failure.
	seq, userID, ok := p.beginFeedLoad()

	var wg sync.WaitGroup
	if ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.fetchFeed(ctx, seq, userID)
		}()
	}
	p.LoadDomains(ctx)
	wg.Wait()
}

// LoadDomains fetches the domain catalog. Failure leaves the catalog empty.
func (p *Page) LoadDomains(ctx context.Context) {
	domains, err := p.backend.Domains(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.logger.WarnContext(ctx, "failed to load domains", "error", err)
		p.metrics.IncDomainsLoad(metrics.StatusFailed)
		p.domains = nil
		p.domainsErr = MsgDomainsFailed
		return
	}

	p.metrics.IncDomainsLoad(metrics.StatusSuccess)
	p.domains = domains
	p.domainsErr = ""
}

// LoadFeed fetches the feed for the current identity and blocks until the
// response is applied or discarded. Without an identity it does nothing.
func (p *Page) LoadFeed(ctx context.Context) {
	seq, userID, ok := p.beginFeedLoad()
	if !ok {
		return
	}
	p.fetchFeed(ctx, seq, userID)
}

// ToggleDomain flips the membership of id in the selection and reloads.
func (p *Page) ToggleDomain(ctx context.Context, id int64) {
	p.mu.Lock()
	if i := slices.Index(p.selected, id); i >= 0 {
		p.selected = slices.Delete(p.selected, i, i+1)
	} else {
		p.selected = append(p.selected, id)
	}
	p.notice = ""
	p.mu.Unlock()

	p.LoadFeed(ctx)
}

// SavePreferences stores the whole selection on the backend. On success the
// feed is reloaded after the save returned; on failure nothing is reloaded.
func (p *Page) SavePreferences(ctx context.Context) {
	p.mu.Lock()
	if p.identity == nil {
		p.mu.Unlock()
		return
	}
	userID := p.identity.UserID
	ids := slices.Clone(p.selected)
	p.notice = ""
	p.mu.Unlock()

	if err := p.backend.SetPreferences(ctx, userID, ids); err != nil {
		p.logger.WarnContext(ctx, "failed to save preferences", "error", err)
		p.metrics.IncPreferencesSave(metrics.StatusFailed)

		p.mu.Lock()
		p.saveErr = MsgSaveFailed
		p.mu.Unlock()
		return
	}

	p.metrics.IncPreferencesSave(metrics.StatusSuccess)
	p.logger.InfoContext(ctx, "preferences saved", "domain_ids", ids)

	p.mu.Lock()
	p.saveErr = ""
	p.notice = MsgSaved
	p.mu.Unlock()

	p.LoadFeed(ctx)
}

// Snapshot returns a copy of the current state.
func (p *Page) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// View returns a copy of the current state and consumes the notice, so a
// confirmation is shown once.
func (p *Page) View() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.snapshotLocked()
	p.notice = ""
	return s
}

func (p *Page) snapshotLocked() State {
	s := State{
		Domains:     slices.Clone(p.domains),
		SelectedIDs: slices.Clone(p.selected),
		Feed:        slices.Clone(p.feed),
		Loading:     p.loading,
		Error:       joinErrors(p.domainsErr, p.saveErr, p.feedErr),
		Notice:      p.notice,
	}
	if p.identity != nil {
		s.Identity = *p.identity
	}
	return s
}

// beginFeedLoad numbers a new feed load, marks the page loading and clears
// every error. ok is false when there is no identity.
func (p *Page) beginFeedLoad() (seq uint64, userID int64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.identity == nil {
		return 0, 0, false
	}
	p.issued++
	p.loading = true
	p.domainsErr, p.feedErr, p.saveErr = "", "", ""
	return p.issued, p.identity.UserID, true
}

func (p *Page) fetchFeed(ctx context.Context, seq uint64, userID int64) {
	items, err := p.backend.Feed(ctx, userID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq == p.issued {
		p.loading = false
	}

	if seq <= p.applied {
		p.logger.DebugContext(ctx, "discarding stale feed result", "seq", seq, "applied", p.applied)
		p.metrics.IncFeedStaleDiscarded()
		return
	}
	p.applied = seq

	if err != nil {
		p.logger.WarnContext(ctx, "failed to load feed", "seq", seq, "error", err)
		p.metrics.IncFeedLoad(metrics.StatusFailed)
		p.feedErr = MsgFeedFailed
		return
	}

	p.metrics.IncFeedLoad(metrics.StatusSuccess)
	if items == nil {
		items = []model.FeedItem{}
	}
	p.feed = items
	p.feedErr = ""
}

func joinErrors(msgs ...string) string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m != "" {
			out = append(out, m)
		}
	}
	return strings.Join(out, " ")
}
