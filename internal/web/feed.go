package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/innofeed/innofeed/internal/feedsync"
	"github.com/innofeed/innofeed/internal/render"
	"github.com/innofeed/innofeed/internal/session"
)

type domainView struct {
	ID       int64
	Name     string
	Selected bool
}

type feedView struct {
	Greeting string
	Domains  []domainView
	Items    []render.Item
	Loading  bool
	Error    string
	Notice   string
}

func newFeedView(state feedsync.State, locale render.Locale) feedView {
	domains := make([]domainView, 0, len(state.Domains))
	for _, d := range state.Domains {
		domains = append(domains, domainView{ID: d.ID, Name: d.Name, Selected: state.IsSelected(d.ID)})
	}
	return feedView{
		Greeting: state.Identity.Greeting(),
		Domains:  domains,
		Items:    render.NewItems(state.Feed, locale),
		Loading:  state.Loading,
		Error:    state.Error,
		Notice:   state.Notice,
	}
}

// page returns the Feed screen of the request's session, mounting one when
// the session outlived it. ok is false when the request has no session.
//
// The Page outlives the request, so its loads run on a context that is not
// cancelled with it; the backend client's timeout bounds them.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) (*feedsync.Page, bool) {
	s := session.FromContext(r.Context())
	if s == nil {
		redirect(w, r, "/")
		return nil, false
	}
	if p, ok := h.pages.Get(s.ID); ok {
		return p, true
	}
	return h.pages.Mount(pageContext(r), s.ID, s.Identity), true
}

// FeedPage renders the Feed screen.
//
// GET /feed
func (h *Handler) FeedPage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	state := p.View()
	locale := render.LocaleFromAcceptLanguage(r.Header.Get("Accept-Language"))
	h.renderPage(w, r, http.StatusOK, "feed", newFeedView(state, locale))
}

// ToggleDomain flips one domain in the selection and reloads the feed.
//
// POST /feed/domains/{domainId}/toggle
func (h *Handler) ToggleDomain(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "domainId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid domain id", http.StatusBadRequest)
		return
	}

	p, ok := h.page(w, r)
	if !ok {
		return
	}

	p.ToggleDomain(pageContext(r), id)
	redirect(w, r, "/feed")
}

// SavePreferences stores the selection and reloads the feed.
//
// POST /feed/preferences
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	p.SavePreferences(pageContext(r))
	redirect(w, r, "/feed")
}

// pageContext keeps the request's values, such as its request ID, without
// its cancellation.
func pageContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
