// Package web serves the InnoFeed browser client: the Auth screen for
// anonymous visitors and the Feed screen for signed-in users.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/innofeed/innofeed/internal/apiclient"
	"github.com/innofeed/innofeed/internal/feedsync"
	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/model"
	"github.com/innofeed/innofeed/internal/render"
	"github.com/innofeed/innofeed/internal/session"
	"github.com/innofeed/innofeed/internal/validation"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// AuthClient is the part of the backend client the Auth screen uses.
type AuthClient interface {
	Login(ctx context.Context, req apiclient.LoginRequest) (model.Identity, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error)
}

// Deps are the collaborators of Handler.
type Deps struct {
	Auth      AuthClient
	Sessions  *session.Manager
	Pages     *feedsync.Registry
	Validator *validation.Validator
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

// Handler serves the web client pages.
type Handler struct {
	auth      AuthClient
	sessions  *session.Manager
	pages     *feedsync.Registry
	validator *validation.Validator
	metrics   metrics.Recorder
	logger    *slog.Logger
	templates map[string]*template.Template
}

// New parses the page templates and returns a Handler.
func New(deps Deps) (*Handler, error) {
	templates, err := parsePages("auth", "feed")
	if err != nil {
		return nil, err
	}

	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}

	if deps.Sessions != nil && deps.Pages != nil {
		deps.Sessions.OnExpire(deps.Pages.Unmount)
	}

	return &Handler{
		auth:      deps.Auth,
		sessions:  deps.Sessions,
		pages:     deps.Pages,
		validator: v,
		metrics:   recorder,
		logger:    deps.Logger.With("component", "web"),
		templates: templates,
	}, nil
}

// Routes registers the page routes on r. The session middleware must run
// before them.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.AuthPage)
	r.Get("/register", h.RegisterPage)
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)

	r.Get("/feed", h.FeedPage)
	r.Post("/feed/domains/{domainId}/toggle", h.ToggleDomain)
	r.Post("/feed/preferences", h.SavePreferences)
}

// Static serves the embedded stylesheet.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets: %v", err))
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func parsePages(names ...string) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base, err := render.Templates()
		if err != nil {
			return nil, err
		}
		tmpl, err := base.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// renderPage executes a page into a buffer first so a template failure
// never leaves a half-written response.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
