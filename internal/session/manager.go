package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/innofeed/innofeed/internal/model"
)

// CookieName is the name of the session cookie.
const CookieName = "innofeed_session"

// Manager issues, resolves and ends cookie-backed sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	logger *slog.Logger
	now    func() time.Time

	onExpire func(sessionID string)
}

// NewManager creates a Manager over store.
func NewManager(store Store, ttl time.Duration, secure bool, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		secure: secure,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

// Start creates a session for identity and sets its cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, identity model.Identity) (model.Session, error) {
	s := NewSession(identity, m.now())
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return model.Session{}, fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, m.cookie(s.ID, int(m.ttl.Seconds())))
	m.logger.InfoContext(ctx, "session started", "user_id", identity.UserID)
	return s, nil
}

// OnExpire registers fn to run when a request carries the cookie of a
// session the store no longer has. Call it before serving.
func (m *Manager) OnExpire(fn func(sessionID string)) {
	m.onExpire = fn
}

// Discard deletes the session with id without touching cookies.
func (m *Manager) Discard(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.WarnContext(ctx, "failed to delete session", "error", err)
	}
}

// End deletes the request's session, if any, and clears the cookie.
// It returns the ended session ID, or "" when there was none.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) string {
	http.SetCookie(w, m.cookie("", -1))

	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	m.Discard(r.Context(), c.Value)
	return c.Value
}

// Load resolves the request's session.
func (m *Manager) Load(r *http.Request) (*model.Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNotFound
	}

	s, err := m.store.Get(r.Context(), c.Value)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Middleware attaches the request's session, when it has one, to the
// request context. A cookie naming an unknown or expired session is cleared
// and reported to the OnExpire hook. Store failures are logged and treated
// as no session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r)
		switch {
		case err == nil:
			r = r.WithContext(ContextWithSession(r.Context(), s))
		case errors.Is(err, ErrNotFound):
			if c, cerr := r.Cookie(CookieName); cerr == nil && c.Value != "" {
				http.SetCookie(w, m.cookie("", -1))
				if m.onExpire != nil {
					m.onExpire(c.Value)
				}
			}
		default:
			m.logger.ErrorContext(r.Context(), "failed to load session", "error", err)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
