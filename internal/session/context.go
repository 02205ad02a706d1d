package session

import (
	"context"

	"github.com/innofeed/innofeed/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession adds s to the context.
func ContextWithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext retrieves the session from the context.
// Returns nil if the request carries none.
func FromContext(ctx context.Context) *model.Session {
	s, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return s
}

// IdentityFromContext returns the identity of the current session.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	s := FromContext(ctx)
	if s == nil {
		return model.Identity{}, false
	}
	return s.Identity, true
}
