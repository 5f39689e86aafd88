package auth

import (
	"context"
	"time"
)

// Session is the verified identity of the caller.
// It is built only from a token that passed Verify.
type Session struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing Session.
	sessionContextKey contextKey = "session"
)

// ContextWithSession adds Session to the context.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves Session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *Session {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// MustSessionFromContext retrieves Session from the context.
// Panics if not present (use only when the session middleware has run).
func MustSessionFromContext(ctx context.Context) *Session {
	session := SessionFromContext(ctx)
	if session == nil {
		panic("session not found - ensure session middleware is applied")
	}
	return session
}
