package auth

import (
	"context"
	"testing"
)

func TestSessionContext_RoundTrip(t *testing.T) {
	t.Parallel()

	session := &Session{UserID: "user-1", Email: "u@example.com"}
	ctx := ContextWithSession(context.Background(), session)

	if got := SessionFromContext(ctx); got != session {
		t.Errorf("SessionFromContext() = %v, want %v", got, session)
	}
}

func TestSessionContext_Missing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if SessionFromContext(ctx) != nil {
		t.Error("expected nil session for empty context")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustSessionFromContext should panic without a session")
		}
	}()
	MustSessionFromContext(ctx)
}
