package auth

import (
	"context"

	"github.com/runeberget/krets/internal/model"
)

type contextKey struct{}

// Identity is the resolved (user, session) pair attached to authenticated
// requests.
type Identity struct {
	User    *model.User
	Session *model.Session
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.User != nil
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	id, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return id.User.ID
}
