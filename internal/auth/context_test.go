package auth

import (
	"context"
	"testing"

	"github.com/runeberget/krets/internal/model"
)

func TestIdentityContextRoundTrip(t *testing.T) {
	id := Identity{
		User:    &model.User{ID: "u1", Name: "Alice"},
		Session: &model.Session{ID: "s1", UserID: "u1"},
	}
	ctx := WithIdentity(context.Background(), id)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext returned !ok for populated context")
	}
	if got.User.ID != "u1" || got.Session.ID != "s1" {
		t.Errorf("identity = %+v, want user u1 / session s1", got)
	}
	if UserID(ctx) != "u1" {
		t.Errorf("UserID = %q, want u1", UserID(ctx))
	}
}

func TestIdentityContextAnonymous(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("FromContext should return !ok for a bare context")
	}
	if UserID(ctx) != "" {
		t.Error("UserID should be empty for a bare context")
	}

	// An identity without a user is still anonymous.
	ctx = WithIdentity(ctx, Identity{})
	if _, ok := FromContext(ctx); ok {
		t.Error("FromContext should return !ok for an empty identity")
	}
}
