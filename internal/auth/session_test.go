package auth

import (
	"database/sql"
	"testing"
	"time"

	"github.com/runeberget/krets/internal/database"
	"github.com/runeberget/krets/internal/store"
)

func setupSessionManager(t *testing.T) (*SessionManager, *store.UserStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewSessionManager(store.NewSessionStore(db), discardLogger()),
		store.NewUserStore(db),
		db
}

func backdateSession(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	past := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Exec(`UPDATE sessions SET expires_at = ? WHERE id = ?`, past, id); err != nil {
		t.Fatalf("backdate session: %v", err)
	}
}

func TestSessionCreateAndValidate(t *testing.T) {
	mgr, us, _ := setupSessionManager(t)

	u, err := us.Create("Alice", "a@b.no")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	sess, err := mgr.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.ID) != 64 {
		t.Errorf("session id length = %d, want 64", len(sess.ID))
	}

	user, got := mgr.Validate(sess.ID)
	if user == nil || got == nil {
		t.Fatal("validate returned nil for a fresh session")
	}
	if user.ID != u.ID {
		t.Errorf("user id = %q, want %q", user.ID, u.ID)
	}
	if got.ID != sess.ID {
		t.Errorf("session id = %q, want %q", got.ID, sess.ID)
	}
}

func TestSessionValidateFailsClosed(t *testing.T) {
	mgr, us, db := setupSessionManager(t)

	u, _ := us.Create("Alice", "a@b.no")
	sess, _ := mgr.Create(u.ID)

	if user, got := mgr.Validate(""); user != nil || got != nil {
		t.Error("empty session id should validate to nil")
	}

	if user, got := mgr.Validate("not-a-session"); user != nil || got != nil {
		t.Error("unknown session id should validate to nil")
	}

	backdateSession(t, db, sess.ID)
	if user, got := mgr.Validate(sess.ID); user != nil || got != nil {
		t.Error("expired session should validate to nil")
	}
}

func TestSessionTerminate(t *testing.T) {
	mgr, us, _ := setupSessionManager(t)

	u, _ := us.Create("Alice", "a@b.no")
	sess, _ := mgr.Create(u.ID)

	if err := mgr.Terminate(sess.ID); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if user, got := mgr.Validate(sess.ID); user != nil || got != nil {
		t.Error("terminated session should validate to nil")
	}

	// Terminating again, or terminating an unknown session, is a no-op.
	if err := mgr.Terminate(sess.ID); err != nil {
		t.Errorf("repeat terminate: %v", err)
	}
	if err := mgr.Terminate("not-a-session"); err != nil {
		t.Errorf("terminate unknown: %v", err)
	}
}

func TestSessionCleanupExpired(t *testing.T) {
	mgr, us, db := setupSessionManager(t)

	u, _ := us.Create("Alice", "a@b.no")
	fresh, _ := mgr.Create(u.ID)
	stale, _ := mgr.Create(u.ID)

	backdateSession(t, db, stale.ID)

	count, err := mgr.CleanupExpired()
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if count != 1 {
		t.Errorf("swept = %d, want 1", count)
	}

	if user, _ := mgr.Validate(fresh.ID); user == nil {
		t.Error("fresh session should survive the sweep")
	}
}
