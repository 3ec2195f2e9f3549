package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/runeberget/krets/internal/auth"
	"github.com/runeberget/krets/internal/database"
	"github.com/runeberget/krets/internal/store"
)

func setupAuthMiddleware(t *testing.T) (*auth.SessionManager, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewSessionManager(store.NewSessionStore(db), logger), store.NewUserStore(db)
}

func TestAuthenticateNoCookie(t *testing.T) {
	sm, _ := setupAuthMiddleware(t)

	var sawIdentity bool
	handler := Authenticate(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if sawIdentity {
		t.Error("anonymous request should carry no identity")
	}
}

func TestAuthenticateInvalidCookie(t *testing.T) {
	sm, _ := setupAuthMiddleware(t)

	handler := Authenticate(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); ok {
			t.Error("invalid cookie should not produce an identity")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-session"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	// Dead cookie gets cleared
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("stale session cookie should be cleared")
	}
}

func TestAuthenticateValidSession(t *testing.T) {
	sm, us := setupAuthMiddleware(t)

	u, err := us.Create("Alice", "a@b.no")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := sm.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotID auth.Identity
	handler := Authenticate(sm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected identity in request context")
		}
		gotID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotID.User.ID != u.ID {
		t.Errorf("user id = %q, want %q", gotID.User.ID, u.ID)
	}
	if gotID.Session.ID != sess.ID {
		t.Errorf("session id = %q, want %q", gotID.Session.ID, sess.ID)
	}
}

func TestRequireAuthAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthAuthenticated(t *testing.T) {
	sm, us := setupAuthMiddleware(t)

	u, _ := us.Create("Alice", "a@b.no")
	sess, _ := sm.Create(u.ID)

	handler := Authenticate(sm)(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
