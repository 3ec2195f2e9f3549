package store

import (
	"errors"
	"testing"

	"github.com/runeberget/krets/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Error("expected non-empty id")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.ImageURL != nil {
		t.Errorf("image_url = %v, want nil", u.ImageURL)
	}
}

func TestUserCreateNormalizesEmail(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("Alice", "  Alice@Example.COM ")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized %q", u.Email, "alice@example.com")
	}

	got, err := us.GetByEmail("ALICE@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Error("expected case-insensitive email lookup to find the user")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("Alice", "alice@example.com"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := us.Create("Other Alice", "ALICE@example.com")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByEmail("ghost@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserList(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Charlie", "charlie@example.com")
	us.Create("Alice", "alice@example.com")
	us.Create("Bob", "bob@example.com")

	users, err := us.List()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	if users[0].Name != "Alice" || users[2].Name != "Charlie" {
		t.Errorf("users not ordered by name: %q, %q, %q", users[0].Name, users[1].Name, users[2].Name)
	}
}

func TestUserUpdateProfile(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("Alice", "alice@example.com")

	updated, err := us.UpdateProfile(u.ID, ProfileUpdate{
		Name:     "Alice Berg",
		Email:    "alice.berg@example.com",
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Name != "Alice Berg" {
		t.Errorf("name = %q, want %q", updated.Name, "Alice Berg")
	}
	if updated.Email != "alice.berg@example.com" {
		t.Errorf("email = %q, want %q", updated.Email, "alice.berg@example.com")
	}
	if !updated.IsPublic {
		t.Error("expected is_public true")
	}
}

func TestUserUpdateProfileEmailConflict(t *testing.T) {
	us := setupUserTestDB(t)

	us.Create("Alice", "alice@example.com")
	bob, _ := us.Create("Bob", "bob@example.com")

	_, err := us.UpdateProfile(bob.ID, ProfileUpdate{Name: "Bob", Email: "alice@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserSetImageURL(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("Alice", "alice@example.com")

	if err := us.SetImageURL(u.ID, "/api/images/user-abc.png"); err != nil {
		t.Fatalf("set image url: %v", err)
	}

	got, _ := us.GetByID(u.ID)
	if got.ImageURL == nil || *got.ImageURL != "/api/images/user-abc.png" {
		t.Errorf("image_url = %v, want /api/images/user-abc.png", got.ImageURL)
	}
}
