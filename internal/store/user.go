package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/token"
)

// ErrEmailTaken is returned when a write would violate the unique email
// constraint.
var ErrEmailTaken = errors.New("email already in use")

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var imageURL, currentRoleID sql.NullString
	var activeFrom, activeTo sql.NullTime

	err := scanner.Scan(
		&u.ID, &u.Name, &u.Email, &imageURL, &u.IsPublic,
		&activeFrom, &activeTo, &currentRoleID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageURL.Valid {
		u.ImageURL = &imageURL.String
	}
	if currentRoleID.Valid {
		u.CurrentRoleID = &currentRoleID.String
	}
	if activeFrom.Valid {
		t := activeFrom.Time
		u.ActiveFrom = &t
	}
	if activeTo.Valid {
		t := activeTo.Time
		u.ActiveTo = &t
	}
	return &u, nil
}

const userCols = `id, name, email, image_url, is_public, active_from, active_to, current_role_id, created_at, updated_at`

// NormalizeEmail lowercases and trims an address. All email writes and
// lookups go through this, which makes the unique constraint effectively
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueEmailErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "users.email")
}

func (s *UserStore) Create(name, email string) (*model.User, error) {
	id := token.NewID()
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email) VALUES (?, ?, ?)`,
		id, name, NormalizeEmail(email),
	)
	if isUniqueEmailErr(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, NormalizeEmail(email))
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// List returns all members ordered by name.
func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name          string
	Email         string
	IsPublic      bool
	ActiveFrom    *time.Time
	ActiveTo      *time.Time
	CurrentRoleID *string
}

func (s *UserStore) UpdateProfile(id string, p ProfileUpdate) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users
		 SET name = ?, email = ?, is_public = ?, active_from = ?, active_to = ?,
		     current_role_id = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		p.Name, NormalizeEmail(p.Email), p.IsPublic,
		nullTime(p.ActiveFrom), nullTime(p.ActiveTo), nullString(p.CurrentRoleID), id,
	)
	if isUniqueEmailErr(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) SetImageURL(id, imageURL string) error {
	_, err := s.db.Exec(
		`UPDATE users SET image_url = ?, updated_at = datetime('now') WHERE id = ?`,
		imageURL, id,
	)
	if err != nil {
		return fmt.Errorf("set image url: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
