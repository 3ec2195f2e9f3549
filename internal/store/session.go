package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/token"
)

// sessionTTL is how long a session stays valid after login.
const sessionTTL = 30 * 24 * time.Hour

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var sess model.Session
	err := scanner.Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

const sessionCols = `id, user_id, expires_at, created_at, updated_at`

// Create inserts a session for the user. The returned session ID is the
// bearer token handed to the client.
func (s *SessionStore) Create(userID string) (*model.Session, error) {
	id, err := token.New()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(sessionTTL)

	_, err = s.db.Exec(
		`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`,
		id, userID, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return sess, nil
}

// GetValid returns the session and its owning user if the session exists and
// has not expired, or nil for both otherwise. Missing and expired sessions
// are indistinguishable to the caller.
func (s *SessionStore) GetValid(id string) (*model.User, *model.Session, error) {
	row := s.db.QueryRow(
		`SELECT s.id, s.user_id, s.expires_at, s.created_at, s.updated_at,
		        u.id, u.name, u.email, u.image_url, u.is_public,
		        u.active_from, u.active_to, u.current_role_id, u.created_at, u.updated_at
		 FROM sessions s
		 INNER JOIN users u ON u.id = s.user_id
		 WHERE s.id = ? AND s.expires_at > ?`,
		id, time.Now().UTC(),
	)

	var sess model.Session
	var u model.User
	var imageURL, currentRoleID sql.NullString
	var activeFrom, activeTo sql.NullTime

	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt, &sess.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &imageURL, &u.IsPublic,
		&activeFrom, &activeTo, &currentRoleID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get valid session: %w", err)
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
	return &u, &sess, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *SessionStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
