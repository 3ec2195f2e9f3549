package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/token"
)

// magicLinkTTL is how long a login link stays usable.
const magicLinkTTL = 24 * time.Hour

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

func scanMagicLink(scanner interface{ Scan(...any) error }) (*model.MagicLink, error) {
	var ml model.MagicLink
	err := scanner.Scan(&ml.ID, &ml.UserID, &ml.ExpiresAt, &ml.CreatedAt, &ml.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ml, nil
}

const magicLinkCols = `id, user_id, expires_at, created_at, updated_at`

// Create inserts a new magic link owned by the user. The link ID is the
// token that ends up in the emailed URL.
func (s *MagicLinkStore) Create(userID string) (*model.MagicLink, error) {
	id, err := token.New()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(magicLinkTTL)

	_, err = s.db.Exec(
		`INSERT INTO magic_links (id, user_id, expires_at) VALUES (?, ?, ?)`,
		id, userID, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert magic link: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE id = ?`, id)
	ml, err := scanMagicLink(row)
	if err != nil {
		return nil, fmt.Errorf("read magic link: %w", err)
	}
	return ml, nil
}

func (s *MagicLinkStore) GetByID(id string) (*model.MagicLink, error) {
	row := s.db.QueryRow(`SELECT `+magicLinkCols+` FROM magic_links WHERE id = ?`, id)
	ml, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get magic link: %w", err)
	}
	return ml, nil
}

// Consume deletes the link and returns it, but only if it has not expired.
// The conditional DELETE ... RETURNING is a single statement, so of any
// number of concurrent callers exactly one receives the row; the rest get
// nil. Expired links are left in place for the cleanup sweep.
func (s *MagicLinkStore) Consume(id string, now time.Time) (*model.MagicLink, error) {
	row := s.db.QueryRow(
		`DELETE FROM magic_links WHERE id = ? AND expires_at > ? RETURNING `+magicLinkCols,
		id, now.UTC(),
	)
	ml, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consume magic link: %w", err)
	}
	return ml, nil
}

func (s *MagicLinkStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM magic_links WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
