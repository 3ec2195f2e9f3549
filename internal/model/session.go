package model

import "time"

// Session is a standing credential. The ID doubles as the bearer token
// stored in the client cookie, so it is generated with full token entropy.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MagicLink is a single-use login grant. As with sessions, the ID is the
// token itself; there is no separate secret.
type MagicLink struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
