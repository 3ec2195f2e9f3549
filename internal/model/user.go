package model

import "time"

type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	ImageURL      *string    `json:"image_url,omitempty"`
	IsPublic      bool       `json:"is_public"`
	ActiveFrom    *time.Time `json:"active_from,omitempty"`
	ActiveTo      *time.Time `json:"active_to,omitempty"`
	CurrentRoleID *string    `json:"current_role_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
