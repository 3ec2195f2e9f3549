package model

import "time"

// AttendanceStatus is one of the seeded status rows (attending, attended,
// absent). Statuses are data, not an enum, so new ones can be added without
// a code change.
type AttendanceStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attendance records one member's status for one meeting. A (user, meeting)
// pair has at most one record; writes upsert.
type Attendance struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MeetingID string    `json:"meeting_id"`
	StatusID  string    `json:"status_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
