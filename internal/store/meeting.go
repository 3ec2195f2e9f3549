package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/token"
)

type MeetingStore struct {
	db *sql.DB
}

func NewMeetingStore(db *sql.DB) *MeetingStore {
	return &MeetingStore{db: db}
}

func scanMeeting(scanner interface{ Scan(...any) error }) (*model.Meeting, error) {
	var m model.Meeting
	var description sql.NullString

	err := scanner.Scan(&m.ID, &m.Title, &description, &m.StartTime, &m.EndTime, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		m.Description = &description.String
	}
	return &m, nil
}

const meetingCols = `id, title, description, start_time, end_time, created_at, updated_at`

func (s *MeetingStore) Create(title, description string, startTime, endTime time.Time) (*model.Meeting, error) {
	id := token.NewID()

	var desc sql.NullString
	if description != "" {
		desc = sql.NullString{String: description, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO meetings (id, title, description, start_time, end_time) VALUES (?, ?, ?, ?, ?)`,
		id, title, desc, startTime.UTC(), endTime.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}
	return s.GetByID(id)
}

func (s *MeetingStore) GetByID(id string) (*model.Meeting, error) {
	row := s.db.QueryRow(`SELECT `+meetingCols+` FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

// List returns all meetings ordered by start time.
func (s *MeetingStore) List() ([]model.Meeting, error) {
	rows, err := s.db.Query(`SELECT ` + meetingCols + ` FROM meetings ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []model.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}

// NextUpcoming returns the first meeting starting after now, or nil if none.
func (s *MeetingStore) NextUpcoming(now time.Time) (*model.Meeting, error) {
	row := s.db.QueryRow(
		`SELECT `+meetingCols+` FROM meetings WHERE start_time > ? ORDER BY start_time LIMIT 1`,
		now.UTC(),
	)
	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next upcoming meeting: %w", err)
	}
	return m, nil
}
