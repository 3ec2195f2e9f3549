package store

import (
	"database/sql"
	"fmt"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/token"
)

type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *sql.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

func scanAttendance(scanner interface{ Scan(...any) error }) (*model.Attendance, error) {
	var a model.Attendance
	err := scanner.Scan(&a.ID, &a.UserID, &a.MeetingID, &a.StatusID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const attendanceCols = `id, user_id, meeting_id, status_id, created_at, updated_at`

// Set records the member's status for a meeting, replacing any previous
// record for the same (user, meeting) pair.
func (s *AttendanceStore) Set(userID, meetingID, statusID string) (*model.Attendance, error) {
	id := token.NewID()
	_, err := s.db.Exec(
		`INSERT INTO attendance (id, user_id, meeting_id, status_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, meeting_id)
		 DO UPDATE SET status_id = excluded.status_id, updated_at = datetime('now')`,
		id, userID, meetingID, statusID,
	)
	if err != nil {
		return nil, fmt.Errorf("set attendance: %w", err)
	}
	return s.Get(userID, meetingID)
}

func (s *AttendanceStore) Get(userID, meetingID string) (*model.Attendance, error) {
	row := s.db.QueryRow(
		`SELECT `+attendanceCols+` FROM attendance WHERE user_id = ? AND meeting_id = ?`,
		userID, meetingID,
	)
	a, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return a, nil
}

// ListAll returns every attendance record, for building the schedule grid.
func (s *AttendanceStore) ListAll() ([]model.Attendance, error) {
	rows, err := s.db.Query(`SELECT ` + attendanceCols + ` FROM attendance`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var records []model.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, *a)
	}
	return records, rows.Err()
}

// UserAttendance is one row of a member's meeting history.
type UserAttendance struct {
	Meeting model.Meeting          `json:"meeting"`
	Status  model.AttendanceStatus `json:"status"`
}

// ListRecentByUser returns the member's attendance joined with meeting and
// status, most recent meetings first.
func (s *AttendanceStore) ListRecentByUser(userID string, limit int) ([]UserAttendance, error) {
	rows, err := s.db.Query(
		`SELECT m.id, m.title, m.description, m.start_time, m.end_time, m.created_at, m.updated_at,
		        st.id, st.name, st.created_at, st.updated_at
		 FROM attendance a
		 INNER JOIN meetings m ON m.id = a.meeting_id
		 INNER JOIN attendance_status st ON st.id = a.status_id
		 WHERE a.user_id = ?
		 ORDER BY m.start_time DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent attendance: %w", err)
	}
	defer rows.Close()

	var records []UserAttendance
	for rows.Next() {
		var ua UserAttendance
		var description sql.NullString
		err := rows.Scan(
			&ua.Meeting.ID, &ua.Meeting.Title, &description, &ua.Meeting.StartTime, &ua.Meeting.EndTime,
			&ua.Meeting.CreatedAt, &ua.Meeting.UpdatedAt,
			&ua.Status.ID, &ua.Status.Name, &ua.Status.CreatedAt, &ua.Status.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recent attendance: %w", err)
		}
		if description.Valid {
			ua.Meeting.Description = &description.String
		}
		records = append(records, ua)
	}
	return records, rows.Err()
}

// ListStatuses returns the available attendance statuses.
func (s *AttendanceStore) ListStatuses() ([]model.AttendanceStatus, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at, updated_at FROM attendance_status ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	defer rows.Close()

	var statuses []model.AttendanceStatus
	for rows.Next() {
		var st model.AttendanceStatus
		if err := rows.Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

func (s *AttendanceStore) GetStatusByID(id string) (*model.AttendanceStatus, error) {
	var st model.AttendanceStatus
	err := s.db.QueryRow(
		`SELECT id, name, created_at, updated_at FROM attendance_status WHERE id = ?`, id,
	).Scan(&st.ID, &st.Name, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	return &st, nil
}
