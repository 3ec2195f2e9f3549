package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/token"
)

type RoleStore struct {
	db *sql.DB
}

func NewRoleStore(db *sql.DB) *RoleStore {
	return &RoleStore{db: db}
}

func scanRole(scanner interface{ Scan(...any) error }) (*model.Role, error) {
	var r model.Role
	var description sql.NullString

	err := scanner.Scan(&r.ID, &r.Name, &description, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		r.Description = &description.String
	}
	return &r, nil
}

const roleCols = `id, name, description, created_at, updated_at`

func (s *RoleStore) Create(name, description string) (*model.Role, error) {
	id := token.NewID()

	var desc sql.NullString
	if description != "" {
		desc = sql.NullString{String: description, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO roles (id, name, description) VALUES (?, ?, ?)`,
		id, name, desc,
	)
	if err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return s.GetByID(id)
}

func (s *RoleStore) GetByID(id string) (*model.Role, error) {
	row := s.db.QueryRow(`SELECT `+roleCols+` FROM roles WHERE id = ?`, id)
	r, err := scanRole(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return r, nil
}

func (s *RoleStore) List() ([]model.Role, error) {
	rows, err := s.db.Query(`SELECT ` + roleCols + ` FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, *r)
	}
	return roles, rows.Err()
}

// RoleHistoryEntry pairs a history interval with the role it refers to.
type RoleHistoryEntry struct {
	Role     model.Role     `json:"role"`
	UserRole model.UserRole `json:"user_role"`
}

// HistoryForUser returns the member's role history, newest interval first.
func (s *RoleStore) HistoryForUser(userID string) ([]RoleHistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.name, r.description, r.created_at, r.updated_at,
		        ur.id, ur.user_id, ur.role_id, ur.start_date, ur.end_date, ur.created_at
		 FROM user_roles ur
		 INNER JOIN roles r ON r.id = ur.role_id
		 WHERE ur.user_id = ?
		 ORDER BY ur.start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("role history: %w", err)
	}
	defer rows.Close()

	var history []RoleHistoryEntry
	for rows.Next() {
		var e RoleHistoryEntry
		var description sql.NullString
		var endDate sql.NullTime
		err := rows.Scan(
			&e.Role.ID, &e.Role.Name, &description, &e.Role.CreatedAt, &e.Role.UpdatedAt,
			&e.UserRole.ID, &e.UserRole.UserID, &e.UserRole.RoleID,
			&e.UserRole.StartDate, &endDate, &e.UserRole.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan role history: %w", err)
		}
		if description.Valid {
			e.Role.Description = &description.String
		}
		if endDate.Valid {
			t := endDate.Time
			e.UserRole.EndDate = &t
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// CloseOpenInterval ends the member's current interval for the given role.
// A member with no open interval is left untouched.
func (s *RoleStore) CloseOpenInterval(userID, roleID string, end time.Time) error {
	_, err := s.db.Exec(
		`UPDATE user_roles SET end_date = ? WHERE user_id = ? AND role_id = ? AND end_date IS NULL`,
		end.UTC(), userID, roleID,
	)
	if err != nil {
		return fmt.Errorf("close role interval: %w", err)
	}
	return nil
}

// OpenInterval starts a new history interval for the member.
func (s *RoleStore) OpenInterval(userID, roleID string, start time.Time) (*model.UserRole, error) {
	id := token.NewID()
	_, err := s.db.Exec(
		`INSERT INTO user_roles (id, user_id, role_id, start_date) VALUES (?, ?, ?, ?)`,
		id, userID, roleID, start.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("open role interval: %w", err)
	}

	var ur model.UserRole
	var endDate sql.NullTime
	err = s.db.QueryRow(
		`SELECT id, user_id, role_id, start_date, end_date, created_at FROM user_roles WHERE id = ?`, id,
	).Scan(&ur.ID, &ur.UserID, &ur.RoleID, &ur.StartDate, &endDate, &ur.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("read role interval: %w", err)
	}
	if endDate.Valid {
		t := endDate.Time
		ur.EndDate = &t
	}
	return &ur, nil
}
