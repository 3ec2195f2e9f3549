package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/runeberget/krets/internal/auth"
	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/store"
	"github.com/runeberget/krets/internal/websocket"
)

const recentAttendanceLimit = 10

type ProfileHandler struct {
	users      *store.UserStore
	roles      *store.RoleStore
	attendance *store.AttendanceStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewProfileHandler(
	us *store.UserStore,
	rs *store.RoleStore,
	as *store.AttendanceStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *ProfileHandler {
	return &ProfileHandler{users: us, roles: rs, attendance: as, hub: hub, logger: logger}
}

// profileResponse is the full profile page payload.
type profileResponse struct {
	User             *model.User              `json:"user"`
	CurrentRole      *model.Role              `json:"current_role,omitempty"`
	RoleHistory      []store.RoleHistoryEntry `json:"role_history"`
	RecentAttendance []store.UserAttendance   `json:"recent_attendance"`
}

// Get returns the profile for the requested member. Profiles marked private
// are visible only to their owner.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}
	if !user.IsPublic && user.ID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	resp := profileResponse{User: user}

	if user.CurrentRoleID != nil {
		role, err := h.roles.GetByID(*user.CurrentRoleID)
		if err != nil {
			h.logger.Error("get current role", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get profile")
			return
		}
		resp.CurrentRole = role
	}

	resp.RoleHistory, err = h.roles.HistoryForUser(user.ID)
	if err != nil {
		h.logger.Error("role history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if resp.RoleHistory == nil {
		resp.RoleHistory = []store.RoleHistoryEntry{}
	}

	resp.RecentAttendance, err = h.attendance.ListRecentByUser(user.ID, recentAttendanceLimit)
	if err != nil {
		h.logger.Error("recent attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if resp.RecentAttendance == nil {
		resp.RecentAttendance = []store.UserAttendance{}
	}

	writeJSON(w, http.StatusOK, resp)
}

type profileUpdateRequest struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	IsPublic      bool       `json:"is_public"`
	ActiveFrom    *time.Time `json:"active_from"`
	ActiveTo      *time.Time `json:"active_to"`
	CurrentRoleID *string    `json:"current_role_id"`
}

// Update edits the caller's own profile. A role change closes the open
// user_roles interval and opens a new one, keeping the history contiguous.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	current, err := h.users.GetByID(userID)
	if err != nil || current == nil {
		h.logger.Error("get current user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	if req.CurrentRoleID != nil {
		role, err := h.roles.GetByID(*req.CurrentRoleID)
		if err != nil {
			h.logger.Error("get role", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update profile")
			return
		}
		if role == nil {
			writeError(w, http.StatusBadRequest, "unknown role")
			return
		}
	}

	updated, err := h.users.UpdateProfile(userID, store.ProfileUpdate{
		Name:          req.Name,
		Email:         req.Email,
		IsPublic:      req.IsPublic,
		ActiveFrom:    req.ActiveFrom,
		ActiveTo:      req.ActiveTo,
		CurrentRoleID: req.CurrentRoleID,
	})
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "email already in use")
		return
	}
	if err != nil {
		h.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	if err := h.recordRoleChange(current, req.CurrentRoleID); err != nil {
		h.logger.Error("record role change", "error", err)
	}

	h.hub.Broadcast(websocket.NewMessage("profile", "updated", userID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// recordRoleChange maintains the user_roles history when the current role
// changes: the open interval is closed and a fresh one opened.
func (h *ProfileHandler) recordRoleChange(before *model.User, after *string) error {
	prev := before.CurrentRoleID
	switch {
	case prev == nil && after == nil:
		return nil
	case prev != nil && after != nil && *prev == *after:
		return nil
	}

	now := time.Now().UTC()
	if prev != nil {
		if err := h.roles.CloseOpenInterval(before.ID, *prev, now); err != nil {
			return err
		}
	}
	if after != nil {
		if _, err := h.roles.OpenInterval(before.ID, *after, now); err != nil {
			return err
		}
	}
	return nil
}

func (h *ProfileHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List()
	if err != nil {
		h.logger.Error("list roles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}
	if roles == nil {
		roles = []model.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}
