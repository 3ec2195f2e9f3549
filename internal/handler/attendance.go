package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/runeberget/krets/internal/auth"
	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/store"
	"github.com/runeberget/krets/internal/websocket"
)

type AttendanceHandler struct {
	attendance *store.AttendanceStore
	meetings   *store.MeetingStore
	users      *store.UserStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewAttendanceHandler(
	as *store.AttendanceStore,
	ms *store.MeetingStore,
	us *store.UserStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *AttendanceHandler {
	return &AttendanceHandler{attendance: as, meetings: ms, users: us, hub: hub, logger: logger}
}

type setAttendanceRequest struct {
	MeetingID string `json:"meeting_id"`
	StatusID  string `json:"status_id"`
}

// Set records or updates the caller's attendance for a meeting. One row per
// (user, meeting); repeated calls change the status in place.
func (h *AttendanceHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.MeetingID == "" || req.StatusID == "" {
		writeError(w, http.StatusBadRequest, "meeting_id and status_id are required")
		return
	}

	meeting, err := h.meetings.GetByID(req.MeetingID)
	if err != nil {
		h.logger.Error("get meeting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meeting")
		return
	}
	if meeting == nil {
		writeError(w, http.StatusNotFound, "meeting not found")
		return
	}

	status, err := h.attendance.GetStatusByID(req.StatusID)
	if err != nil {
		h.logger.Error("get status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get status")
		return
	}
	if status == nil {
		writeError(w, http.StatusBadRequest, "unknown attendance status")
		return
	}

	userID := auth.UserID(r.Context())
	att, err := h.attendance.Set(userID, req.MeetingID, req.StatusID)
	if err != nil {
		h.logger.Error("set attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record attendance")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("attendance", "updated", att.ID, map[string]any{
		"user_id":    userID,
		"meeting_id": req.MeetingID,
		"status_id":  req.StatusID,
	}))
	writeJSON(w, http.StatusOK, att)
}

// gridResponse is the schedule page payload: every member, every meeting,
// and a sparse status map keyed "userID/meetingID".
type gridResponse struct {
	Users    []model.User             `json:"users"`
	Meetings []model.Meeting          `json:"meetings"`
	Statuses []model.AttendanceStatus `json:"statuses"`
	Entries  map[string]string        `json:"entries"`
}

func (h *AttendanceHandler) Grid(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load grid")
		return
	}
	meetings, err := h.meetings.List()
	if err != nil {
		h.logger.Error("list meetings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load grid")
		return
	}
	statuses, err := h.attendance.ListStatuses()
	if err != nil {
		h.logger.Error("list statuses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load grid")
		return
	}
	entries, err := h.attendance.ListAll()
	if err != nil {
		h.logger.Error("list attendance", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load grid")
		return
	}

	grid := gridResponse{
		Users:    users,
		Meetings: meetings,
		Statuses: statuses,
		Entries:  make(map[string]string, len(entries)),
	}
	if grid.Users == nil {
		grid.Users = []model.User{}
	}
	if grid.Meetings == nil {
		grid.Meetings = []model.Meeting{}
	}
	for _, e := range entries {
		grid.Entries[e.UserID+"/"+e.MeetingID] = e.StatusID
	}
	writeJSON(w, http.StatusOK, grid)
}

func (h *AttendanceHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.attendance.ListStatuses()
	if err != nil {
		h.logger.Error("list statuses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list statuses")
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
