package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/store"
	"github.com/runeberget/krets/internal/websocket"
)

type MeetingHandler struct {
	meetings *store.MeetingStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewMeetingHandler(ms *store.MeetingStore, hub *websocket.Hub, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{meetings: ms, hub: hub, logger: logger}
}

type meetingRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		writeError(w, http.StatusBadRequest, "start_time and end_time are required")
		return
	}
	if !req.EndTime.After(req.StartTime) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	meeting, err := h.meetings.Create(req.Title, req.Description, req.StartTime, req.EndTime)
	if err != nil {
		h.logger.Error("create meeting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create meeting")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("meeting", "created", meeting.ID, nil))
	writeJSON(w, http.StatusCreated, meeting)
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.meetings.List()
	if err != nil {
		h.logger.Error("list meetings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list meetings")
		return
	}
	if meetings == nil {
		meetings = []model.Meeting{}
	}
	writeJSON(w, http.StatusOK, meetings)
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.meetings.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get meeting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get meeting")
		return
	}
	if meeting == nil {
		writeError(w, http.StatusNotFound, "meeting not found")
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// NextUpcoming returns the next meeting whose start time is in the future,
// or 204 when none is scheduled.
func (h *MeetingHandler) NextUpcoming(w http.ResponseWriter, r *http.Request) {
	meeting, err := h.meetings.NextUpcoming(time.Now().UTC())
	if err != nil {
		h.logger.Error("next meeting", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get next meeting")
		return
	}
	if meeting == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}
