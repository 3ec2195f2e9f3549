package handler

import (
	"log/slog"
	"net/http"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/store"
)

type MemberHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewMemberHandler(us *store.UserStore, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{users: us, logger: logger}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}
