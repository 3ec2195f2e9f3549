package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/runeberget/krets/internal/auth"
	"github.com/runeberget/krets/internal/middleware"
)

type AuthHandler struct {
	links    *auth.MagicLinkManager
	sessions *auth.SessionManager
	logger   *slog.Logger
}

func NewAuthHandler(links *auth.MagicLinkManager, sessions *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{links: links, sessions: sessions, logger: logger}
}

type loginRequest struct {
	Email string `json:"email"`
}

// Login requests a magic link for the given email. The response is the same
// whether or not the email belongs to a member, to prevent enumeration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	err := h.links.SendMagicLink(r.Context(), req.Email)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUserNotFound):
		// Swallowed on purpose; the caller sees the same "check your email"
		h.logger.Info("login for unknown email")
	case errors.Is(err, auth.ErrDeliveryFailed):
		h.logger.Error("magic link delivery", "error", err)
		writeError(w, http.StatusInternalServerError, "could not send email")
		return
	default:
		h.logger.Error("magic link request", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "check your email for a sign-in link"})
}

// MagicLink consumes the token from the emailed link, starts a session, and
// redirects to the portal.
func (h *AuthHandler) MagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	userID, err := h.links.ValidateMagicLink(token)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrLinkExpired):
		writeError(w, http.StatusUnauthorized, "magic link has expired")
		return
	case errors.Is(err, auth.ErrLinkNotFound):
		writeError(w, http.StatusUnauthorized, "invalid magic link")
		return
	default:
		h.logger.Error("magic link validation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := h.sessions.Create(userID)
	if err != nil {
		h.logger.Error("session create", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	middleware.SetSessionCookie(w, sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout terminates the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.FromContext(r.Context()); ok {
		if err := h.sessions.Terminate(id.Session.ID); err != nil {
			h.logger.Error("session terminate", "error", err)
		}
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}
