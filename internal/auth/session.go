package auth

import (
	"fmt"
	"log/slog"

	"github.com/runeberget/krets/internal/model"
	"github.com/runeberget/krets/internal/store"
)

// SessionManager creates, validates, and terminates sessions.
type SessionManager struct {
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewSessionManager(ss *store.SessionStore, logger *slog.Logger) *SessionManager {
	return &SessionManager{sessions: ss, logger: logger}
}

func (m *SessionManager) Create(userID string) (*model.Session, error) {
	sess, err := m.sessions.Create(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return sess, nil
}

// Validate resolves a session ID to its user and session. It fails closed:
// an empty ID, an unknown or expired session, or any storage error all
// yield (nil, nil). Callers cannot tell the cases apart, and should not.
func (m *SessionManager) Validate(sessionID string) (*model.User, *model.Session) {
	if sessionID == "" {
		return nil, nil
	}

	user, sess, err := m.sessions.GetValid(sessionID)
	if err != nil {
		m.logger.Error("session validation", "error", err)
		return nil, nil
	}
	return user, sess
}

// Terminate removes the session. Terminating an absent session is a no-op.
func (m *SessionManager) Terminate(sessionID string) error {
	if err := m.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// CleanupExpired removes expired sessions. Not needed for correctness
// (validation checks expiry), only to keep the table small.
func (m *SessionManager) CleanupExpired() (int64, error) {
	count, err := m.sessions.DeleteExpired()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if count > 0 {
		m.logger.Info("expired sessions swept", "count", count)
	}
	return count, nil
}
